// Package css reads inline style declarations ("color: #ff0000; font-weight: bold").
package css

import (
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Declaration is a single property declaration. Value is compacted: whitespace
// between tokens is dropped.
type Declaration struct {
	Property string
	Value    string
}

// Parser parses inline style attribute values.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// ParseDeclarations returns declarations in source order. Malformed
// declarations are skipped, custom properties are ignored.
func (p *Parser) ParseDeclarations(style string) []Declaration {
	parser := css.NewParser(parse.NewInputString(style), true)

	var decls []Declaration
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil {
				if !errors.Is(err, io.EOF) {
					p.log.Debug("CSS parse error", zap.String("style", style), zap.Error(err))
				}
				return decls
			}
			p.log.Debug("Skipping malformed declaration", zap.String("style", style))

		case css.DeclarationGrammar:
			decls = append(decls, Declaration{
				Property: strings.ToLower(string(data)),
				Value:    compactValue(parser.Values()),
			})

		case css.CustomPropertyGrammar:
			continue
		}
	}
}

func compactValue(tokens []css.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			continue
		}
		b.Write(t.Data)
	}
	return b.String()
}
