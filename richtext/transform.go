// Package richtext converts inline markup trees into flat sequences of styled
// text fragments using style packages derived from a resolved theme.
package richtext

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"pdfstyle/css"
	"pdfstyle/markup"
	"pdfstyle/theme"
)

const zeroWidthSpace = "\u200b"

var charEntities = map[string]string{
	"amp":  "&",
	"apos": "'",
	"gt":   ">",
	"lt":   "<",
	"nbsp": "\u00a0",
	"quot": `"`,
}

// Transformer applies style rules to markup trees. It is immutable once
// created and may be used from multiple goroutines.
type Transformer struct {
	log               *zap.Logger
	css               *css.Parser
	mergeAdjacentText bool
	pkgs              packages
}

// Option configures Transformer.
type Option func(*Transformer)

// WithMergeAdjacentText folds adjacent text, character references and line
// breaks into a single fragment.
func WithMergeAdjacentText(merge bool) Option {
	return func(t *Transformer) { t.mergeAdjacentText = merge }
}

// WithLogger sets logger.
func WithLogger(log *zap.Logger) Option {
	return func(t *Transformer) {
		if log != nil {
			t.log = log
		}
	}
}

// NewTransformer creates transformer for resolved theme. When th is nil
// built-in fallback style packages are used.
func NewTransformer(th *theme.Theme, options ...Option) *Transformer {
	t := &Transformer{log: zap.NewNop()}
	for _, opt := range options {
		opt(t)
	}
	t.log = t.log.Named("richtext")
	t.css = css.NewParser(t.log)
	if th == nil {
		t.pkgs = fallbackPackages()
	} else {
		t.pkgs = themePackages(th)
	}
	return t
}

// Apply transforms nodes into a new fragment sequence.
func (t *Transformer) Apply(nodes []markup.Node) []Fragment {
	return t.ApplyTo(nodes, nil, nil)
}

// ApplyTo appends fragments for nodes to acc using inherited as the starting
// context and returns extended sequence. When merging is enabled the last
// element of acc may be replaced.
func (t *Transformer) ApplyTo(nodes []markup.Node, acc []Fragment, inherited Style) []Fragment {
	prevText := false
	for _, node := range nodes {
		switch node.Type {
		case markup.ElementNode:
			if node.Void {
				switch node.Name {
				case "br":
					if t.mergeAdjacentText && prevText && len(acc) > 0 {
						last := len(acc) - 1
						acc[last] = Fragment{Text: acc[last].Text + "\n", Style: inherited.Clone()}
					} else {
						acc = append(acc, Fragment{Text: "\n"})
					}
					prevText = true
				case "img":
					acc = append(acc, t.image(node, inherited))
					prevText = false
				default:
					t.log.Debug("Ignoring void element", zap.String("name", node.Name))
				}
				continue
			}
			if len(node.Children) == 0 {
				if frag, ok := t.placeholder(node, inherited); ok {
					acc = append(acc, frag)
					prevText = false
				}
				continue
			}
			acc = t.ApplyTo(node.Children, acc, t.build(inherited, node.Name, node.Attributes))
			prevText = false
		case markup.TextNode:
			acc = t.appendText(acc, node.Value, inherited, prevText)
			prevText = true
		case markup.CharRefNode:
			acc = t.appendText(acc, t.resolveCharRef(node), inherited, prevText)
			prevText = true
		}
	}
	return acc
}

func (t *Transformer) appendText(acc []Fragment, text string, inherited Style, prevText bool) []Fragment {
	if t.mergeAdjacentText && prevText && len(acc) > 0 {
		last := len(acc) - 1
		acc[last] = Fragment{Text: acc[last].Text + text, Style: inherited.Clone()}
		return acc
	}
	return append(acc, Fragment{Text: text, Style: inherited.Clone()})
}

func (t *Transformer) image(node markup.Node, inherited Style) Fragment {
	style := Style{PropCallback: []Callback{InlineImageRenderer}}
	if src, ok := node.Attr("src"); ok {
		style[PropImagePath] = src
	}
	if tmp, _ := node.Attr("tmp"); tmp == "true" {
		style[PropImageTmp] = true
	}
	if format, ok := node.Attr("format"); ok {
		style[PropImageFormat] = format
	}
	if link := inherited.String(PropLink); link != "" {
		style[PropLink] = link
	}
	if width, ok := node.Attr("width"); ok {
		style[PropImageWidth] = width
	}
	alt, _ := node.Attr("alt")
	// zero-width space in alt text duplicates the image
	return Fragment{Text: strings.ReplaceAll(alt, zeroWidthSpace, ""), Style: style}
}

// placeholder produces marker fragment for an empty named anchor, other
// empty elements produce nothing.
func (t *Transformer) placeholder(node markup.Node, inherited Style) (Fragment, bool) {
	if node.Name != "a" {
		return Fragment{}, false
	}
	if _, ok := node.Attr("anchor"); ok {
		return Fragment{}, false
	}
	if _, ok := node.Attr("href"); ok {
		return Fragment{}, false
	}
	if _, ok := node.Attr("name"); !ok {
		return Fragment{}, false
	}
	return Fragment{Text: zeroWidthSpace, Style: t.build(inherited, node.Name, node.Attributes)}, true
}

func (t *Transformer) resolveCharRef(node markup.Node) string {
	switch node.RefType {
	case markup.NamedRef:
		if s, ok := charEntities[node.Value]; ok {
			return s
		}
	case markup.DecimalRef:
		if n, err := strconv.ParseInt(node.Value, 10, 32); err == nil {
			return string(rune(n))
		}
	case markup.HexRef:
		if n, err := strconv.ParseInt(node.Value, 16, 32); err == nil {
			return string(rune(n))
		}
	}
	t.log.Debug("Unable to resolve character reference", zap.Stringer("type", node.RefType), zap.String("value", node.Value))
	return ""
}
