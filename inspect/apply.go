package inspect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"pdfstyle/markup"
	"pdfstyle/richtext"
	"pdfstyle/state"
)

// Apply reads inline markup, transforms it using requested theme and outputs
// resulting fragments.
func Apply(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("inspect")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}
	if cmd.IsSet("merge") {
		env.Cfg.Transform.MergeAdjacentText = cmd.Bool("merge")
	}

	// Inline markup may come from legacy sources, allow forcing code page
	if cp := cmd.String("encoding"); len(cp) > 0 {
		enc, err := ianaindex.IANA.Encoding(cp)
		if err != nil || enc == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
		} else {
			env.CodePage = enc
			n, _ := ianaindex.IANA.Name(enc)
			log.Debug("Forcefully converting input", zap.String("charset", n))
		}
	}

	data, err := readSource(src, cmd.Root().Reader)
	if err != nil {
		return err
	}
	text, err := decodeSource(data, env.CodePage, log)
	if err != nil {
		return err
	}

	name, dir := themeLocation(env, cmd.String("theme"), cmd.String("dir"))
	th, err := loadTheme(env, name, dir)
	if err != nil {
		return err
	}

	log.Info("Processing starting", zap.String("source", src))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	nodes, err := markup.Parse(text)
	if err != nil {
		return fmt.Errorf("unable to parse markup: %w", err)
	}
	frags := env.Transformer(th).Apply(nodes)
	log.Debug("Markup transformed", zap.Int("nodes", len(nodes)), zap.Int("fragments", len(frags)))

	if _, err := io.WriteString(cmd.Root().Writer, richtext.Dump(frags)); err != nil {
		return fmt.Errorf("unable to write fragments: %w", err)
	}
	return nil
}

func readSource(src string, stdin io.Reader) ([]byte, error) {
	if src == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("unable to read STDIN: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("unable to read source: %w", err)
	}
	return data, nil
}

// decodeSource converts input to UTF-8. Forced encoding always wins, otherwise
// valid UTF-8 is taken as is and encoding of anything else is guessed.
func decodeSource(data []byte, enc encoding.Encoding, log *zap.Logger) (string, error) {
	if enc == nil {
		if utf8.Valid(data) {
			return string(data), nil
		}
		var name string
		enc, name, _ = charset.DetermineEncoding(data, "text/html")
		log.Warn("Input is not valid UTF-8, guessing encoding", zap.String("charset", name))
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("unable to decode source: %w", err)
	}
	return string(out), nil
}
