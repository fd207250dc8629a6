// Package inspect implements program commands: theme resolution and rich text
// transformation dumps.
package inspect

import (
	"context"
	"fmt"
	"io"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"pdfstyle/state"
	"pdfstyle/theme"
)

// Theme resolves requested theme and outputs it as flat YAML document.
func Theme(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("inspect")

	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many themes", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}
	if cmd.Bool("strict") {
		env.Cfg.Theme.References = theme.ReferencesStrict.String()
	}

	name, dir := themeLocation(env, cmd.Args().Get(0), cmd.String("dir"))
	th, err := loadTheme(env, name, dir)
	if err != nil {
		return err
	}
	log.Debug("Theme resolved", zap.String("name", name), zap.String("dir", th.Dir()), zap.Int("keys", th.Len()))

	return writeTheme(cmd.Root().Writer, th)
}

// themeLocation returns theme name and directory taking configured values as
// defaults.
func themeLocation(env *state.LocalEnv, name, dir string) (string, string) {
	if len(name) == 0 {
		name = env.Cfg.Theme.Name
	}
	if len(dir) == 0 {
		dir = env.Cfg.Theme.Dir
	}
	return name, dir
}

func loadTheme(env *state.LocalEnv, name, dir string) (*theme.Theme, error) {
	log := env.Log.Named("inspect")

	path, _ := theme.ResolveThemeFile(name, dir)
	log.Info("Resolving theme", zap.String("file", path))
	defer func(start time.Time) {
		log.Debug("Theme resolution completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	th, err := env.ThemeLoader().LoadTheme(name, dir)
	if err != nil {
		return nil, fmt.Errorf("unable to load theme '%s': %w", path, err)
	}
	return th, nil
}

func writeTheme(w io.Writer, th *theme.Theme) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(th); err != nil {
		return fmt.Errorf("unable to encode theme: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("unable to encode theme: %w", err)
	}
	return nil
}
