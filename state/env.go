// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"pdfstyle/config"
	"pdfstyle/richtext"
	"pdfstyle/theme"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Log *zap.Logger

	// used by apply subcommand
	CodePage encoding.Encoding

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &LocalEnv{start: time.Now()})
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// ThemeLoader returns theme loader set according to configuration.
func (e *LocalEnv) ThemeLoader() *theme.Loader {
	var options []theme.Option
	if e.Cfg != nil {
		options = append(options, theme.WithReferencePolicy(e.Cfg.Theme.ReferencePolicy()))
	}
	return theme.NewLoader(e.Log, options...)
}

// Transformer returns rich text transformer for the theme set according to
// configuration.
func (e *LocalEnv) Transformer(th *theme.Theme) *richtext.Transformer {
	options := []richtext.Option{richtext.WithLogger(e.Log)}
	if e.Cfg != nil {
		options = append(options, richtext.WithMergeAdjacentText(e.Cfg.Transform.MergeAdjacentText))
	}
	return richtext.NewTransformer(th, options...)
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
