package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/prefixtree/internal/config"
	"github.com/vk/prefixtree/internal/ctxlog"
	"github.com/vk/prefixtree/internal/prefix"
	"github.com/vk/prefixtree/internal/session"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	rules   *config.Rules
	factory *session.Factory
}

// NewApp is the constructor for the main application. Decoded output goes to
// outW and logs go to logW.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	rules, err := loader.Load(ctx, appConfig.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load decoding rules: %w", err)
	}
	logger.Debug("Decoding rules loaded.", "path", appConfig.RulesPath)

	tokenizer, err := prefix.NewTokenizer(appConfig.CacheSize)
	if err != nil {
		return nil, err
	}

	factory, err := session.NewFactory(rules, tokenizer)
	if err != nil {
		return nil, err
	}

	return &App{
		outW:    outW,
		logger:  logger,
		config:  appConfig,
		rules:   rules,
		factory: factory,
	}, nil
}

// Rules returns the decoding rules in use. This is primarily for testing.
func (a *App) Rules() *config.Rules {
	return a.rules
}
