package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/vk/prefixtree/internal/app"
)

// Environment variables providing flag defaults. A .env file in the working
// directory is loaded into the environment by the entrypoint.
const (
	EnvRules     = "PREFIXTREE_RULES"
	EnvFormat    = "PREFIXTREE_FORMAT"
	EnvLogLevel  = "PREFIXTREE_LOG_LEVEL"
	EnvLogFormat = "PREFIXTREE_LOG_FORMAT"
	EnvWorkers   = "PREFIXTREE_WORKERS"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("prefixtree", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
prefixtree - decodes solver-option prefixes into display-tree placements.

Usage:
  prefixtree [options] [FILE...]

Arguments:
  FILE
    A file with one prefix per line. Each file is decoded in its own session.
    Use '-' or no FILE to read standard input.

Options:
`)
		flagSet.PrintDefaults()
	}

	workersDefault, err := envInt(EnvWorkers, 4)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	rulesFlag := flagSet.String("rules", os.Getenv(EnvRules), "Path to an HCL decoding rules file.")
	formatFlag := flagSet.String("format", envString(EnvFormat, app.FormatText), "Output format. Options: 'text', 'json' or 'yaml'.")
	logFormatFlag := flagSet.String("log-format", envString(EnvLogFormat, "text"), "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", envString(EnvLogLevel, "warn"), "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", workersDefault, "Number of input files decoded concurrently.")
	cacheFlag := flagSet.Int("cache-size", 1024, "Number of tokenized prefixes to cache. 0 disables the cache.")
	keepGoingFlag := flagSet.Bool("keep-going", false, "Report undecodable prefixes and continue instead of stopping.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Inputs:    flagSet.Args(),
		RulesPath: *rulesFlag,
		Format:    strings.ToLower(*formatFlag),
		LogFormat: logFormat,
		LogLevel:  logLevel,
		Workers:   *workersFlag,
		CacheSize: *cacheFlag,
		KeepGoing: *keepGoingFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not an integer", key, v)
	}
	return n, nil
}
