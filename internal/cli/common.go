package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/codedrop/internal/config"
)

// newFormatter builds the formatter for cmd. Diagnostics go to stderr so
// JSON on stdout stays parseable.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// setupLogging installs a text slog handler on w as the default logger:
// Debug level with --verbose, Info otherwise.
func setupLogging(opts *RootOptions, w io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func (opts *RootOptions) getenv() func(string) string {
	if opts.Getenv != nil {
		return opts.Getenv
	}
	return os.Getenv
}

// loadConfig builds and validates the configuration. Credentials are not
// checked here; commands that need them call RequireCredentials.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.Config, opts.getenv())
	if err != nil {
		return nil, err
	}
	cfg.Apply(config.Overrides{
		Root:    opts.Root,
		History: opts.History,
		Target:  opts.Target,
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configError renders a configuration problem and returns the exit error.
func configError(formatter *OutputFormatter, err error) error {
	code := ErrCodeConfig
	if !config.IsValidationError(err) {
		code = ErrCodeNotFound
	}
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, "invalid configuration", err)
}
