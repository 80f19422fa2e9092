package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roach88/codedrop/internal/engine"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Config is the configuration file. Empty means CODEDROP_CONFIG, then
	// built-in defaults.
	Config string

	// Overrides applied after the configuration file.
	Root    string
	History string
	Target  string

	// Getenv reads the environment. Nil means os.Getenv.
	Getenv func(string) string

	// Clock and RunIDs override the engine defaults (for testing).
	Clock  engine.Clock
	RunIDs engine.RunIDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the codedrop CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{Getenv: os.Getenv})
}

// NewRootCommandWithOptions creates the root command around opts, so tests
// can inject the environment, clock and run ids.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codedrop",
		Short: "codedrop - publish one unpublished source file per day",
		Long: `codedrop picks one source file that has never been published, removes
literal secrets from it, adds comments if it has none, writes a short
description, and publishes it as a new repository.

At most one file is published per calendar day, and the same content is
never published twice, whatever name it is found under.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	opts.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewScanCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewDigestCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// AddFlags registers the global flags on flagSet.
func (opts *RootOptions) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flagSet.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flagSet.StringVar(&opts.Config, "config", "", "configuration file (.yaml, .json, .jsonc or .cue); defaults to $CODEDROP_CONFIG")
	flagSet.StringVar(&opts.Root, "root", "", "corpus directory (overrides config)")
	flagSet.StringVar(&opts.History, "history", "", "history file; .db/.sqlite selects SQLite (overrides config)")
	flagSet.StringVar(&opts.Target, "target", "", "publication target: github or directory (overrides config)")
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
