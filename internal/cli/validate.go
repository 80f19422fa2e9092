package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidateResult is the JSON payload of validate.
type ValidateResult struct {
	Valid   bool   `json:"valid"`
	Target  string `json:"target"`
	Root    string `json:"root"`
	History string `json:"history"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var credentials bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration",
		Long: `Load and check the configuration file against its schema.

With --credentials the environment is checked for the API credentials
that run needs for the configured target.

Example:
  codedrop validate --config codedrop.yaml
  codedrop validate --credentials`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return configError(formatter, err)
			}
			result := ValidateResult{
				Valid:   true,
				Target:  cfg.Target,
				Root:    cfg.Root,
				History: cfg.History,
			}

			if credentials {
				if err := cfg.RequireCredentials(); err != nil {
					_ = formatter.Error(ErrCodeCredentials, err.Error(), nil)
					return WrapExitError(ExitCommandError, "missing credentials", err)
				}
			}

			if formatter.JSON() {
				return formatter.Success(result)
			}
			fmt.Fprintf(formatter.Writer, "%s configuration valid\n", okMark())
			fmt.Fprintf(formatter.Writer, "  %-8s %s\n", "target", result.Target)
			fmt.Fprintf(formatter.Writer, "  %-8s %s\n", "root", result.Root)
			fmt.Fprintf(formatter.Writer, "  %-8s %s\n", "history", result.History)
			return nil
		},
	}

	cmd.Flags().BoolVar(&credentials, "credentials", false, "also require API credentials in the environment")

	return cmd
}
