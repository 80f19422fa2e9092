package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/codedrop/internal/digest"
	"github.com/roach88/codedrop/internal/store"
)

// HistoryView is the JSON payload of history show.
type HistoryView struct {
	Path        string        `json:"path"`
	Files       []store.Entry `json:"files"`
	UploadDates []string      `json:"upload_dates"`
}

// NewHistoryCommand creates the history command group.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the publication history",
		Long: `Inspect the publication history.

The history records the digest of every published file and the date of
every publication. A missing JSON history is created empty.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newHistoryShowCommand(rootOpts))
	cmd.AddCommand(newHistoryExportCommand(rootOpts))

	return cmd
}

func newHistoryShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "List published files and dates",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			h, path, err := loadHistory(rootOpts, cmd, formatter)
			if err != nil {
				return err
			}

			view := HistoryView{Path: path, Files: h.Entries(), UploadDates: h.UploadDates}
			if formatter.JSON() {
				return formatter.Success(view)
			}
			printHistory(formatter.Writer, view)
			return nil
		},
	}
}

func newHistoryExportCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the history as an upload_history.json document",
		Long: `Write the history in the JSON document format, whatever store holds it.
Use this to move a SQLite history back to a plain file.

Example:
  codedrop history export --history history.db --output upload_history.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			h, _, err := loadHistory(rootOpts, cmd, formatter)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return store.Export(cmd.OutOrStdout(), h)
			}

			f, err := os.Create(output)
			if err != nil {
				_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
				return WrapExitError(ExitFailure, "failed to create output file", err)
			}
			if err := store.Export(f, h); err != nil {
				f.Close()
				_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
				return WrapExitError(ExitFailure, "failed to write output file", err)
			}
			if err := f.Close(); err != nil {
				_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
				return WrapExitError(ExitFailure, "failed to write output file", err)
			}
			formatter.VerboseLog("wrote %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

// loadHistory opens the configured store and loads it. Errors are rendered
// before they are returned.
func loadHistory(opts *RootOptions, cmd *cobra.Command, formatter *OutputFormatter) (store.History, string, error) {
	logger := setupLogging(opts, cmd.ErrOrStderr())

	cfg, err := loadConfig(opts)
	if err != nil {
		return store.History{}, "", configError(formatter, err)
	}

	st, err := store.Open(cfg.History)
	if err != nil {
		_ = formatter.Error(ErrCodeHistory, err.Error(), nil)
		return store.History{}, "", WrapExitError(ExitCommandError, "failed to open history", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing history", "error", closeErr)
		}
	}()

	h, err := st.Load(cmd.Context())
	if err != nil {
		_ = formatter.Error(ErrCodeHistory, err.Error(), nil)
		return store.History{}, "", WrapExitError(ExitCommandError, "failed to read history", err)
	}
	return h, st.Path(), nil
}

func printHistory(w io.Writer, view HistoryView) {
	fmt.Fprintf(w, "History: %s\n", view.Path)
	if len(view.Files) == 0 && len(view.UploadDates) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	fmt.Fprintf(w, "Files (%d):\n", len(view.Files))
	for _, e := range view.Files {
		fmt.Fprintf(w, "  %s  %s\n", digest.Digest(e.Digest).Short(), e.ID)
	}
	fmt.Fprintf(w, "Dates (%d):\n", len(view.UploadDates))
	for _, d := range view.UploadDates {
		fmt.Fprintf(w, "  %s\n", d)
	}
}
