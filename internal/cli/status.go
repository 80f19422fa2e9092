package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/codedrop/internal/corpus"
	"github.com/roach88/codedrop/internal/engine"
	"github.com/roach88/codedrop/internal/store"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what run would do today",
		Long: `Preview the next run without contacting any service.

status reports whether a file was already published today, how many
candidates are unpublished, which file would be picked next, and whether
it would be redacted or sent for comments. Credentials are not required.

Example:
  codedrop status --root ~/snippets
  codedrop status --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}
	return cmd
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	logger := setupLogging(opts, cmd.ErrOrStderr())

	cfg, err := loadConfig(opts)
	if err != nil {
		return configError(formatter, err)
	}

	st, err := store.Open(cfg.History)
	if err != nil {
		_ = formatter.Error(ErrCodeHistory, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open history", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing history", "error", closeErr)
		}
	}()

	scanner, err := cfg.Scanner()
	if err != nil {
		return configError(formatter, err)
	}

	eng, err := engine.New(engine.Deps{
		Store:   st,
		Corpus:  corpus.NewWalker(cfg.Root, cfg.Patterns, logger),
		Scanner: scanner,
		Clock:   opts.Clock,
		Logger:  logger,
	}, engine.Config{CommentPattern: cfg.CommentPattern})
	if err != nil {
		return configError(formatter, err)
	}

	plan, err := eng.Plan(cmd.Context())
	if err != nil {
		_ = formatter.Error(ErrCodeHistory, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read history", err)
	}

	if formatter.JSON() {
		return formatter.Success(plan)
	}
	printPlan(formatter.Writer, plan)
	return nil
}

func printPlan(w io.Writer, plan *engine.Plan) {
	if plan.PublishedToday {
		fmt.Fprintf(w, "%s Already published a file today (%s)\n", skipMark(), plan.Date)
	} else {
		fmt.Fprintf(w, "%s Nothing published yet today (%s)\n", okMark(), plan.Date)
	}
	if plan.LastDate != "" {
		fmt.Fprintf(w, "  %-12s %s\n", "last", plan.LastDate)
	}
	fmt.Fprintf(w, "  %-12s %d\n", "history", plan.HistoryEntries)

	if plan.ListError != "" {
		fmt.Fprintf(w, "%s Corpus could not be listed: %s\n", warnMark(), plan.ListError)
		return
	}
	fmt.Fprintf(w, "  %-12s %d\n", "candidates", plan.Candidates)
	fmt.Fprintf(w, "  %-12s %d\n", "unpublished", plan.Unpublished)

	if plan.Next == nil {
		fmt.Fprintf(w, "%s No new files to publish\n", skipMark())
		return
	}
	fmt.Fprintf(w, "  %-12s %s\n", "next", highlight(plan.Next.ID))
	fmt.Fprintf(w, "  %-12s %s\n", "container", plan.Container)
	fmt.Fprintf(w, "  %-12s %s\n", "digest", plan.Next.Digest)
	if plan.WouldRedact {
		fmt.Fprintf(w, "  %-12s %s %d finding(s)\n", "redact", warnMark(), len(plan.Findings))
	}
	if plan.WouldEnrich {
		fmt.Fprintf(w, "  %-12s comments will be added\n", "enrich")
	}
}
