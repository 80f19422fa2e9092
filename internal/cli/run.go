package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/codedrop/internal/assist"
	"github.com/roach88/codedrop/internal/config"
	"github.com/roach88/codedrop/internal/corpus"
	"github.com/roach88/codedrop/internal/engine"
	"github.com/roach88/codedrop/internal/github"
	"github.com/roach88/codedrop/internal/llm"
	"github.com/roach88/codedrop/internal/publish"
	"github.com/roach88/codedrop/internal/store"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Publish today's file",
		Long: `Run one publication pass.

If a file was already published today, or every candidate has been
published before, run exits successfully without doing anything.
Otherwise it selects the first unpublished file, redacts secrets, adds
comments when the file has none, generates a description, publishes
the file, and records it in the history.

The history is updated only after publishing succeeded.

Exit codes:
  0  published, or nothing to do
  1  a step failed; history was not updated
  2  configuration error or missing credentials

Example:
  GITHUB_TOKEN=... HF_API_KEY=... codedrop run --root ~/snippets
  codedrop run --config codedrop.yaml --target directory --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(rootOpts, cmd)
		},
	}
	return cmd
}

func runPipeline(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	logger := setupLogging(opts, cmd.ErrOrStderr())

	// Pre-flight: nothing is read or written before configuration and
	// credentials check out.
	cfg, err := loadConfig(opts)
	if err != nil {
		return configError(formatter, err)
	}
	if err := cfg.RequireCredentials(); err != nil {
		_ = formatter.Error(ErrCodeCredentials, err.Error(), nil)
		return WrapExitError(ExitCommandError, "missing credentials", err)
	}

	logger.Debug("opening history", "path", cfg.History)
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

	eng, err := buildEngine(opts, cfg, st, logger)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to set up run", err)
	}

	ctx, stop := signalContext(cmd.Context(), logger)
	defer stop()

	report, runErr := eng.Run(ctx)
	if report == nil {
		_ = formatter.Error(ErrCodeGeneric, runErr.Error(), nil)
		return WrapExitError(ExitFailure, "run failed", runErr)
	}

	switch {
	case runErr != nil && engine.IsCommitError(runErr):
		_ = formatter.ErrorWithRun(report.RunID, ErrCodeCommitFailed, report.Reason, report)
		if !formatter.JSON() {
			printReport(formatter.Writer, report)
		}
		return WrapExitError(ExitFailure, "published but history not updated", runErr)
	case runErr != nil:
		_ = formatter.ErrorWithRun(report.RunID, ErrCodeHistory, report.Reason, report)
		return WrapExitError(ExitFailure, "run failed", runErr)
	case report.Outcome == engine.OutcomeFailed:
		_ = formatter.ErrorWithRun(report.RunID, ErrCodeRunFailed, report.Reason, report)
		if !formatter.JSON() {
			printReport(formatter.Writer, report)
		}
		return NewExitError(ExitFailure, report.Reason)
	}

	if formatter.JSON() {
		return formatter.SuccessWithRun(report.RunID, report)
	}
	printReport(formatter.Writer, report)
	return nil
}

// buildEngine wires the collaborators named by cfg.
func buildEngine(opts *RootOptions, cfg *config.Config, st store.Store, logger *slog.Logger) (*engine.Engine, error) {
	scanner, err := cfg.Scanner()
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout()}

	llmClient, err := llm.NewClient(llm.Config{
		BaseURL:    cfg.LLM.BaseURL,
		APIKey:     cfg.HFAPIKey,
		Model:      cfg.LLM.Model,
		HTTPClient: httpClient,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	assistant := assist.New(llmClient, assist.Options{
		Model:             cfg.LLM.Model,
		DescribeMaxTokens: cfg.LLM.DescribeMaxTokens,
		AnnotateMaxTokens: cfg.LLM.AnnotateMaxTokens,
	}, logger)

	publisher, err := newPublisher(cfg, httpClient, logger)
	if err != nil {
		return nil, err
	}

	return engine.New(engine.Deps{
		Store:     st,
		Corpus:    corpus.NewWalker(cfg.Root, cfg.Patterns, logger),
		Annotator: assistant,
		Describer: assistant,
		Publisher: publisher,
		Scanner:   scanner,
		Clock:     opts.Clock,
		RunIDs:    opts.RunIDs,
		Logger:    logger,
	}, engine.Config{
		CommentPattern: cfg.CommentPattern,
		RescanEnriched: cfg.Redact.RescanEnriched,
	})
}

func newPublisher(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (engine.Publisher, error) {
	switch cfg.Target {
	case config.TargetDirectory:
		return publish.NewDirectory(cfg.OutputDir, logger), nil
	default:
		client, err := github.NewClient(github.Config{
			BaseURL:    cfg.GitHub.BaseURL,
			Token:      cfg.GitHubToken,
			HTTPClient: httpClient,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		return publish.NewGitHub(client, publish.GitHubOptions{
			Private: cfg.GitHub.Private,
			Branch:  cfg.GitHub.Branch,
		}, logger), nil
	}
}

// signalContext derives a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, func()) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// printReport renders a run report for humans.
func printReport(w io.Writer, report *engine.Report) {
	switch report.Outcome {
	case engine.OutcomeSkippedAlreadyPublished:
		fmt.Fprintf(w, "%s Already published a file today (%s)\n", skipMark(), report.Date)
		return
	case engine.OutcomeSkippedNothingNew:
		fmt.Fprintf(w, "%s No new files to publish\n", skipMark())
		return
	case engine.OutcomePublished:
		fmt.Fprintf(w, "%s Published %s\n", okMark(), highlight(report.Candidate.Name))
	default:
		if report.Candidate != nil {
			fmt.Fprintf(w, "%s Failed to publish %s\n", failMark(), report.Candidate.Name)
		}
	}

	if c := report.Candidate; c != nil {
		fmt.Fprintf(w, "  %-10s %s\n", "file", c.ID)
		fmt.Fprintf(w, "  %-10s %s\n", "digest", c.Digest)
		if c.CID != "" {
			fmt.Fprintf(w, "  %-10s %s\n", "cid", c.CID)
		}
	}
	if report.Redacted {
		fmt.Fprintf(w, "  %-10s %s %d finding(s)\n", "redacted", warnMark(), len(report.Findings))
	}
	if report.Enriched {
		fmt.Fprintf(w, "  %-10s comments added\n", "enriched")
	}
	if report.Container != nil {
		fmt.Fprintf(w, "  %-10s %s\n", "container", report.Container.Name)
	}
	if report.URL != "" {
		fmt.Fprintf(w, "  %-10s %s\n", "url", report.URL)
	}
	fmt.Fprintf(w, "  %-10s %s\n", "run", report.RunID)
}
