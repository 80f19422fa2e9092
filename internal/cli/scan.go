package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roach88/codedrop/internal/corpus"
	"github.com/roach88/codedrop/internal/redact"
)

// ScanOptions holds flags for the scan command.
type ScanOptions struct {
	*RootOptions
	FailOnFindings bool
	Redacted       bool
}

// ScanResult is the JSON payload for one scanned file.
type ScanResult struct {
	Path     string           `json:"path"`
	Found    bool             `json:"found"`
	Findings []redact.Finding `json:"findings,omitempty"`
	Redacted string           `json:"redacted,omitempty"`
}

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scan [file...]",
		Short: "Report literal secrets in files",
		Long: `Scan files for literal secret assignments such as password = "..."
and report where they are. Files are not modified.

With no arguments every candidate in the corpus is scanned. With
--redacted the redacted text of a single file is printed instead.

Exit codes:
  0  scan completed (findings are reported, not fatal)
  1  --fail-on-findings was given and something was found
  2  a file could not be read or the configuration is invalid

Example:
  codedrop scan script.py
  codedrop scan --fail-on-findings
  codedrop scan --redacted script.py > clean.py`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(opts, cmd, args)
		},
	}

	opts.AddFlags(cmd.Flags())

	return cmd
}

// AddFlags registers the scan flags on flagSet.
func (opts *ScanOptions) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.BoolVar(&opts.FailOnFindings, "fail-on-findings", false, "exit 1 if any secret is found")
	flagSet.BoolVar(&opts.Redacted, "redacted", false, "print the redacted content of a single file")
}

func runScan(opts *ScanOptions, cmd *cobra.Command, args []string) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := setupLogging(opts.RootOptions, cmd.ErrOrStderr())

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return configError(formatter, err)
	}
	scanner, err := cfg.Scanner()
	if err != nil {
		return configError(formatter, err)
	}

	if opts.Redacted && len(args) != 1 {
		_ = formatter.Error(ErrCodeGeneric, "--redacted needs exactly one file", nil)
		return NewExitError(ExitCommandError, "--redacted needs exactly one file")
	}

	var files []corpus.Candidate
	if len(args) > 0 {
		for _, path := range args {
			content, err := os.ReadFile(path)
			if err != nil {
				_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
				return WrapExitError(ExitCommandError, "failed to read file", err)
			}
			files = append(files, corpus.Candidate{ID: path, Name: filepath.Base(path), Content: content})
		}
	} else {
		files, err = corpus.NewWalker(cfg.Root, cfg.Patterns, logger).List(cmd.Context())
		if err != nil {
			_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to list corpus", err)
		}
	}

	results := make([]ScanResult, 0, len(files))
	total := 0
	for _, f := range files {
		scanned := scanner.Scan(string(f.Content))
		result := ScanResult{Path: f.ID, Found: scanned.Found, Findings: scanned.Findings}
		if opts.Redacted {
			result.Redacted = scanned.Redacted
		}
		total += len(scanned.Findings)
		results = append(results, result)
	}

	switch {
	case opts.Redacted && !formatter.JSON():
		fmt.Fprint(formatter.Writer, results[0].Redacted)
	case formatter.JSON():
		if err := formatter.Success(results); err != nil {
			return WrapExitError(ExitFailure, "failed to write output", err)
		}
	default:
		printScan(formatter.Writer, results, total)
	}

	if opts.FailOnFindings && total > 0 {
		if !formatter.JSON() {
			fmt.Fprintf(formatter.GetErrWriter(), "%s [%s]: %d secret(s) found\n", failMark(), ErrCodeFindings, total)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d secret(s) found", total))
	}
	return nil
}

func printScan(w io.Writer, results []ScanResult, total int) {
	for _, r := range results {
		if !r.Found {
			fmt.Fprintf(w, "%s %s\n", okMark(), r.Path)
			continue
		}
		fmt.Fprintf(w, "%s %s\n", warnMark(), r.Path)
		for _, f := range r.Findings {
			fmt.Fprintf(w, "    line %d: %s\n", f.Line, f.Label)
		}
	}
	fmt.Fprintf(w, "%d file(s) scanned, %d finding(s)\n", len(results), total)
}
