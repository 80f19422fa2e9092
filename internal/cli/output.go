package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution, including skipped runs
	ExitFailure      = 1 // A run failed (collaborator error, history commit error)
	ExitCommandError = 2 // Command error (bad configuration, missing credentials, unreadable input)
)

// Error codes, shared across commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeConfig       = "E002" // Invalid configuration
	ErrCodeCredentials  = "E003" // Missing credentials
	ErrCodeNotFound     = "E005" // Path not found or unreadable
	ErrCodeHistory      = "E006" // History could not be opened or read
	ErrCodeWriteFailed  = "E007" // Output write error
	ErrCodeRunFailed    = "E010" // A pipeline step failed
	ErrCodeCommitFailed = "E011" // Published, but history was not updated
	ErrCodeFindings     = "E020" // scan --fail-on-findings found secrets
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`           // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`   // success payload
	Error  *CLIError   `json:"error,omitempty"`  // error details
	RunID  string      `json:"run_id,omitempty"` // correlates with log lines
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E002", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// JSON reports whether the formatter emits JSON.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	return f.SuccessWithRun("", data)
}

// SuccessWithRun is Success with a run id attached to the JSON envelope.
func (f *OutputFormatter) SuccessWithRun(runID string, data interface{}) error {
	if f.JSON() {
		return f.encode(CLIResponse{Status: "ok", Data: data, RunID: runID})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	return f.ErrorWithRun("", code, message, details)
}

// ErrorWithRun is Error with a run id attached to the JSON envelope.
func (f *OutputFormatter) ErrorWithRun(runID, code, message string, details interface{}) error {
	if f.JSON() {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
			RunID: runID,
		})
	}

	fmt.Fprintf(f.Writer, "%s [%s]: %s\n", failMark(), code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Status markers. color disables itself when stdout is not a terminal or
// NO_COLOR is set.
func okMark() string   { return color.New(color.FgGreen).Sprint("✓") }
func skipMark() string { return color.New(color.FgYellow).Sprint("•") }
func warnMark() string { return color.New(color.FgYellow).Sprint("!") }
func failMark() string { return color.New(color.FgRed).Sprint("✗") }

func highlight(s string) string { return color.New(color.FgCyan).Sprint(s) }
