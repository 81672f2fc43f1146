package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/flaggraph/internal/engine"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation rejected, scenarios failed, broken audit chain
	ExitCommandError = 2 // Command error (bad arguments, unreadable config or database)
)

// Error codes for failures that are not engine rejections.
const (
	ErrCodeCommand  = "COMMAND_ERROR"
	ErrCodeManifest = "MANIFEST_INVALID"
	ErrCodeChain    = "CHAIN_BROKEN"
	ErrCodeScenario = "SCENARIO_FAILED"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
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
	Format string
	Writer io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // Engine error code or one of the ErrCode* constants
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// RejectionDetails carries the structured fields of an engine rejection.
type RejectionDetails struct {
	Flag       string   `json:"flag,omitempty"`
	Dependency string   `json:"dependency,omitempty"`
	Missing    []string `json:"missing,omitempty"`
}

// Success outputs a result. In text mode the text callback writes the
// human-readable form; in JSON mode data is wrapped in a CLIResponse.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	return f.Outcome(true, data, text)
}

// Outcome is Success for results that can themselves report failure, such
// as a test run: the JSON status is "error" when ok is false but the full
// payload is still written.
func (f *OutputFormatter) Outcome(ok bool, data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		status := "ok"
		if !ok {
			status = "error"
		}
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: status,
			Data:   data,
		})
	}

	text(f.Writer)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return nil
}

// Reject reports err and returns the ExitError the command should return.
//
// Engine rejections are printed with their code and exit with ExitFailure;
// anything else is an infrastructure problem and exits with ExitCommandError.
func (f *OutputFormatter) Reject(message string, err error) error {
	var fe *engine.FlagError
	if errors.As(err, &fe) {
		details := RejectionDetails{Flag: fe.Flag, Dependency: fe.Dependency, Missing: fe.Missing}
		if outErr := f.Error(string(fe.Code), fe.Message, details); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, message, err)
	}

	if outErr := f.Error(ErrCodeCommand, err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, message, err)
}
