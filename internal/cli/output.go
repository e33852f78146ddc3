package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/iliyamo/guest-seating/internal/seating"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Seating failure (verification issues, failed import lines, refused merge)
	ExitCommandError = 2 // Command error (bad arguments, unreachable database, unreadable file)
)

// Error codes carried in JSON error responses.
const (
	ErrCodeGeneric      = "E001"
	ErrCodeNotFound     = "E002"
	ErrCodeAmbiguous    = "E003"
	ErrCodeCapacity     = "E004"
	ErrCodeConflict     = "E005"
	ErrCodeInconsistent = "E006"
	ErrCodeInvalidInput = "E007"
	ErrCodeStorage      = "E008"
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
	Printed bool   // The formatter already reported it
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
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E002", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Texter is implemented by payloads with a human-readable rendering.
type Texter interface {
	Text() string
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}
	if t, ok := data.(Texter); ok {
		_, err := fmt.Fprint(f.Writer, t.Text())
		return err
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
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
	if t, ok := details.(Texter); ok {
		fmt.Fprint(f.Writer, t.Text())
	} else if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Fail prints err in the configured format and returns the ExitError the
// command should return.  Seating errors exit with ExitFailure, anything
// else with ExitCommandError.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, details, exit := classify(err)
	_ = f.Error(code, fmt.Sprintf("%s: %v", message, err), details)
	ee := WrapExitError(exit, message, err)
	ee.Printed = true
	return ee
}

func classify(err error) (code string, details interface{}, exit int) {
	var amb *seating.AmbiguousError
	var capErr *seating.CapacityError
	var inc *seating.InconsistencyError
	switch {
	case errors.As(err, &amb):
		return ErrCodeAmbiguous, candidateList(amb.Candidates), ExitFailure
	case errors.As(err, &capErr):
		return ErrCodeCapacity, capErr, ExitFailure
	case errors.As(err, &inc):
		return ErrCodeInconsistent, issueList(inc.Issues), ExitFailure
	case errors.Is(err, seating.ErrNotFound):
		return ErrCodeNotFound, nil, ExitFailure
	case errors.Is(err, seating.ErrInvalidToken):
		return ErrCodeInvalidInput, nil, ExitFailure
	case errors.Is(err, seating.ErrAmbiguous):
		return ErrCodeAmbiguous, nil, ExitFailure
	case errors.Is(err, seating.ErrCapacityExceeded):
		return ErrCodeCapacity, nil, ExitFailure
	case errors.Is(err, seating.ErrConflict):
		return ErrCodeConflict, nil, ExitFailure
	case errors.Is(err, seating.ErrInconsistentState):
		return ErrCodeInconsistent, nil, ExitFailure
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return ErrCodeStorage, nil, exitErr.Code
	}
	return ErrCodeGeneric, nil, ExitCommandError
}
