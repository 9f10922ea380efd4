package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

// Exit codes.
const (
	ExitError   = 1
	ExitBlocked = 2
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: ExitError,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	switch {
	case errors.Is(err, risk.ErrEmptyDocument):
		return NewCLIError("document is empty", "Pass a file path, or '-' to read from stdin", err)
	case errors.Is(err, risk.ErrDocumentTooShort):
		return NewCLIError("document is too short to analyze", "Lower analysis.min_chars in .riskgate/riskgate.yaml for very short documents", err)
	case errors.Is(err, risk.ErrDocumentTooLong):
		return NewCLIError("document is too long to analyze", "Split the document or raise analysis.max_chars in .riskgate/riskgate.yaml", err)
	case errors.Is(err, risk.ErrPatternLibrary):
		return NewCLIError("pattern library is invalid", "Run 'riskgate patterns validate .riskgate/patterns.yaml' to see the problem", err)
	case strings.Contains(err.Error(), "already initialized"):
		return NewCLIError("workspace already initialized", "Edit .riskgate/patterns.yaml to customise the library", err)
	}

	return err
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.ExitCode != 0 {
		return cliErr.ExitCode
	}
	return ExitError
}

// Hint returns the hint attached to err, if any.
func Hint(err error) string {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Hint
	}
	return ""
}
