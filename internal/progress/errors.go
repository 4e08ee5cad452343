package progress

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedState means the state file exists but is not a valid
	// progress document.
	ErrMalformedState = errors.New("malformed progress state")

	// ErrValidationInput is the parent of every rejected mutation. The
	// document is never modified when it is returned.
	ErrValidationInput = errors.New("invalid input")

	ErrUnknownCategory  = errors.New("unknown category")
	ErrUnknownComponent = errors.New("unknown component")
	ErrOutOfRange       = errors.New("progress value must be between 0 and 100")
	ErrInvalidStatus    = errors.New("invalid task status")
	ErrEmptyName        = errors.New("name cannot be empty")
)

// InputError describes a rejected mutation together with the values the
// operator could have used instead.
type InputError struct {
	Err     error
	Subject string
	Choices []string
}

func (e *InputError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Err.Error())
	if e.Subject != "" {
		fmt.Fprintf(&sb, ": %q", e.Subject)
	}
	if len(e.Choices) > 0 {
		fmt.Fprintf(&sb, " (available: %s)", strings.Join(e.Choices, ", "))
	}
	return sb.String()
}

// Unwrap exposes both the specific sentinel and ErrValidationInput to
// errors.Is.
func (e *InputError) Unwrap() []error {
	return []error{e.Err, ErrValidationInput}
}

func inputError(err error, subject string, choices []string) error {
	return &InputError{Err: err, Subject: subject, Choices: choices}
}

func malformed(path string, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if path != "" {
		return fmt.Errorf("%w: %s: %s", ErrMalformedState, path, msg)
	}
	return fmt.Errorf("%w: %s", ErrMalformedState, msg)
}
