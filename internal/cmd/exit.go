package cmd

import "fmt"

// ExitError makes the process exit with Code. An empty Message means the
// command already reported the failure and main prints nothing more.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Message
}

// NewExitError creates an ExitError.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}
