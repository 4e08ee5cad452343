package ledger

import "errors"

var (
	ErrNotFound     = errors.New("no snapshot recorded")
	ErrInvalidLimit = errors.New("limit must be positive")
	ErrEmptyKind    = errors.New("report kind must not be empty")
)
