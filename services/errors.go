package services

import (
	"context"
	"errors"
	"fmt"
	"memo-app/database"
)

// Kind classifies a failed operation so callers can decide whether to merge
// a result into their own state.
type Kind string

const (
	KindStoreUnavailable Kind = "store_unavailable"
	KindWriteFailed      Kind = "write_failed"
	KindReadFailed       Kind = "read_failed"
	KindMalformedImport  Kind = "malformed_import"
	KindNotFound         Kind = "not_found"
	KindInvalid          Kind = "invalid"
	KindTimeout          Kind = "timeout"
)

// Common service-level errors
var (
	ErrMalformedImport = errors.New("import document must be a JSON array of memos")
	ErrMemoNotFound    = errors.New("memo not found")
	ErrCommentNotFound = errors.New("comment not found on this memo")
	ErrMissingID       = errors.New("record has no id")
	ErrAlreadyStored   = errors.New("record already has an id")
	ErrBadTimestamps   = errors.New("updatedAt is before createdAt")
)

// Error is returned by every MemoService operation that fails.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the operation may succeed.
func (e *Error) Retryable() bool {
	return e.Kind == KindTimeout
}

// KindOf returns the Kind of err, or "" when err is nil. Errors that did not
// come from this package are reported as KindWriteFailed.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindWriteFailed
}

// IsRetryable reports whether err is a retryable service error.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable()
}

// classify picks the Kind for a store error; fallback is used for plain
// storage failures.
func classify(err error, fallback Kind) Kind {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, database.ErrStoreUnavailable):
		return KindStoreUnavailable
	case errors.Is(err, database.ErrMemoMissing), errors.Is(err, ErrMemoNotFound):
		return KindNotFound
	case errors.Is(err, database.ErrUnknownIndex):
		return KindInvalid
	default:
		return fallback
	}
}
