package database

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStoreUnavailable means the database could not be opened or has
	// been closed. It is not retried.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrMemoMissing is returned when a comment references a memo that does
	// not exist.
	ErrMemoMissing = errors.New("referenced memo does not exist")

	// ErrUnknownIndex is returned by FindMemos for a field without an index.
	ErrUnknownIndex = errors.New("field is not indexed")
)

// StoreError describes a failed store operation.
type StoreError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func unavailable(op string, err error) error {
	return &StoreError{Op: op, Err: fmt.Errorf("%w: %v", ErrStoreUnavailable, err)}
}

// wrap turns a driver error into a StoreError. A closed handle is reported
// as ErrStoreUnavailable.
func wrap(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	if strings.Contains(err.Error(), "database is closed") {
		err = fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &StoreError{Op: op, Collection: collection, Err: err}
}
