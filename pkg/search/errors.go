package search

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidSort is matched by every *SortFieldError.
	ErrInvalidSort = errors.New("invalid sort field")
	// ErrMissingLookup means a schema references a collection no lookup was given for.
	ErrMissingLookup = errors.New("missing reference lookup")
)

// SortFieldError rejects a sort key outside the collection's whitelist
type SortFieldError struct {
	Field   string
	Allowed []string
}

func (e *SortFieldError) Error() string {
	return fmt.Sprintf("cannot sort by %q, allowed: %s", e.Field, strings.Join(e.Allowed, ", "))
}

func (e *SortFieldError) Is(target error) bool {
	return target == ErrInvalidSort
}

// StorageError wraps a failure of a storage collaborator. The original error
// stays reachable through errors.Is / errors.As.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Cause() error {
	return e.Err
}

func storageFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
