// pkg/store/errors.go
package store

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// StorageError reports an I/O or transaction failure in the backing
// store. The engine does not retry these; the caller may.
type StorageError struct {
	Op  string // operation that failed, e.g. "fetch orders"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ConflictError reports a collision with a concurrent remediation pass
// over overlapping rows. The caller should retry the whole pass after
// backoff.
type ConflictError struct {
	Op  string
	Err error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s: %v", e.Op, e.Err)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// PostgreSQL SQLSTATEs that indicate a concurrency collision rather
// than a storage fault
var conflictSQLStates = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

// classifyError wraps a driver error as a ConflictError or StorageError
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && conflictSQLStates[string(pqErr.Code)] {
		return &ConflictError{Op: op, Err: err}
	}

	return &StorageError{Op: op, Err: err}
}

// IsConflict reports whether err is a concurrency conflict
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}
