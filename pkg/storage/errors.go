package storage

import (
	"errors"
	"fmt"
)

// ErrSnapshotNotFound is returned when no snapshot matches a name or ID.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// StorageError represents an error from a storage backend.
type StorageError struct {
	Backend   string // Storage driver ("sqlite", "sqlite3", "memory")
	Operation string // Operation that failed ("save", "load", "list", ...)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}
