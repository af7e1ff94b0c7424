package store

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes storage errors.
type ErrorCode string

const (
	// ErrCodeStorageUnavailable indicates the host cannot provide durable
	// storage. Fatal to persistence, non-fatal to in-memory operation.
	ErrCodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"

	// ErrCodeLoadFailure indicates corrupt or unparseable persisted state.
	// Recovery is a fresh empty log, never partial repair.
	ErrCodeLoadFailure ErrorCode = "LOAD_FAILURE"

	// ErrCodeSaveFailure indicates a failed write. Reported to the caller
	// and retried only on the next natural save trigger.
	ErrCodeSaveFailure ErrorCode = "SAVE_FAILURE"
)

// StoreError is a storage error with a category code and the affected path.
type StoreError struct {
	Code ErrorCode
	Path string
	Err  error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStorageUnavailable reports whether err is a storage-unavailable error.
// Uses errors.As to handle wrapped errors.
func IsStorageUnavailable(err error) bool {
	return hasCode(err, ErrCodeStorageUnavailable)
}

// IsLoadFailure reports whether err is a load failure.
func IsLoadFailure(err error) bool {
	return hasCode(err, ErrCodeLoadFailure)
}

// IsSaveFailure reports whether err is a save failure.
func IsSaveFailure(err error) bool {
	return hasCode(err, ErrCodeSaveFailure)
}

func hasCode(err error, code ErrorCode) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

func storageUnavailable(path string, err error) error {
	return &StoreError{Code: ErrCodeStorageUnavailable, Path: path, Err: err}
}

func loadFailure(path string, err error) error {
	return &StoreError{Code: ErrCodeLoadFailure, Path: path, Err: err}
}

func saveFailure(path string, err error) error {
	return &StoreError{Code: ErrCodeSaveFailure, Path: path, Err: err}
}
