package store

import "errors"

// Predefined errors for the store layer.
var (
	// ErrNotFound indicates that no record matched the requested id.
	ErrNotFound = errors.New("feedback not found")

	// ErrStorageMissing indicates the backing location has never been created.
	ErrStorageMissing = errors.New("feedback storage not found")

	// ErrStorageUnavailable indicates the backing location could not be created or opened.
	ErrStorageUnavailable = errors.New("feedback storage unavailable")

	// ErrStorageWrite indicates the record set could not be persisted.
	ErrStorageWrite = errors.New("failed to save feedback")
)
