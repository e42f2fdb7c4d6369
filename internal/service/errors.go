package service

import (
	"errors"
	"fmt"
)

// Rejections: caller input or policy violations. Expected traffic, reported
// straight back, never logged as errors.
var (
	ErrNoContent     = errors.New("no file content")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrForbidden     = errors.New("not the file owner")
	ErrNotFound      = errors.New("file not found")
)

// FailKind names which store call failed.
type FailKind string

const (
	FailBlobWrite      FailKind = "blob_write"
	FailBlobRead       FailKind = "blob_read"
	FailBlobDelete     FailKind = "blob_delete"
	FailMetadataWrite  FailKind = "metadata_write"
	FailMetadataRead   FailKind = "metadata_read"
	FailMetadataDelete FailKind = "metadata_delete"
)

// StoreFailure wraps an error from one of the two stores. Each lifecycle
// operation surfaces at most one of these; compensation failures are logged
// instead so they never mask the primary outcome.
type StoreFailure struct {
	Kind FailKind
	Err  error
}

func (f *StoreFailure) Error() string {
	return fmt.Sprintf("%s failed: %v", f.Kind, f.Err)
}

func (f *StoreFailure) Unwrap() error {
	return f.Err
}

func storeFailure(kind FailKind, err error) error {
	return &StoreFailure{Kind: kind, Err: err}
}

// IsRejection reports whether err is a policy rejection rather than a store
// failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrNoContent) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotFound)
}
