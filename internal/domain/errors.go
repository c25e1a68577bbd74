package domain

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFileType signals a caller bug: the file type was never
// validated at the boundary. It must not be shown to end users.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// ErrActiveJobExists is returned by the store when creating a job would
// violate the one-active-job-per-actor constraint.
var ErrActiveJobExists = errors.New("an import job is already running for this actor")

// InvalidFileError is a user-facing rejection of a structurally invalid
// upload. The declared type was supported but the document did not
// match it.
type InvalidFileError struct {
	FileType FileType
	Reason   string
	Err      error
}

func (e *InvalidFileError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s file: %s", e.FileType, e.Reason)
	}
	return fmt.Sprintf("invalid %s file", e.FileType)
}

func (e *InvalidFileError) Unwrap() error {
	return e.Err
}

// QuotaExceededError is the typed quota condition carrying the usage
// figures, checked before any write.
type QuotaExceededError struct {
	Used      int64
	Limit     int64
	Requested int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("storage quota exceeded: used %d of %d bytes, requested %d more", e.Used, e.Limit, e.Requested)
}

// ConflictError reports a state conflict (second concurrent import,
// stale retry, missing source file). It always carries the current job
// snapshot so the caller can reconcile.
type ConflictError struct {
	Reason string
	Job    *ArchiveImportJob
}

func (e *ConflictError) Error() string {
	return e.Reason
}
