// Package errs defines the structured error taxonomy shared by the path
// guard, the file tools, and the backup manager. Every failure carries a
// stable code the frontend can switch on and a message fit for display.
package errs

import (
	"errors"
	"fmt"
)

// Code identifies a failure class.
type Code string

const (
	// InvalidPath means the input path is malformed or cannot be resolved.
	InvalidPath Code = "invalid_path"

	// AccessDenied means the path resolved cleanly but escapes every
	// permitted root, or a restricted operation targeted a foreign file.
	AccessDenied Code = "access_denied"

	// NotFound means a read target does not exist.
	NotFound Code = "not_found"

	// SourceMissing means the database file is absent when a backup
	// was requested.
	SourceMissing Code = "source_missing"

	// InvalidBackup means the restore target is not a recognized artifact.
	InvalidBackup Code = "invalid_backup"

	// BackupFailed means the pre-restore safety copy could not be made;
	// the live database was not touched.
	BackupFailed Code = "backup_failed"

	// RestoreFailed means the overwrite failed but the rollback succeeded;
	// the live database holds its pre-restore content.
	RestoreFailed Code = "restore_failed"

	// RestoreFailedUnrecoverable means both the overwrite and the rollback
	// failed. The safety copy is left on disk for manual recovery.
	RestoreFailedUnrecoverable Code = "restore_failed_unrecoverable"

	// IOError is the catch-all for unclassified filesystem failures.
	IOError Code = "io_error"

	// NoDocumentsFolder means the user profile lookup failed and no
	// permitted root can be derived.
	NoDocumentsFolder Code = "no_documents_folder"
)

// Error is a classified failure with enough detail to show the user
// which path and which stage went wrong.
type Error struct {
	Code Code
	Op   string // stage, e.g. "validate", "restore.overwrite"
	Path string
	Msg  string
	Err  error // underlying cause, optional
}

func (e *Error) Error() string {
	s := string(e.Code)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Path != "" {
		s += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on code so callers can compare against sentinel errors
// built with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// New creates a classified error.
func New(code Code, op, path, msg string) *Error {
	return &Error{Code: code, Op: op, Path: path, Msg: msg}
}

// Wrap classifies an underlying error.
func Wrap(code Code, op, path string, err error) *Error {
	return &Error{Code: code, Op: op, Path: path, Err: err}
}

// CodeOf extracts the code from err, or IOError if err is unclassified.
// Returns the empty code for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return IOError
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}
