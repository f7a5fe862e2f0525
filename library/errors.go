package library

import "errors"

// Sentinel errors surfaced by the store. Callers branch with errors.Is;
// wrapped messages carry the specifics.
var (
	// ErrAlreadyBorrowed means a borrow was attempted on a book that
	// already has an active loan.
	ErrAlreadyBorrowed = errors.New("book is already borrowed")

	// ErrNotFound means a lookup by id matched no record. Removals are
	// deliberately not covered by this: deleting a missing row is a no-op.
	ErrNotFound = errors.New("record not found")

	// ErrMissingField means a required field was empty.
	ErrMissingField = errors.New("required field missing")

	// ErrImportFormat means an import source is missing a required
	// section or contains rows that cannot be parsed.
	ErrImportFormat = errors.New("invalid import format")

	// ErrIO means the export/import target could not be read or written.
	ErrIO = errors.New("i/o failure")

	// ErrUnsupportedFormat means an export target whose extension maps to
	// no known format.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)
