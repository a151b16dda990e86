package query

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Kind identifies the failure class of an engine error.
//
// The taxonomy is deliberately small: each kind maps to one caller-visible
// condition, and nothing is retried or swallowed on the way up.
type Kind string

const (
	// KindNoPathSet: Execute was called before a store path was configured.
	KindNoPathSet Kind = "no_path_set"

	// KindStoreNotFound: the configured path does not exist on disk.
	KindStoreNotFound Kind = "store_not_found"

	// KindInvalidIdentifier: a table name failed validation before use in a
	// non-parameterisable statement.
	KindInvalidIdentifier Kind = "invalid_identifier"

	// KindReadOnlyViolation: a write-classified query was attempted while
	// read-only mode is active.
	KindReadOnlyViolation Kind = "read_only_violation"

	// KindQuery: the storage engine rejected the statement (syntax error,
	// constraint violation, database busy). The message is SQLite's own
	// diagnostic, passed through unmodified.
	KindQuery Kind = "query_error"

	// KindInternal: a failure not originating from the storage engine,
	// such as an I/O error while opening the handle.
	KindInternal Kind = "internal_error"
)

// Error is a typed engine failure. The presentation layer decides how to
// render it; the engine never formats UI text.
type Error struct {
	Kind    Kind
	Message string
}

// Error returns the diagnostic message.
func (e *Error) Error() string {
	return e.Message
}

// newError builds an *Error with a formatted message.
func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the failure kind from an error chain. Errors that did not
// originate in this package report KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// storageError maps a failure raised while a statement was running. SQLite's
// own rejections become KindQuery with the driver diagnostic untouched;
// anything else is unexpected and reports KindInternal.
func storageError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return &Error{Kind: KindQuery, Message: err.Error()}
	}
	return &Error{Kind: KindInternal, Message: err.Error()}
}
