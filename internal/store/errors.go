package store

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// Kind buckets store failures so callers can decide how to react without
// parsing message text.
type Kind int

const (
	// KindConnection covers an unreachable or unreadable database. Retryable.
	KindConnection Kind = iota
	// KindConstraint covers a business-rule rejection raised by the schema
	// triggers or column checks. Retrying the same input fails identically.
	KindConstraint
	// KindNotFound covers a missing row or barcode.
	KindNotFound
	// KindValidation covers malformed input rejected before any write.
	KindValidation
)

// Error is the failure value returned by every store operation. Message is
// human-readable and, for constraint rejections, carries the trigger's
// RAISE(ABORT) text verbatim.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// ErrMissingDatabase is returned by Open when the database file does not
// exist, so the caller can offer to create it instead of failing outright.
var ErrMissingDatabase = &Error{Kind: KindConnection, Message: "database file does not exist"}

func validationErr(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func notFoundErr(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func connectionErr(msg string, cause error) *Error {
	return &Error{Kind: KindConnection, Message: msg, cause: cause}
}

// classify maps driver errors onto the store's taxonomy. It is applied on
// every exit path so handlers never see a raw sqlite3 error.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) {
		if sqlErr.Code == sqlite3.ErrConstraint {
			return &Error{Kind: KindConstraint, Message: strings.TrimSpace(sqlErr.Error()), cause: err}
		}
		return connectionErr("database error: "+sqlErr.Error(), err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr("record not found")
	}
	return connectionErr("database connection error", err)
}

// IsKind reports whether err is a store Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}
