// Package errs defines the error taxonomy shared by all domain packages:
// validation failures, missing rows, uniqueness conflicts and storage faults.
// Handlers translate these into HTTP status codes with HTTPStatus.
package errs

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies an error for policy decisions (HTTP mapping, recovery).
type Kind int

const (
	// Validation means a required field was missing or malformed. The
	// operation performed no write.
	Validation Kind = iota + 1
	// NotFound means a lookup yielded no row.
	NotFound
	// Conflict means the store rejected a write due to a uniqueness violation.
	Conflict
	// Persistence means the storage layer failed (network, server fault).
	Persistence
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Persistence:
		return "persistence"
	}
	return "unknown"
}

// Error is a classified error with an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a classified error with a static message.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf returns a classified error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an existing error. A nil cause returns nil.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the classification of err, or 0 for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsValidation(err error) bool  { return KindOf(err) == Validation }
func IsNotFound(err error) bool    { return KindOf(err) == NotFound }
func IsConflict(err error) bool    { return KindOf(err) == Conflict }
func IsPersistence(err error) bool { return KindOf(err) == Persistence }

// FromPG classifies an error returned by pgx. pgx.ErrNoRows becomes NotFound,
// unique violations become Conflict, foreign key violations become Validation
// (the referenced row does not exist), anything else is a Persistence fault.
func FromPG(msg string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &Error{Kind: NotFound, Msg: msg, Err: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return &Error{Kind: Conflict, Msg: msg, Err: err}
		case "23503": // foreign_key_violation
			return &Error{Kind: Validation, Msg: msg, Err: err}
		}
	}
	return &Error{Kind: Persistence, Msg: msg, Err: err}
}

// HTTPStatus maps a classified error to its HTTP status code. Unclassified
// errors map to 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Persistence:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
