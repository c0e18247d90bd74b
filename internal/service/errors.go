// Package service implements the booking back-office: the booking
// conflict engine, the occupancy statistics engine, the holiday calendar
// and the CRUD services around floors, desks, departments, lockers and
// users.  Every failure a caller can act on is an *Error with a Kind.
package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/desk-booking/internal/repository"
)

// Kind classifies a service failure.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidState
	KindDeskConflict
	KindUserConflict
	KindInvalidDate
	KindInvalidTimeRange
	KindInvalidRange
	KindDuplicateDate
	KindValidation
	KindDuplicate
	KindConflict
	KindForbidden
	KindUnauthorized
)

var kindNames = map[Kind]string{
	KindInternal:         "internal error",
	KindNotFound:         "not found",
	KindInvalidState:     "invalid state",
	KindDeskConflict:     "desk conflict",
	KindUserConflict:     "user conflict",
	KindInvalidDate:      "invalid date",
	KindInvalidTimeRange: "invalid time range",
	KindInvalidRange:     "invalid range",
	KindDuplicateDate:    "duplicate date",
	KindValidation:       "validation failed",
	KindDuplicate:        "duplicate",
	KindConflict:         "conflict",
	KindForbidden:        "forbidden",
	KindUnauthorized:     "unauthorized",
}

func (k Kind) String() string { return kindNames[k] }

// Error is a classified, user-facing failure.  Two errors match under
// errors.Is when their kinds are equal, so the package sentinels below
// can be used as targets.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrInvalidState     = &Error{Kind: KindInvalidState}
	ErrDeskConflict     = &Error{Kind: KindDeskConflict}
	ErrUserConflict     = &Error{Kind: KindUserConflict}
	ErrInvalidDate      = &Error{Kind: KindInvalidDate}
	ErrInvalidTimeRange = &Error{Kind: KindInvalidTimeRange}
	ErrInvalidRange     = &Error{Kind: KindInvalidRange}
	ErrDuplicateDate    = &Error{Kind: KindDuplicateDate}
	ErrValidation       = &Error{Kind: KindValidation}
	ErrDuplicate        = &Error{Kind: KindDuplicate}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrForbidden        = &Error{Kind: KindForbidden}
	ErrUnauthorized     = &Error{Kind: KindUnauthorized}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// notFoundAs turns a repository miss into a NotFound error naming what
// was looked up.  Other errors pass through.
func notFoundAs(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...), Err: err}
	}
	return err
}
