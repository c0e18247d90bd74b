// Package repository holds the database/sql backed stores.  Sentinel errors
// defined here let the service layer tell a missing row or a violated
// uniqueness rule apart from driver failures.
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique key
// that has no more specific sentinel below.
var ErrDuplicate = errors.New("duplicate")

// ErrDeskDateTaken reports that the desk already has an active booking on
// that date.
var ErrDeskDateTaken = errors.New("desk already booked on date")

// ErrUserDateTaken reports that the user already has an active booking on
// that date.
var ErrUserDateTaken = errors.New("user already booked on date")

// ErrHolidayDateTaken reports that an active holiday exists on that date.
var ErrHolidayDateTaken = errors.New("holiday already exists on date")

// ErrLockerTaken reports that the locker already has an active assignment.
var ErrLockerTaken = errors.New("locker already assigned")

// ErrUserHasLocker reports that the user already holds an active assignment.
var ErrUserHasLocker = errors.New("user already holds a locker")

// ErrEmailExists is returned when registering an email twice.
var ErrEmailExists = errors.New("email already exists")

// isDuplicate recognizes unique key violations of both supported drivers.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// violates reports whether a duplicate error names the given column or key
// fragment.  MySQL reports the key name, sqlite the column list.
func violates(err error, fragment string) bool {
	return strings.Contains(err.Error(), fragment)
}

// notFound maps sql.ErrNoRows to ErrNotFound and passes anything else
// through unchanged.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// activeSlot is the value stored in active_slot columns.
func activeSlot(active bool) any {
	if active {
		return 1
	}
	return nil
}

// wrap prefixes a store error with the operation; nil stays nil.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
