package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/desk-booking/internal/model"
)

// BookingRepo persists desk bookings.  The active_slot column mirrors
// Status.HoldsDesk() so the unique keys on (desk, date) and (user, date)
// only constrain ACTIVE and CHECKED_IN rows.
type BookingRepo struct{ db *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingSelect = `SELECT b.id, b.user_id, b.desk_id, b.booking_date, b.start_time, b.end_time,
	b.status, b.type, b.notes, b.checked_in_at, b.checked_out_at, b.cancelled_at,
	b.cancellation_reason, b.created_at, b.updated_at,
	d.desk_number, d.floor_id, f.floor_number, f.name, u.first_name, u.last_name, u.email
	FROM bookings b
	JOIN desks d ON d.id = b.desk_id
	JOIN floors f ON f.id = d.floor_id
	JOIN users u ON u.id = b.user_id`

// holding is the status filter for bookings that occupy a desk.
const holding = "b.status IN ('ACTIVE', 'CHECKED_IN')"

func scanBooking(s scanner) (*model.Booking, error) {
	var (
		b           model.Booking
		first, last string
	)
	err := s.Scan(&b.ID, &b.UserID, &b.DeskID, &b.BookingDate, &b.StartTime, &b.EndTime,
		&b.Status, &b.Type, &b.Notes, &b.CheckedInAt, &b.CheckedOutAt, &b.CancelledAt,
		&b.CancellationReason, &b.CreatedAt, &b.UpdatedAt,
		&b.DeskNumber, &b.FloorID, &b.FloorNumber, &b.FloorName, &first, &last, &b.UserEmail)
	if err != nil {
		return nil, err
	}
	b.UserName = first + " " + last
	return &b, nil
}

func (r *BookingRepo) query(ctx context.Context, tail string, args ...any) ([]model.Booking, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, bookingSelect+" "+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *BookingRepo) one(ctx context.Context, tail string, args ...any) (*model.Booking, error) {
	b, err := scanBooking(conn(ctx, r.db).QueryRowContext(ctx, bookingSelect+" "+tail, args...))
	return b, notFound(err)
}

func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	return r.one(ctx, "WHERE b.id = ?", id)
}

// FindActiveByDeskAndDate returns the booking holding the desk on date, or
// ErrNotFound.
func (r *BookingRepo) FindActiveByDeskAndDate(ctx context.Context, deskID uint64, date model.Date) (*model.Booking, error) {
	return r.one(ctx, "WHERE b.desk_id = ? AND b.booking_date = ? AND "+holding, deskID, date)
}

// FindActiveByUserAndDate returns the user's desk-holding booking on date,
// or ErrNotFound.
func (r *BookingRepo) FindActiveByUserAndDate(ctx context.Context, userID uint64, date model.Date) (*model.Booking, error) {
	return r.one(ctx, "WHERE b.user_id = ? AND b.booking_date = ? AND "+holding, userID, date)
}

func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	return r.query(ctx, "ORDER BY b.booking_date DESC, f.floor_number, d.desk_number")
}

func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return r.query(ctx, "WHERE b.user_id = ? ORDER BY b.booking_date DESC", userID)
}

// ListUpcomingByUser returns the user's ACTIVE bookings on or after from,
// soonest first.
func (r *BookingRepo) ListUpcomingByUser(ctx context.Context, userID uint64, from model.Date) ([]model.Booking, error) {
	return r.query(ctx, "WHERE b.user_id = ? AND b.booking_date >= ? AND b.status = 'ACTIVE' ORDER BY b.booking_date",
		userID, from)
}

// ListActiveForDate lists desk-holding bookings on date by floor number
// then desk number.
func (r *BookingRepo) ListActiveForDate(ctx context.Context, date model.Date) ([]model.Booking, error) {
	return r.query(ctx, "WHERE b.booking_date = ? AND "+holding+" ORDER BY f.floor_number, d.desk_number", date)
}

func (r *BookingRepo) ListActiveForDateAndFloor(ctx context.Context, date model.Date, floorID uint64) ([]model.Booking, error) {
	return r.query(ctx, "WHERE b.booking_date = ? AND d.floor_id = ? AND "+holding+" ORDER BY d.desk_number",
		date, floorID)
}

// ListActiveForDateOnFloor narrows ListActiveForDate to a floor when one is
// given.
func (r *BookingRepo) ListActiveForDateOnFloor(ctx context.Context, date model.Date, floorID *uint64) ([]model.Booking, error) {
	if floorID == nil {
		return r.ListActiveForDate(ctx, date)
	}
	return r.ListActiveForDateAndFloor(ctx, date, *floorID)
}

// Create inserts a booking.  A concurrent booking of the same desk or by
// the same user on the same date surfaces as ErrDeskDateTaken or
// ErrUserDateTaken.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO bookings (user_id, desk_id, booking_date, start_time, end_time, status, type, notes, active_slot)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.DeskID, b.BookingDate, b.StartTime, b.EndTime, b.Status, b.Type, b.Notes,
		activeSlot(b.Status.HoldsDesk()))
	if err != nil {
		return classifyBookingErr("insert booking", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// Update writes every mutable column of b, including its status.
func (r *BookingRepo) Update(ctx context.Context, b *model.Booking) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE bookings SET booking_date = ?, start_time = ?, end_time = ?, status = ?, type = ?,
		 notes = ?, checked_in_at = ?, checked_out_at = ?, cancelled_at = ?, cancellation_reason = ?,
		 active_slot = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		b.BookingDate, b.StartTime, b.EndTime, b.Status, b.Type, b.Notes, b.CheckedInAt,
		b.CheckedOutAt, b.CancelledAt, b.CancellationReason, activeSlot(b.Status.HoldsDesk()), b.ID)
	if err != nil {
		return classifyBookingErr("update booking", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func classifyBookingErr(op string, err error) error {
	if isDuplicate(err) {
		if violates(err, "desk") {
			return ErrDeskDateTaken
		}
		if violates(err, "user") {
			return ErrUserDateTaken
		}
		return ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}

// OccupiedDesksByDay counts, per date in [start, end], the distinct active
// desks holding a booking.  Dates without bookings are absent from the
// result, which is keyed by YYYY-MM-DD.
func (r *BookingRepo) OccupiedDesksByDay(ctx context.Context, start, end model.Date) (map[string]int, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT b.booking_date, COUNT(DISTINCT b.desk_id)
		 FROM bookings b JOIN desks d ON d.id = b.desk_id
		 WHERE b.booking_date BETWEEN ? AND ? AND d.is_active = 1 AND `+holding+`
		 GROUP BY b.booking_date`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var (
			day model.Date
			n   int
		)
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		out[day.String()] = n
	}
	return out, rows.Err()
}

// BookingsByFloorAndDay counts desk-holding bookings per floor and date in
// [start, end].  Outer key is the floor ID, inner key YYYY-MM-DD.
func (r *BookingRepo) BookingsByFloorAndDay(ctx context.Context, start, end model.Date) (map[uint64]map[string]int, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT d.floor_id, b.booking_date, COUNT(*)
		 FROM bookings b JOIN desks d ON d.id = b.desk_id
		 WHERE b.booking_date BETWEEN ? AND ? AND d.is_active = 1 AND `+holding+`
		 GROUP BY d.floor_id, b.booking_date`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64]map[string]int)
	for rows.Next() {
		var (
			floorID uint64
			day     model.Date
			n       int
		)
		if err := rows.Scan(&floorID, &day, &n); err != nil {
			return nil, err
		}
		if out[floorID] == nil {
			out[floorID] = make(map[string]int)
		}
		out[floorID][day.String()] = n
	}
	return out, rows.Err()
}
