package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/desk-booking/internal/model"
)

// LockerAssignmentRepo persists locker assignments.  One ACTIVE assignment
// per locker and per user is enforced by unique keys on active_slot.
type LockerAssignmentRepo struct{ db *sql.DB }

func NewLockerAssignmentRepo(db *sql.DB) *LockerAssignmentRepo {
	return &LockerAssignmentRepo{db: db}
}

const assignmentCols = `id, user_id, locker_id, start_date, end_date, status, notes, access_code, created_at, updated_at`

func scanAssignment(s scanner) (*model.LockerAssignment, error) {
	var a model.LockerAssignment
	if err := s.Scan(&a.ID, &a.UserID, &a.LockerID, &a.StartDate, &a.EndDate, &a.Status, &a.Notes,
		&a.AccessCode, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *LockerAssignmentRepo) query(ctx context.Context, tail string, args ...any) ([]model.LockerAssignment, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, "SELECT "+assignmentCols+" FROM locker_assignments "+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.LockerAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *LockerAssignmentRepo) GetByID(ctx context.Context, id uint64) (*model.LockerAssignment, error) {
	a, err := scanAssignment(conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+assignmentCols+" FROM locker_assignments WHERE id = ?", id))
	return a, notFound(err)
}

// FindActiveByLocker returns the locker's ACTIVE assignment or ErrNotFound.
func (r *LockerAssignmentRepo) FindActiveByLocker(ctx context.Context, lockerID uint64) (*model.LockerAssignment, error) {
	a, err := scanAssignment(conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+assignmentCols+" FROM locker_assignments WHERE locker_id = ? AND status = 'ACTIVE'", lockerID))
	return a, notFound(err)
}

// FindActiveByUser returns the user's ACTIVE assignment or ErrNotFound.
func (r *LockerAssignmentRepo) FindActiveByUser(ctx context.Context, userID uint64) (*model.LockerAssignment, error) {
	a, err := scanAssignment(conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+assignmentCols+" FROM locker_assignments WHERE user_id = ? AND status = 'ACTIVE'", userID))
	return a, notFound(err)
}

func (r *LockerAssignmentRepo) ListByUser(ctx context.Context, userID uint64) ([]model.LockerAssignment, error) {
	return r.query(ctx, "WHERE user_id = ? ORDER BY start_date DESC", userID)
}

func (r *LockerAssignmentRepo) ListByLocker(ctx context.Context, lockerID uint64) ([]model.LockerAssignment, error) {
	return r.query(ctx, "WHERE locker_id = ? ORDER BY start_date DESC", lockerID)
}

// ListActiveForDate returns ACTIVE assignments in effect on date.
func (r *LockerAssignmentRepo) ListActiveForDate(ctx context.Context, date model.Date) ([]model.LockerAssignment, error) {
	return r.query(ctx, `WHERE status = 'ACTIVE' AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)
		ORDER BY locker_id`, date, date)
}

// ListDue returns ACTIVE assignments whose end date is before date.
func (r *LockerAssignmentRepo) ListDue(ctx context.Context, date model.Date) ([]model.LockerAssignment, error) {
	return r.query(ctx, "WHERE status = 'ACTIVE' AND end_date IS NOT NULL AND end_date < ? ORDER BY id", date)
}

func (r *LockerAssignmentRepo) Create(ctx context.Context, a *model.LockerAssignment) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO locker_assignments (user_id, locker_id, start_date, end_date, status, notes, access_code, active_slot)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.LockerID, a.StartDate, a.EndDate, a.Status, a.Notes, a.AccessCode,
		activeSlot(a.Status == model.AssignmentActive))
	if err != nil {
		return classifyAssignmentErr("insert assignment", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

func (r *LockerAssignmentRepo) Update(ctx context.Context, a *model.LockerAssignment) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE locker_assignments SET start_date = ?, end_date = ?, status = ?, notes = ?, access_code = ?,
		 active_slot = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		a.StartDate, a.EndDate, a.Status, a.Notes, a.AccessCode,
		activeSlot(a.Status == model.AssignmentActive), a.ID)
	if err != nil {
		return classifyAssignmentErr("update assignment", err)
	}
	return nil
}

func classifyAssignmentErr(op string, err error) error {
	if isDuplicate(err) {
		if violates(err, "user_id") || violates(err, "assignments_user") {
			return ErrUserHasLocker
		}
		return ErrLockerTaken
	}
	return fmt.Errorf("%s: %w", op, err)
}
