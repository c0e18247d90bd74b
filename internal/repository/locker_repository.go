package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/desk-booking/internal/model"
)

type LockerRepo struct{ db *sql.DB }

func NewLockerRepo(db *sql.DB) *LockerRepo { return &LockerRepo{db: db} }

const lockerCols = `l.id, l.locker_number, l.floor_id, l.type, l.status, l.position_x, l.position_y,
	l.notes, l.is_active, l.created_at, l.updated_at`

func scanLocker(s scanner) (*model.Locker, error) {
	var l model.Locker
	if err := s.Scan(&l.ID, &l.LockerNumber, &l.FloorID, &l.Type, &l.Status, &l.PositionX,
		&l.PositionY, &l.Notes, &l.Active, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LockerRepo) query(ctx context.Context, tail string, args ...any) ([]model.Locker, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT "+lockerCols+" FROM lockers l JOIN floors f ON f.id = l.floor_id "+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Locker
	for rows.Next() {
		l, err := scanLocker(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *LockerRepo) List(ctx context.Context) ([]model.Locker, error) {
	return r.query(ctx, "ORDER BY f.floor_number, l.locker_number")
}

func (r *LockerRepo) ListByFloor(ctx context.Context, floorID uint64) ([]model.Locker, error) {
	return r.query(ctx, "WHERE l.floor_id = ? ORDER BY l.locker_number", floorID)
}

// ListFree returns active FREE lockers, optionally of one type.
func (r *LockerRepo) ListFree(ctx context.Context, typ *model.LockerType) ([]model.Locker, error) {
	if typ != nil {
		return r.query(ctx, "WHERE l.is_active = 1 AND l.status = 'FREE' AND l.type = ? ORDER BY f.floor_number, l.locker_number", *typ)
	}
	return r.query(ctx, "WHERE l.is_active = 1 AND l.status = 'FREE' ORDER BY f.floor_number, l.locker_number")
}

func (r *LockerRepo) GetByID(ctx context.Context, id uint64) (*model.Locker, error) {
	l, err := scanLocker(conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+lockerCols+" FROM lockers l WHERE l.id = ?", id))
	return l, notFound(err)
}

func (r *LockerRepo) Create(ctx context.Context, l *model.Locker) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO lockers (locker_number, floor_id, type, status, position_x, position_y, notes, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.LockerNumber, l.FloorID, l.Type, l.Status, l.PositionX, l.PositionY, l.Notes, l.Active)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert locker: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return nil
}

func (r *LockerRepo) Update(ctx context.Context, l *model.Locker) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE lockers SET locker_number = ?, type = ?, status = ?, position_x = ?, position_y = ?,
		 notes = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		l.LockerNumber, l.Type, l.Status, l.PositionX, l.PositionY, l.Notes, l.Active, l.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update locker: %w", err)
	}
	return nil
}

// SetStatus changes only the status column.
func (r *LockerRepo) SetStatus(ctx context.Context, id uint64, status model.LockerStatus) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE lockers SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", status, id)
	return err
}

// CountByFloor returns the active lockers of a floor grouped by status.
func (r *LockerRepo) CountByFloor(ctx context.Context, floorID uint64) (map[model.LockerStatus]int, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT status, COUNT(*) FROM lockers WHERE floor_id = ? AND is_active = 1 GROUP BY status", floorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[model.LockerStatus]int)
	for rows.Next() {
		var (
			status model.LockerStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}
