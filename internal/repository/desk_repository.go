package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/desk-booking/internal/model"
)

// DeskRepo persists desks.  Reads join the floor and department so callers
// get display names without extra lookups.
type DeskRepo struct{ db *sql.DB }

func NewDeskRepo(db *sql.DB) *DeskRepo { return &DeskRepo{db: db} }

const deskSelect = `SELECT d.id, d.desk_number, d.floor_id, d.department_id, d.type, d.status,
	d.position_x, d.position_y, d.equipment, d.notes, d.near_window, d.near_elevator,
	d.near_break_area, d.is_active, d.created_at, d.updated_at, f.floor_number, f.name, dep.name
	FROM desks d
	JOIN floors f ON f.id = d.floor_id
	LEFT JOIN departments dep ON dep.id = d.department_id`

func scanDesk(s scanner) (*model.Desk, error) {
	var d model.Desk
	err := s.Scan(&d.ID, &d.DeskNumber, &d.FloorID, &d.DepartmentID, &d.Type, &d.Status,
		&d.PositionX, &d.PositionY, &d.Equipment, &d.Notes, &d.NearWindow, &d.NearElevator,
		&d.NearBreakArea, &d.Active, &d.CreatedAt, &d.UpdatedAt, &d.FloorNumber, &d.FloorName,
		&d.DepartmentName)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DeskRepo) query(ctx context.Context, tail string, args ...any) ([]model.Desk, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, deskSelect+" "+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Desk
	for rows.Next() {
		d, err := scanDesk(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

const deskOrder = "ORDER BY f.floor_number, d.desk_number"

func (r *DeskRepo) List(ctx context.Context) ([]model.Desk, error) {
	return r.query(ctx, deskOrder)
}

func (r *DeskRepo) ListActive(ctx context.Context) ([]model.Desk, error) {
	return r.query(ctx, "WHERE d.is_active = 1 "+deskOrder)
}

func (r *DeskRepo) ListByFloor(ctx context.Context, floorID uint64) ([]model.Desk, error) {
	return r.query(ctx, "WHERE d.floor_id = ? "+deskOrder, floorID)
}

func (r *DeskRepo) ListByDepartment(ctx context.Context, departmentID uint64) ([]model.Desk, error) {
	return r.query(ctx, "WHERE d.department_id = ? "+deskOrder, departmentID)
}

// ListAvailableForDate returns active AVAILABLE desks that have no ACTIVE or
// CHECKED_IN booking on date, optionally narrowed to a floor and/or a
// department.
func (r *DeskRepo) ListAvailableForDate(ctx context.Context, date model.Date, floorID, departmentID *uint64) ([]model.Desk, error) {
	conds := []string{
		"d.is_active = 1",
		"d.status = ?",
		`NOT EXISTS (SELECT 1 FROM bookings b WHERE b.desk_id = d.id AND b.booking_date = ?
			AND b.status IN (?, ?))`,
	}
	args := []any{model.DeskAvailable, date, model.BookingActive, model.BookingCheckedIn}
	if floorID != nil {
		conds = append(conds, "d.floor_id = ?")
		args = append(args, *floorID)
	}
	if departmentID != nil {
		conds = append(conds, "d.department_id = ?")
		args = append(args, *departmentID)
	}
	return r.query(ctx, "WHERE "+strings.Join(conds, " AND ")+" "+deskOrder, args...)
}

func (r *DeskRepo) GetByID(ctx context.Context, id uint64) (*model.Desk, error) {
	d, err := scanDesk(conn(ctx, r.db).QueryRowContext(ctx, deskSelect+" WHERE d.id = ?", id))
	return d, notFound(err)
}

func (r *DeskRepo) GetByNumber(ctx context.Context, floorID uint64, number string) (*model.Desk, error) {
	d, err := scanDesk(conn(ctx, r.db).QueryRowContext(ctx,
		deskSelect+" WHERE d.floor_id = ? AND d.desk_number = ?", floorID, number))
	return d, notFound(err)
}

func (r *DeskRepo) Create(ctx context.Context, d *model.Desk) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO desks (desk_number, floor_id, department_id, type, status, position_x, position_y,
		 equipment, notes, near_window, near_elevator, near_break_area, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.DeskNumber, d.FloorID, d.DepartmentID, d.Type, d.Status, d.PositionX, d.PositionY,
		d.Equipment, d.Notes, d.NearWindow, d.NearElevator, d.NearBreakArea, d.Active)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert desk: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return nil
}

func (r *DeskRepo) Update(ctx context.Context, d *model.Desk) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE desks SET desk_number = ?, department_id = ?, type = ?, status = ?, position_x = ?,
		 position_y = ?, equipment = ?, notes = ?, near_window = ?, near_elevator = ?,
		 near_break_area = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		d.DeskNumber, d.DepartmentID, d.Type, d.Status, d.PositionX, d.PositionY, d.Equipment,
		d.Notes, d.NearWindow, d.NearElevator, d.NearBreakArea, d.Active, d.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update desk: %w", err)
	}
	return nil
}

// CountActive returns the number of active desks in the building.
func (r *DeskRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx, "SELECT COUNT(*) FROM desks WHERE is_active = 1").Scan(&n)
	return n, err
}

// CountActiveByFloor returns active desk counts keyed by floor ID.  Floors
// without active desks are absent.
func (r *DeskRepo) CountActiveByFloor(ctx context.Context) (map[uint64]int, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT floor_id, COUNT(*) FROM desks WHERE is_active = 1 GROUP BY floor_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64]int)
	for rows.Next() {
		var (
			floorID uint64
			n       int
		)
		if err := rows.Scan(&floorID, &n); err != nil {
			return nil, err
		}
		out[floorID] = n
	}
	return out, rows.Err()
}
