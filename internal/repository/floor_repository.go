package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/desk-booking/internal/model"
)

// FloorRepo persists floors and their denormalized counters.
type FloorRepo struct{ db *sql.DB }

func NewFloorRepo(db *sql.DB) *FloorRepo { return &FloorRepo{db: db} }

const floorCols = `id, floor_number, name, code, square_meters, description, map_image_url,
	total_desks, total_lockers, is_active, created_at, updated_at`

func scanFloor(s scanner) (*model.Floor, error) {
	var f model.Floor
	err := s.Scan(&f.ID, &f.FloorNumber, &f.Name, &f.Code, &f.SquareMeters, &f.Description,
		&f.MapImageURL, &f.TotalDesks, &f.TotalLockers, &f.Active, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FloorRepo) list(ctx context.Context, where string, args ...any) ([]model.Floor, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT "+floorCols+" FROM floors "+where+" ORDER BY floor_number", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Floor
	for rows.Next() {
		f, err := scanFloor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// List returns every floor, active or not.
func (r *FloorRepo) List(ctx context.Context) ([]model.Floor, error) { return r.list(ctx, "") }

// ListActive returns active floors ordered by floor number.
func (r *FloorRepo) ListActive(ctx context.Context) ([]model.Floor, error) {
	return r.list(ctx, "WHERE is_active = 1")
}

func (r *FloorRepo) GetByID(ctx context.Context, id uint64) (*model.Floor, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, "SELECT "+floorCols+" FROM floors WHERE id = ?", id)
	f, err := scanFloor(row)
	return f, notFound(err)
}

func (r *FloorRepo) GetByNumber(ctx context.Context, number int) (*model.Floor, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, "SELECT "+floorCols+" FROM floors WHERE floor_number = ?", number)
	f, err := scanFloor(row)
	return f, notFound(err)
}

// Create inserts a floor and fills in its generated ID.
func (r *FloorRepo) Create(ctx context.Context, f *model.Floor) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO floors (floor_number, name, code, square_meters, description, map_image_url, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.FloorNumber, f.Name, f.Code, f.SquareMeters, f.Description, f.MapImageURL, f.Active)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert floor: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

// Update writes the editable columns.  Counters are owned by RecountDesks
// and RecountLockers.
func (r *FloorRepo) Update(ctx context.Context, f *model.Floor) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE floors SET floor_number = ?, name = ?, code = ?, square_meters = ?, description = ?,
		 map_image_url = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		f.FloorNumber, f.Name, f.Code, f.SquareMeters, f.Description, f.MapImageURL, f.Active, f.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update floor: %w", err)
	}
	return nil
}

// RecountDesks recomputes total_desks from the active desks on the floor
// and returns the new value.
func (r *FloorRepo) RecountDesks(ctx context.Context, floorID uint64) (int, error) {
	q := conn(ctx, r.db)
	if _, err := q.ExecContext(ctx,
		`UPDATE floors SET total_desks = (SELECT COUNT(*) FROM desks WHERE floor_id = ? AND is_active = 1),
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`, floorID, floorID); err != nil {
		return 0, fmt.Errorf("recount desks: %w", err)
	}
	var n int
	err := q.QueryRowContext(ctx, "SELECT total_desks FROM floors WHERE id = ?", floorID).Scan(&n)
	return n, notFound(err)
}

// RecountLockers recomputes total_lockers the same way.
func (r *FloorRepo) RecountLockers(ctx context.Context, floorID uint64) (int, error) {
	q := conn(ctx, r.db)
	if _, err := q.ExecContext(ctx,
		`UPDATE floors SET total_lockers = (SELECT COUNT(*) FROM lockers WHERE floor_id = ? AND is_active = 1),
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`, floorID, floorID); err != nil {
		return 0, fmt.Errorf("recount lockers: %w", err)
	}
	var n int
	err := q.QueryRowContext(ctx, "SELECT total_lockers FROM floors WHERE id = ?", floorID).Scan(&n)
	return n, notFound(err)
}
