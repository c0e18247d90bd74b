package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/desk-booking/internal/model"
)

type DepartmentRepo struct{ db *sql.DB }

func NewDepartmentRepo(db *sql.DB) *DepartmentRepo { return &DepartmentRepo{db: db} }

const departmentCols = `id, name, code, description, floor_id, total_desks, is_active, created_at, updated_at`

func scanDepartment(s scanner) (*model.Department, error) {
	var d model.Department
	if err := s.Scan(&d.ID, &d.Name, &d.Code, &d.Description, &d.FloorID, &d.TotalDesks,
		&d.Active, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DepartmentRepo) List(ctx context.Context) ([]model.Department, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, "SELECT "+departmentCols+" FROM departments ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *DepartmentRepo) GetByID(ctx context.Context, id uint64) (*model.Department, error) {
	d, err := scanDepartment(conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+departmentCols+" FROM departments WHERE id = ?", id))
	return d, notFound(err)
}

func (r *DepartmentRepo) GetByCode(ctx context.Context, code string) (*model.Department, error) {
	d, err := scanDepartment(conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+departmentCols+" FROM departments WHERE code = ?", code))
	return d, notFound(err)
}

func (r *DepartmentRepo) Create(ctx context.Context, d *model.Department) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO departments (name, code, description, floor_id, is_active) VALUES (?, ?, ?, ?, ?)",
		d.Name, d.Code, d.Description, d.FloorID, d.Active)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert department: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return nil
}

func (r *DepartmentRepo) Update(ctx context.Context, d *model.Department) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE departments SET name = ?, code = ?, description = ?, floor_id = ?, is_active = ?,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		d.Name, d.Code, d.Description, d.FloorID, d.Active, d.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update department: %w", err)
	}
	return nil
}

// RecountDesks recomputes total_desks from the active desks of the
// department.
func (r *DepartmentRepo) RecountDesks(ctx context.Context, departmentID uint64) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE departments SET total_desks = (SELECT COUNT(*) FROM desks WHERE department_id = ? AND is_active = 1),
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`, departmentID, departmentID)
	if err != nil {
		return fmt.Errorf("recount department desks: %w", err)
	}
	return nil
}
