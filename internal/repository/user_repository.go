package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/desk-booking/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, email, password_hash, first_name, last_name, employee_id, department_id, role,
	work_type, phone_number, is_active, email_verified, last_login_at, created_at, updated_at`

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	if err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.EmployeeID,
		&u.DepartmentID, &u.Role, &u.WorkType, &u.PhoneNumber, &u.Active, &u.EmailVerified,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// NormalizeEmail lower-cases and trims an address the way it is stored.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create inserts u with an already hashed password and sets its ID.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = NormalizeEmail(u.Email)
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO users (email, password_hash, first_name, last_name, employee_id, department_id, role,
		 work_type, phone_number, is_active, email_verified) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.EmployeeID, u.DepartmentID, u.Role,
		u.WorkType, u.PhoneNumber, u.Active, u.EmailVerified)
	if err != nil {
		return classifyUserErr("insert user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email = ? LIMIT 1", NormalizeEmail(email)))
	return u, notFound(err)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id = ? LIMIT 1", id))
	return u, notFound(err)
}

func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, "SELECT "+userCols+" FROM users ORDER BY last_name, first_name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// Update writes the profile columns.  The password hash is left alone.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	u.Email = NormalizeEmail(u.Email)
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		`UPDATE users SET email = ?, first_name = ?, last_name = ?, employee_id = ?, department_id = ?,
		 role = ?, work_type = ?, phone_number = ?, is_active = ?, email_verified = ?,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		u.Email, u.FirstName, u.LastName, u.EmployeeID, u.DepartmentID, u.Role, u.WorkType,
		u.PhoneNumber, u.Active, u.EmailVerified, u.ID)
	if err != nil {
		return classifyUserErr("update user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	_, err := conn(ctx, r.DB).ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", hash, id)
	return err
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64, at time.Time) error {
	_, err := conn(ctx, r.DB).ExecContext(ctx, "UPDATE users SET last_login_at = ? WHERE id = ?", at.UTC(), id)
	return err
}

// Delete removes the user row.  Bookings, assignments and tokens cascade.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func classifyUserErr(op string, err error) error {
	if isDuplicate(err) {
		if violates(err, "email") {
			return ErrEmailExists
		}
		return ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}
