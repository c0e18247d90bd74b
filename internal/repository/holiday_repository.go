package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/desk-booking/internal/model"
)

// HolidayRepo persists company holidays.  At most one active holiday may
// exist per date; the unique key on (holiday_date, active_slot) enforces it.
type HolidayRepo struct{ db *sql.DB }

func NewHolidayRepo(db *sql.DB) *HolidayRepo { return &HolidayRepo{db: db} }

const holidayCols = `id, holiday_date, name, description, type, is_recurring, is_active, created_at, updated_at`

func scanHoliday(s scanner) (*model.CompanyHoliday, error) {
	var h model.CompanyHoliday
	if err := s.Scan(&h.ID, &h.Date, &h.Name, &h.Description, &h.Type, &h.Recurring, &h.Active,
		&h.CreatedAt, &h.UpdatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *HolidayRepo) query(ctx context.Context, tail string, args ...any) ([]model.CompanyHoliday, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, "SELECT "+holidayCols+" FROM company_holidays "+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.CompanyHoliday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}

func (r *HolidayRepo) ListAll(ctx context.Context) ([]model.CompanyHoliday, error) {
	return r.query(ctx, "ORDER BY holiday_date, id")
}

// ListActiveInRange returns active holidays with start <= date <= end in
// ascending date order.
func (r *HolidayRepo) ListActiveInRange(ctx context.Context, start, end model.Date) ([]model.CompanyHoliday, error) {
	return r.query(ctx, "WHERE is_active = 1 AND holiday_date BETWEEN ? AND ? ORDER BY holiday_date", start, end)
}

// ListActiveRecurring returns every active holiday flagged recurring,
// oldest first.
func (r *HolidayRepo) ListActiveRecurring(ctx context.Context) ([]model.CompanyHoliday, error) {
	return r.query(ctx, "WHERE is_active = 1 AND is_recurring = 1 ORDER BY holiday_date, id")
}

func (r *HolidayRepo) GetByID(ctx context.Context, id uint64) (*model.CompanyHoliday, error) {
	h, err := scanHoliday(conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+holidayCols+" FROM company_holidays WHERE id = ?", id))
	return h, notFound(err)
}

// FindActiveByDate returns the active holiday on date or ErrNotFound.
func (r *HolidayRepo) FindActiveByDate(ctx context.Context, date model.Date) (*model.CompanyHoliday, error) {
	h, err := scanHoliday(conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+holidayCols+" FROM company_holidays WHERE holiday_date = ? AND is_active = 1", date))
	return h, notFound(err)
}

func (r *HolidayRepo) Create(ctx context.Context, h *model.CompanyHoliday) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO company_holidays (holiday_date, name, description, type, is_recurring, is_active, active_slot)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.Date, h.Name, h.Description, h.Type, h.Recurring, h.Active, activeSlot(h.Active))
	if err != nil {
		if isDuplicate(err) {
			return ErrHolidayDateTaken
		}
		return fmt.Errorf("insert holiday: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

func (r *HolidayRepo) Update(ctx context.Context, h *model.CompanyHoliday) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE company_holidays SET holiday_date = ?, name = ?, description = ?, type = ?, is_recurring = ?,
		 is_active = ?, active_slot = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		h.Date, h.Name, h.Description, h.Type, h.Recurring, h.Active, activeSlot(h.Active), h.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrHolidayDateTaken
		}
		return fmt.Errorf("update holiday: %w", err)
	}
	return nil
}
