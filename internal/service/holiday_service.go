package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/desk-booking/internal/metrics"
	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/repository"
)

// HolidayCalendar answers which dates are non-working and maintains the
// company holiday table.
type HolidayCalendar struct {
	tx       Transactor
	holidays HolidayStore
	logger   zerolog.Logger
}

func NewHolidayCalendar(tx Transactor, holidays HolidayStore, logger zerolog.Logger) *HolidayCalendar {
	return &HolidayCalendar{tx: tx, holidays: holidays, logger: logger.With().Str("service", "holidays").Logger()}
}

// HolidayInput carries the fields of a new holiday.
type HolidayInput struct {
	Date        model.Date
	Name        string
	Description *string
	Type        model.HolidayType
	Recurring   bool
}

// HolidayPatch overwrites only its non-nil fields.
type HolidayPatch struct {
	Date        *model.Date
	Name        *string
	Description *string
	Type        *model.HolidayType
	Recurring   *bool
	Active      *bool
}

// IsHoliday reports whether an active holiday exists on exactly date.
func (c *HolidayCalendar) IsHoliday(ctx context.Context, date model.Date) (bool, error) {
	_, err := c.holidays.FindActiveByDate(ctx, date)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InRange returns the active holidays in [start, end] ordered by date.
func (c *HolidayCalendar) InRange(ctx context.Context, start, end model.Date) ([]model.CompanyHoliday, error) {
	if start.After(end) {
		return nil, newError(KindInvalidRange, "start date %s is after end date %s", start, end)
	}
	return c.holidays.ListActiveInRange(ctx, start, end)
}

// List returns the active holidays ordered by date.
func (c *HolidayCalendar) List(ctx context.Context) ([]model.CompanyHoliday, error) {
	all, err := c.holidays.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.CompanyHoliday, 0, len(all))
	for _, h := range all {
		if h.Active {
			out = append(out, h)
		}
	}
	return out, nil
}

func (c *HolidayCalendar) Get(ctx context.Context, id uint64) (*model.CompanyHoliday, error) {
	h, err := c.holidays.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "holiday %d not found", id)
	}
	return h, nil
}

// Create adds an active holiday.  A second active holiday on the same date
// is rejected with DuplicateDate.
func (c *HolidayCalendar) Create(ctx context.Context, in HolidayInput) (*model.CompanyHoliday, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newError(KindValidation, "name is required")
	}
	if in.Type == "" {
		in.Type = model.HolidayFestivity
	}
	if !in.Type.Valid() {
		return nil, newError(KindValidation, "invalid holiday type %q", in.Type)
	}
	h := &model.CompanyHoliday{
		Date:        in.Date,
		Name:        name,
		Description: in.Description,
		Type:        in.Type,
		Recurring:   in.Recurring,
		Active:      true,
	}
	err := c.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := c.ensureDateFree(ctx, h.Date, 0); err != nil {
			return err
		}
		return c.holidays.Create(ctx, h)
	})
	if err != nil {
		return nil, duplicateDate(err, h.Date)
	}
	c.logger.Info().Uint64("holiday_id", h.ID).Str("date", h.Date.String()).Str("name", h.Name).Msg("holiday created")
	return h, nil
}

// Update applies p.  Moving the holiday to a date, or reactivating it on a
// date, that already has another active holiday fails with DuplicateDate.
func (c *HolidayCalendar) Update(ctx context.Context, id uint64, p HolidayPatch) (*model.CompanyHoliday, error) {
	var h *model.CompanyHoliday
	err := c.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		h, err = c.holidays.GetByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "holiday %d not found", id)
		}
		if p.Date != nil {
			h.Date = *p.Date
		}
		if p.Name != nil {
			if strings.TrimSpace(*p.Name) == "" {
				return newError(KindValidation, "name must not be empty")
			}
			h.Name = strings.TrimSpace(*p.Name)
		}
		if p.Description != nil {
			h.Description = p.Description
		}
		if p.Type != nil {
			if !p.Type.Valid() {
				return newError(KindValidation, "invalid holiday type %q", *p.Type)
			}
			h.Type = *p.Type
		}
		if p.Recurring != nil {
			h.Recurring = *p.Recurring
		}
		if p.Active != nil {
			h.Active = *p.Active
		}
		if h.Active {
			if err := c.ensureDateFree(ctx, h.Date, h.ID); err != nil {
				return err
			}
		}
		return c.holidays.Update(ctx, h)
	})
	if err != nil {
		if h != nil {
			return nil, duplicateDate(err, h.Date)
		}
		return nil, err
	}
	return h, nil
}

// Delete deactivates the holiday.  Nothing else is touched.
func (c *HolidayCalendar) Delete(ctx context.Context, id uint64) error {
	inactive := false
	_, err := c.Update(ctx, id, HolidayPatch{Active: &inactive})
	if err == nil {
		c.logger.Info().Uint64("holiday_id", id).Msg("holiday deactivated")
	}
	return err
}

// ResolveRecurringForYear projects every active recurring holiday onto
// year.  Projections whose date has no active holiday yet are persisted as
// new recurring holidays.  The result holds the year's active holidays,
// old and new, ordered by date.
func (c *HolidayCalendar) ResolveRecurringForYear(ctx context.Context, year int) ([]model.CompanyHoliday, error) {
	start := model.NewDate(year, time.January, 1)
	end := model.NewDate(year, time.December, 31)

	var result []model.CompanyHoliday
	created := 0
	err := c.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := c.holidays.ListActiveInRange(ctx, start, end)
		if err != nil {
			return err
		}
		recurring, err := c.holidays.ListActiveRecurring(ctx)
		if err != nil {
			return err
		}
		taken := make(map[string]bool, len(existing))
		for _, h := range existing {
			taken[h.Date.String()] = true
		}
		result = existing
		for _, r := range recurring {
			target := RecurringDate(r.Date, year)
			if taken[target.String()] {
				continue
			}
			h := model.CompanyHoliday{
				Date:        target,
				Name:        r.Name,
				Description: r.Description,
				Type:        r.Type,
				Recurring:   true,
				Active:      true,
			}
			if err := c.holidays.Create(ctx, &h); err != nil {
				return err
			}
			taken[target.String()] = true
			result = append(result, h)
			created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	if created > 0 {
		metrics.AddHolidaysMaterialized(created)
		c.logger.Info().Int("year", year).Int("created", created).Msg("recurring holidays materialized")
	}
	return result, nil
}

// RecurringDate moves d's month and day into year.  February 29 falls on
// February 28 in years without one.
func RecurringDate(d model.Date, year int) model.Date {
	month, day := d.Month(), d.Day()
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return model.NewDate(year, month, day)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// ensureDateFree fails with DuplicateDate if an active holiday other than
// selfID already occupies date.
func (c *HolidayCalendar) ensureDateFree(ctx context.Context, date model.Date, selfID uint64) error {
	other, err := c.holidays.FindActiveByDate(ctx, date)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if other.ID == selfID {
		return nil
	}
	return newError(KindDuplicateDate, "a holiday already exists on %s", date)
}

// duplicateDate maps the store's uniqueness violation, raised when a
// concurrent writer won the race, onto DuplicateDate.
func duplicateDate(err error, date model.Date) error {
	if errors.Is(err, repository.ErrHolidayDateTaken) {
		return &Error{Kind: KindDuplicateDate, Msg: "a holiday already exists on " + date.String(), Err: err}
	}
	return err
}
