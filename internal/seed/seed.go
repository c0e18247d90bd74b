// Package seed loads reference data (floors, departments and holidays)
// from a YAML file and inserts whatever is missing.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/service"
)

type Floor struct {
	Number       int    `yaml:"number"`
	Name         string `yaml:"name"`
	Code         string `yaml:"code"`
	SquareMeters *int   `yaml:"square_meters,omitempty"`
	Description  string `yaml:"description,omitempty"`
}

type Department struct {
	Name        string `yaml:"name"`
	Code        string `yaml:"code"`
	Description string `yaml:"description,omitempty"`
	Floor       *int   `yaml:"floor,omitempty"` // floor number
}

type Holiday struct {
	Date      string `yaml:"date"` // YYYY-MM-DD
	Name      string `yaml:"name"`
	Type      string `yaml:"type,omitempty"`
	Recurring bool   `yaml:"recurring"`
}

// File is the root of the seed YAML.
type File struct {
	Floors      []Floor      `yaml:"floors"`
	Departments []Department `yaml:"departments"`
	Holidays    []Holiday    `yaml:"holidays"`
}

// Load reads path, expands ${VAR} references from the environment and
// validates the result.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("validate seed file: %w", err)
	}
	return &f, nil
}

// Validate checks required fields, unique floor numbers and department
// codes, and date syntax.
func (f *File) Validate() error {
	floors := make(map[int]bool)
	for i, fl := range f.Floors {
		if strings.TrimSpace(fl.Name) == "" {
			return fmt.Errorf("floors[%d]: name is required", i)
		}
		if floors[fl.Number] {
			return fmt.Errorf("floors[%d]: duplicate floor number %d", i, fl.Number)
		}
		floors[fl.Number] = true
	}
	codes := make(map[string]bool)
	for i, d := range f.Departments {
		code := strings.ToUpper(strings.TrimSpace(d.Code))
		if code == "" || strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("departments[%d]: name and code are required", i)
		}
		if codes[code] {
			return fmt.Errorf("departments[%d]: duplicate code %s", i, code)
		}
		codes[code] = true
	}
	for i, h := range f.Holidays {
		if _, err := model.ParseDate(h.Date); err != nil {
			return fmt.Errorf("holidays[%d]: %w", i, err)
		}
		if strings.TrimSpace(h.Name) == "" {
			return fmt.Errorf("holidays[%d]: name is required", i)
		}
		if h.Type != "" && !model.HolidayType(strings.ToUpper(h.Type)).Valid() {
			return fmt.Errorf("holidays[%d]: invalid type %q", i, h.Type)
		}
	}
	return nil
}

type Floors interface {
	GetByNumber(ctx context.Context, number int) (*model.Floor, error)
	Create(ctx context.Context, in service.FloorInput) (*model.Floor, error)
}

type Departments interface {
	Create(ctx context.Context, in service.DepartmentInput) (*model.Department, error)
}

type Holidays interface {
	Create(ctx context.Context, in service.HolidayInput) (*model.CompanyHoliday, error)
}

// Result counts what Apply inserted.
type Result struct {
	Floors      int
	Departments int
	Holidays    int
}

// Seeder inserts a File through the services, so the same validation and
// uniqueness rules apply as for API writes.
type Seeder struct {
	floors      Floors
	departments Departments
	holidays    Holidays
	logger      zerolog.Logger
}

func NewSeeder(floors Floors, departments Departments, holidays Holidays, logger zerolog.Logger) *Seeder {
	return &Seeder{floors: floors, departments: departments, holidays: holidays,
		logger: logger.With().Str("component", "seed").Logger()}
}

// Apply inserts the floors, departments and holidays of f that do not exist
// yet.  Running it twice inserts nothing the second time.
func (s *Seeder) Apply(ctx context.Context, f *File) (Result, error) {
	var res Result
	for _, fl := range f.Floors {
		_, err := s.floors.GetByNumber(ctx, fl.Number)
		if err == nil {
			continue
		}
		if !errors.Is(err, service.ErrNotFound) {
			return res, err
		}
		if _, err := s.floors.Create(ctx, service.FloorInput{
			FloorNumber:  fl.Number,
			Name:         fl.Name,
			Code:         fl.Code,
			SquareMeters: fl.SquareMeters,
			Description:  optional(fl.Description),
		}); err != nil && !errors.Is(err, service.ErrDuplicate) {
			return res, fmt.Errorf("seed floor %d: %w", fl.Number, err)
		} else if err == nil {
			res.Floors++
		}
	}

	for _, d := range f.Departments {
		in := service.DepartmentInput{Name: d.Name, Code: d.Code, Description: optional(d.Description)}
		if d.Floor != nil {
			fl, err := s.floors.GetByNumber(ctx, *d.Floor)
			if err != nil {
				return res, fmt.Errorf("seed department %s: floor %d: %w", d.Code, *d.Floor, err)
			}
			in.FloorID = &fl.ID
		}
		_, err := s.departments.Create(ctx, in)
		switch {
		case err == nil:
			res.Departments++
		case errors.Is(err, service.ErrDuplicate):
		default:
			return res, fmt.Errorf("seed department %s: %w", d.Code, err)
		}
	}

	for _, h := range f.Holidays {
		date, _ := model.ParseDate(h.Date)
		_, err := s.holidays.Create(ctx, service.HolidayInput{
			Date:      date,
			Name:      h.Name,
			Type:      model.HolidayType(strings.ToUpper(h.Type)),
			Recurring: h.Recurring,
		})
		switch {
		case err == nil:
			res.Holidays++
		case errors.Is(err, service.ErrDuplicateDate):
		default:
			return res, fmt.Errorf("seed holiday %s: %w", h.Date, err)
		}
	}

	s.logger.Info().Int("floors", res.Floors).Int("departments", res.Departments).
		Int("holidays", res.Holidays).Msg("reference data seeded")
	return res, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
