package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/repository"
)

type DepartmentService struct {
	departments DepartmentStore
	floors      FloorStore
	logger      zerolog.Logger
}

func NewDepartmentService(departments DepartmentStore, floors FloorStore, logger zerolog.Logger) *DepartmentService {
	return &DepartmentService{
		departments: departments,
		floors:      floors,
		logger:      logger.With().Str("service", "departments").Logger(),
	}
}

type DepartmentInput struct {
	Name        string
	Code        string
	Description *string
	FloorID     *uint64
}

type DepartmentPatch struct {
	Name        *string
	Description *string
	FloorID     *uint64
	Active      *bool
}

func (s *DepartmentService) List(ctx context.Context) ([]model.Department, error) {
	return s.departments.List(ctx)
}

func (s *DepartmentService) Get(ctx context.Context, id uint64) (*model.Department, error) {
	d, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "department %d not found", id)
	}
	return d, nil
}

// Create adds a department.  Codes are unique and stored upper case.
func (s *DepartmentService) Create(ctx context.Context, in DepartmentInput) (*model.Department, error) {
	name := strings.TrimSpace(in.Name)
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if name == "" || code == "" {
		return nil, newError(KindValidation, "name and code are required")
	}
	if in.FloorID != nil {
		if _, err := s.floors.GetByID(ctx, *in.FloorID); err != nil {
			return nil, notFoundAs(err, "floor %d not found", *in.FloorID)
		}
	}
	d := &model.Department{
		Name:        name,
		Code:        code,
		Description: in.Description,
		FloorID:     in.FloorID,
		Active:      true,
	}
	if err := s.departments.Create(ctx, d); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(KindDuplicate, "department code %s already exists", code)
		}
		return nil, err
	}
	s.logger.Info().Uint64("department_id", d.ID).Str("code", d.Code).Msg("department created")
	return d, nil
}

func (s *DepartmentService) Update(ctx context.Context, id uint64, p DepartmentPatch) (*model.Department, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return nil, newError(KindValidation, "name must not be empty")
		}
		d.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		d.Description = p.Description
	}
	if p.FloorID != nil {
		if _, err := s.floors.GetByID(ctx, *p.FloorID); err != nil {
			return nil, notFoundAs(err, "floor %d not found", *p.FloorID)
		}
		d.FloorID = p.FloorID
	}
	if p.Active != nil {
		d.Active = *p.Active
	}
	if err := s.departments.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DepartmentService) Delete(ctx context.Context, id uint64) error {
	inactive := false
	_, err := s.Update(ctx, id, DepartmentPatch{Active: &inactive})
	return err
}
