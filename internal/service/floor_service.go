package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/repository"
)

type FloorService struct {
	floors FloorStore
	logger zerolog.Logger
}

func NewFloorService(floors FloorStore, logger zerolog.Logger) *FloorService {
	return &FloorService{floors: floors, logger: logger.With().Str("service", "floors").Logger()}
}

type FloorInput struct {
	FloorNumber  int
	Name         string
	Code         string
	SquareMeters *int
	Description  *string
	MapImageURL  *string
}

type FloorPatch struct {
	Name         *string
	Code         *string
	SquareMeters *int
	Description  *string
	MapImageURL  *string
	Active       *bool
}

func (s *FloorService) List(ctx context.Context) ([]model.Floor, error) { return s.floors.List(ctx) }

func (s *FloorService) ListActive(ctx context.Context) ([]model.Floor, error) {
	return s.floors.ListActive(ctx)
}

func (s *FloorService) Get(ctx context.Context, id uint64) (*model.Floor, error) {
	f, err := s.floors.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "floor %d not found", id)
	}
	return f, nil
}

func (s *FloorService) GetByNumber(ctx context.Context, number int) (*model.Floor, error) {
	f, err := s.floors.GetByNumber(ctx, number)
	if err != nil {
		return nil, notFoundAs(err, "floor number %d not found", number)
	}
	return f, nil
}

// Create adds a floor.  Floor numbers are unique.
func (s *FloorService) Create(ctx context.Context, in FloorInput) (*model.Floor, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newError(KindValidation, "name is required")
	}
	f := &model.Floor{
		FloorNumber:  in.FloorNumber,
		Name:         name,
		Code:         strings.TrimSpace(in.Code),
		SquareMeters: in.SquareMeters,
		Description:  in.Description,
		MapImageURL:  in.MapImageURL,
		Active:       true,
	}
	if err := s.floors.Create(ctx, f); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(KindDuplicate, "floor number %d already exists", in.FloorNumber)
		}
		return nil, err
	}
	s.logger.Info().Uint64("floor_id", f.ID).Int("floor_number", f.FloorNumber).Msg("floor created")
	return f, nil
}

func (s *FloorService) Update(ctx context.Context, id uint64, p FloorPatch) (*model.Floor, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return nil, newError(KindValidation, "name must not be empty")
		}
		f.Name = strings.TrimSpace(*p.Name)
	}
	if p.Code != nil {
		f.Code = strings.TrimSpace(*p.Code)
	}
	if p.SquareMeters != nil {
		f.SquareMeters = p.SquareMeters
	}
	if p.Description != nil {
		f.Description = p.Description
	}
	if p.MapImageURL != nil {
		f.MapImageURL = p.MapImageURL
	}
	if p.Active != nil {
		f.Active = *p.Active
	}
	if err := s.floors.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Delete deactivates the floor.  Its desks and lockers keep their state.
func (s *FloorService) Delete(ctx context.Context, id uint64) error {
	inactive := false
	_, err := s.Update(ctx, id, FloorPatch{Active: &inactive})
	return err
}
