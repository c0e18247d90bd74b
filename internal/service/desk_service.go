package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/repository"
)

// DeskService manages desks and keeps the desk counters of floors and
// departments in step with them.
type DeskService struct {
	tx          Transactor
	desks       DeskStore
	floors      FloorStore
	departments DepartmentStore
	bookings    BookingStore
	logger      zerolog.Logger
}

func NewDeskService(tx Transactor, desks DeskStore, floors FloorStore, departments DepartmentStore,
	bookings BookingStore, logger zerolog.Logger) *DeskService {
	return &DeskService{
		tx:          tx,
		desks:       desks,
		floors:      floors,
		departments: departments,
		bookings:    bookings,
		logger:      logger.With().Str("service", "desks").Logger(),
	}
}

type DeskInput struct {
	DeskNumber    string
	FloorID       uint64
	DepartmentID  *uint64
	Type          model.DeskType
	PositionX     *float64
	PositionY     *float64
	Equipment     *string
	Notes         *string
	NearWindow    bool
	NearElevator  bool
	NearBreakArea bool
}

type DeskPatch struct {
	DepartmentID  *uint64
	Type          *model.DeskType
	Status        *model.DeskStatus
	PositionX     *float64
	PositionY     *float64
	Equipment     *string
	Notes         *string
	NearWindow    *bool
	NearElevator  *bool
	NearBreakArea *bool
	Active        *bool
}

func (s *DeskService) List(ctx context.Context) ([]model.Desk, error) { return s.desks.List(ctx) }

func (s *DeskService) ListActive(ctx context.Context) ([]model.Desk, error) {
	return s.desks.ListActive(ctx)
}

func (s *DeskService) ListByFloor(ctx context.Context, floorID uint64) ([]model.Desk, error) {
	return s.desks.ListByFloor(ctx, floorID)
}

func (s *DeskService) ListByDepartment(ctx context.Context, departmentID uint64) ([]model.Desk, error) {
	return s.desks.ListByDepartment(ctx, departmentID)
}

func (s *DeskService) Get(ctx context.Context, id uint64) (*model.Desk, error) {
	d, err := s.desks.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "desk %d not found", id)
	}
	return d, nil
}

// AvailableForDate lists active AVAILABLE desks with no desk-holding
// booking on date.
func (s *DeskService) AvailableForDate(ctx context.Context, date model.Date, floorID, departmentID *uint64) ([]model.Desk, error) {
	return s.desks.ListAvailableForDate(ctx, date, floorID, departmentID)
}

// Availability reports every active desk, optionally of one floor, with
// the booking that holds it on date if any.
func (s *DeskService) Availability(ctx context.Context, date model.Date, floorID *uint64) ([]model.DeskAvailability, error) {
	var (
		desks []model.Desk
		err   error
	)
	if floorID != nil {
		desks, err = s.desks.ListByFloor(ctx, *floorID)
	} else {
		desks, err = s.desks.ListActive(ctx)
	}
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListActiveForDateOnFloor(ctx, date, floorID)
	if err != nil {
		return nil, err
	}
	held := make(map[uint64]*model.Booking, len(bookings))
	for i := range bookings {
		held[bookings[i].DeskID] = &bookings[i]
	}

	out := make([]model.DeskAvailability, 0, len(desks))
	for _, d := range desks {
		if !d.Active {
			continue
		}
		b := held[d.ID]
		out = append(out, model.DeskAvailability{
			DeskID:          d.ID,
			DeskNumber:      d.DeskNumber,
			FloorNumber:     d.FloorNumber,
			Available:       b == nil && d.Status == model.DeskAvailable,
			ExistingBooking: b,
		})
	}
	return out, nil
}

// Create adds a desk and recounts its floor and department.
func (s *DeskService) Create(ctx context.Context, in DeskInput) (*model.Desk, error) {
	number := strings.TrimSpace(in.DeskNumber)
	if number == "" {
		return nil, newError(KindValidation, "desk_number is required")
	}
	if in.Type == "" {
		in.Type = model.DeskStandard
	}
	if !in.Type.Valid() {
		return nil, newError(KindValidation, "invalid desk type %q", in.Type)
	}
	d := &model.Desk{
		DeskNumber:    number,
		FloorID:       in.FloorID,
		DepartmentID:  in.DepartmentID,
		Type:          in.Type,
		Status:        model.DeskAvailable,
		PositionX:     in.PositionX,
		PositionY:     in.PositionY,
		Equipment:     in.Equipment,
		Notes:         in.Notes,
		NearWindow:    in.NearWindow,
		NearElevator:  in.NearElevator,
		NearBreakArea: in.NearBreakArea,
		Active:        true,
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.floors.GetByID(ctx, in.FloorID); err != nil {
			return notFoundAs(err, "floor %d not found", in.FloorID)
		}
		if in.DepartmentID != nil {
			if _, err := s.departments.GetByID(ctx, *in.DepartmentID); err != nil {
				return notFoundAs(err, "department %d not found", *in.DepartmentID)
			}
		}
		if err := s.desks.Create(ctx, d); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return newError(KindDuplicate, "desk %s already exists on floor %d", number, in.FloorID)
			}
			return err
		}
		return s.recount(ctx, d.FloorID, d.DepartmentID)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Uint64("desk_id", d.ID).Str("desk_number", d.DeskNumber).Uint64("floor_id", d.FloorID).Msg("desk created")
	return s.Get(ctx, d.ID)
}

// Update applies p.  Moving a desk between departments or toggling its
// active flag recounts the affected totals in the same transaction.
func (s *DeskService) Update(ctx context.Context, id uint64, p DeskPatch) (*model.Desk, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		d, err := s.desks.GetByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "desk %d not found", id)
		}
		oldDepartment := d.DepartmentID
		if p.DepartmentID != nil {
			if _, err := s.departments.GetByID(ctx, *p.DepartmentID); err != nil {
				return notFoundAs(err, "department %d not found", *p.DepartmentID)
			}
			d.DepartmentID = p.DepartmentID
		}
		if p.Type != nil {
			if !p.Type.Valid() {
				return newError(KindValidation, "invalid desk type %q", *p.Type)
			}
			d.Type = *p.Type
		}
		if p.Status != nil {
			if !p.Status.Valid() {
				return newError(KindValidation, "invalid desk status %q", *p.Status)
			}
			d.Status = *p.Status
		}
		if p.PositionX != nil {
			d.PositionX = p.PositionX
		}
		if p.PositionY != nil {
			d.PositionY = p.PositionY
		}
		if p.Equipment != nil {
			d.Equipment = p.Equipment
		}
		if p.Notes != nil {
			d.Notes = p.Notes
		}
		if p.NearWindow != nil {
			d.NearWindow = *p.NearWindow
		}
		if p.NearElevator != nil {
			d.NearElevator = *p.NearElevator
		}
		if p.NearBreakArea != nil {
			d.NearBreakArea = *p.NearBreakArea
		}
		if p.Active != nil {
			d.Active = *p.Active
		}
		if err := s.desks.Update(ctx, d); err != nil {
			return err
		}
		if err := s.recount(ctx, d.FloorID, d.DepartmentID); err != nil {
			return err
		}
		if oldDepartment != nil && (d.DepartmentID == nil || *oldDepartment != *d.DepartmentID) {
			return s.departments.RecountDesks(ctx, *oldDepartment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete deactivates the desk.
func (s *DeskService) Delete(ctx context.Context, id uint64) error {
	inactive := false
	_, err := s.Update(ctx, id, DeskPatch{Active: &inactive})
	if err == nil {
		s.logger.Info().Uint64("desk_id", id).Msg("desk deactivated")
	}
	return err
}

func (s *DeskService) recount(ctx context.Context, floorID uint64, departmentID *uint64) error {
	if _, err := s.floors.RecountDesks(ctx, floorID); err != nil {
		return err
	}
	if departmentID != nil {
		return s.departments.RecountDesks(ctx, *departmentID)
	}
	return nil
}

// Import creates a desk per row.  Rows naming a desk that already exists
// on their floor are skipped, invalid rows are counted as errors, and
// neither stops the import.
func (s *DeskService) Import(ctx context.Context, rows []model.DeskImportRow) model.ImportResult {
	res := model.ImportResult{ErrorMessages: []string{}}
	floorIDs := make(map[int]uint64)
	departmentIDs := make(map[string]uint64)
	fail := func(row int, format string, args ...any) {
		res.Errors++
		res.ErrorMessages = append(res.ErrorMessages, fmt.Sprintf("row %d: ", row)+fmt.Sprintf(format, args...))
	}

	for _, r := range rows {
		number := strings.TrimSpace(r.DeskNumber)
		if number == "" {
			fail(r.Row, "desk_number is required")
			continue
		}
		floorNumber, err := strconv.Atoi(strings.TrimSpace(r.FloorNumber))
		if err != nil {
			fail(r.Row, "invalid floor_number %q", r.FloorNumber)
			continue
		}
		floorID, ok := floorIDs[floorNumber]
		if !ok {
			f, err := s.floors.GetByNumber(ctx, floorNumber)
			if err != nil {
				fail(r.Row, "floor %d not found", floorNumber)
				continue
			}
			floorID = f.ID
			floorIDs[floorNumber] = floorID
		}
		if _, err := s.desks.GetByNumber(ctx, floorID, number); err == nil {
			res.Skipped++
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			fail(r.Row, "lookup desk %s: %v", number, err)
			continue
		}

		in := DeskInput{
			DeskNumber: number,
			FloorID:    floorID,
			Type:       model.DeskType(strings.ToUpper(strings.TrimSpace(r.Type))),
			Equipment:  optional(r.Equipment),
			Notes:      optional(r.Notes),
		}
		if code := strings.ToUpper(strings.TrimSpace(r.DepartmentCode)); code != "" {
			id, ok := departmentIDs[code]
			if !ok {
				dep, err := s.departments.GetByCode(ctx, code)
				if err != nil {
					fail(r.Row, "department %s not found", code)
					continue
				}
				id = dep.ID
				departmentIDs[code] = id
			}
			in.DepartmentID = &id
		}
		if _, err := s.Create(ctx, in); err != nil {
			if errors.Is(err, ErrDuplicate) {
				res.Skipped++
				continue
			}
			fail(r.Row, "%v", err)
			continue
		}
		res.Imported++
	}
	s.logger.Info().Int("imported", res.Imported).Int("skipped", res.Skipped).Int("errors", res.Errors).Msg("desk import finished")
	return res
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
