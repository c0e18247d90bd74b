package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/repository"
)

// LockerService manages lockers and their assignments.  A locker has at
// most one ACTIVE assignment and a user holds at most one.
type LockerService struct {
	tx          Transactor
	lockers     LockerStore
	assignments AssignmentStore
	floors      FloorStore
	users       UserStore
	clock       Clock
	logger      zerolog.Logger
}

func NewLockerService(tx Transactor, lockers LockerStore, assignments AssignmentStore, floors FloorStore,
	users UserStore, clock Clock, logger zerolog.Logger) *LockerService {
	return &LockerService{
		tx:          tx,
		lockers:     lockers,
		assignments: assignments,
		floors:      floors,
		users:       users,
		clock:       clock,
		logger:      logger.With().Str("service", "lockers").Logger(),
	}
}

type LockerInput struct {
	LockerNumber string
	FloorID      uint64
	Type         model.LockerType
	PositionX    *float64
	PositionY    *float64
	Notes        *string
}

type LockerPatch struct {
	LockerNumber *string
	Type         *model.LockerType
	Status       *model.LockerStatus
	PositionX    *float64
	PositionY    *float64
	Notes        *string
	Active       *bool
}

type AssignmentInput struct {
	UserID     uint64
	LockerID   uint64
	StartDate  model.Date
	EndDate    *model.Date
	Notes      *string
	AccessCode *string
}

func (s *LockerService) List(ctx context.Context) ([]model.Locker, error) { return s.lockers.List(ctx) }

func (s *LockerService) ListByFloor(ctx context.Context, floorID uint64) ([]model.Locker, error) {
	return s.lockers.ListByFloor(ctx, floorID)
}

func (s *LockerService) ListFree(ctx context.Context, typ *model.LockerType) ([]model.Locker, error) {
	return s.lockers.ListFree(ctx, typ)
}

func (s *LockerService) Get(ctx context.Context, id uint64) (*model.Locker, error) {
	l, err := s.lockers.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "locker %d not found", id)
	}
	return l, nil
}

// Create adds a locker and recounts its floor.
func (s *LockerService) Create(ctx context.Context, in LockerInput) (*model.Locker, error) {
	number := strings.TrimSpace(in.LockerNumber)
	if number == "" {
		return nil, newError(KindValidation, "locker_number is required")
	}
	if in.Type == "" {
		in.Type = model.LockerFree
	}
	if !in.Type.Valid() {
		return nil, newError(KindValidation, "invalid locker type %q", in.Type)
	}
	l := &model.Locker{
		LockerNumber: number,
		FloorID:      in.FloorID,
		Type:         in.Type,
		Status:       model.LockerStatusFree,
		PositionX:    in.PositionX,
		PositionY:    in.PositionY,
		Notes:        in.Notes,
		Active:       true,
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.floors.GetByID(ctx, in.FloorID); err != nil {
			return notFoundAs(err, "floor %d not found", in.FloorID)
		}
		if err := s.lockers.Create(ctx, l); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return newError(KindDuplicate, "locker %s already exists on floor %d", number, in.FloorID)
			}
			return err
		}
		_, err := s.floors.RecountLockers(ctx, l.FloorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Uint64("locker_id", l.ID).Str("locker_number", l.LockerNumber).Msg("locker created")
	return l, nil
}

func (s *LockerService) Update(ctx context.Context, id uint64, p LockerPatch) (*model.Locker, error) {
	var l *model.Locker
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		l, err = s.lockers.GetByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "locker %d not found", id)
		}
		if p.LockerNumber != nil {
			if strings.TrimSpace(*p.LockerNumber) == "" {
				return newError(KindValidation, "locker_number must not be empty")
			}
			l.LockerNumber = strings.TrimSpace(*p.LockerNumber)
		}
		if p.Type != nil {
			if !p.Type.Valid() {
				return newError(KindValidation, "invalid locker type %q", *p.Type)
			}
			l.Type = *p.Type
		}
		if p.Status != nil {
			if !p.Status.Valid() {
				return newError(KindValidation, "invalid locker status %q", *p.Status)
			}
			l.Status = *p.Status
		}
		if p.PositionX != nil {
			l.PositionX = p.PositionX
		}
		if p.PositionY != nil {
			l.PositionY = p.PositionY
		}
		if p.Notes != nil {
			l.Notes = p.Notes
		}
		if p.Active != nil {
			l.Active = *p.Active
		}
		if err := s.lockers.Update(ctx, l); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return newError(KindDuplicate, "locker %s already exists on floor %d", l.LockerNumber, l.FloorID)
			}
			return err
		}
		_, err = s.floors.RecountLockers(ctx, l.FloorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Delete deactivates the locker.
func (s *LockerService) Delete(ctx context.Context, id uint64) error {
	inactive := false
	_, err := s.Update(ctx, id, LockerPatch{Active: &inactive})
	return err
}

func (s *LockerService) GetAssignment(ctx context.Context, id uint64) (*model.LockerAssignment, error) {
	a, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "assignment %d not found", id)
	}
	return a, nil
}

func (s *LockerService) AssignmentsByUser(ctx context.Context, userID uint64) ([]model.LockerAssignment, error) {
	return s.assignments.ListByUser(ctx, userID)
}

func (s *LockerService) AssignmentsByLocker(ctx context.Context, lockerID uint64) ([]model.LockerAssignment, error) {
	return s.assignments.ListByLocker(ctx, lockerID)
}

// ActiveForUser returns the user's ACTIVE assignment.
func (s *LockerService) ActiveForUser(ctx context.Context, userID uint64) (*model.LockerAssignment, error) {
	a, err := s.assignments.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "user %d holds no locker", userID)
	}
	return a, nil
}

// ActiveForLocker returns the locker's ACTIVE assignment.
func (s *LockerService) ActiveForLocker(ctx context.Context, lockerID uint64) (*model.LockerAssignment, error) {
	a, err := s.assignments.FindActiveByLocker(ctx, lockerID)
	if err != nil {
		return nil, notFoundAs(err, "locker %d is not assigned", lockerID)
	}
	return a, nil
}

// Assign gives a locker to a user.  Overdue assignments are expired first
// so that their lockers can be handed out again.
func (s *LockerService) Assign(ctx context.Context, in AssignmentInput) (*model.LockerAssignment, error) {
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return nil, newError(KindInvalidRange, "end date %s is before start date %s", *in.EndDate, in.StartDate)
	}
	a := &model.LockerAssignment{
		UserID:     in.UserID,
		LockerID:   in.LockerID,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Status:     model.AssignmentActive,
		Notes:      trimmed(in.Notes),
		AccessCode: trimmed(in.AccessCode),
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.expireDue(ctx); err != nil {
			return err
		}
		if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
			return notFoundAs(err, "user %d not found", in.UserID)
		}
		l, err := s.lockers.GetByID(ctx, in.LockerID)
		if err != nil {
			return notFoundAs(err, "locker %d not found", in.LockerID)
		}
		if !l.Active || l.Status == model.LockerStatusMaintenance {
			return newError(KindInvalidState, "locker %s cannot be assigned", l.LockerNumber)
		}
		if _, err := s.assignments.FindActiveByLocker(ctx, in.LockerID); err == nil {
			return newError(KindConflict, "locker %s is already assigned", l.LockerNumber)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if _, err := s.assignments.FindActiveByUser(ctx, in.UserID); err == nil {
			return newError(KindConflict, "user %d already holds a locker", in.UserID)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := s.assignments.Create(ctx, a); err != nil {
			return err
		}
		return s.lockers.SetStatus(ctx, in.LockerID, model.LockerStatusAssigned)
	})
	if err != nil {
		if errors.Is(err, repository.ErrLockerTaken) || errors.Is(err, repository.ErrUserHasLocker) {
			return nil, &Error{Kind: KindConflict, Msg: err.Error(), Err: err}
		}
		return nil, err
	}
	s.logger.Info().Uint64("assignment_id", a.ID).Uint64("locker_id", a.LockerID).Uint64("user_id", a.UserID).Msg("locker assigned")
	return a, nil
}

// Revoke ends an ACTIVE assignment and frees its locker.
func (s *LockerService) Revoke(ctx context.Context, id uint64) (*model.LockerAssignment, error) {
	var a *model.LockerAssignment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.assignments.GetByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "assignment %d not found", id)
		}
		if a.Status != model.AssignmentActive {
			return newError(KindInvalidState, "assignment %d is already %s", a.ID, a.Status)
		}
		a.Status = model.AssignmentRevoked
		if err := s.assignments.Update(ctx, a); err != nil {
			return err
		}
		return s.lockers.SetStatus(ctx, a.LockerID, model.LockerStatusFree)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Uint64("assignment_id", a.ID).Msg("locker assignment revoked")
	return a, nil
}

// ExpireDue marks ACTIVE assignments that ended before today EXPIRED and
// frees their lockers.  It returns how many were expired.
func (s *LockerService) ExpireDue(ctx context.Context) (int, error) {
	var n int
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.expireDue(ctx)
		return err
	})
	if err == nil && n > 0 {
		s.logger.Info().Int("expired", n).Msg("locker assignments expired")
	}
	return n, err
}

func (s *LockerService) expireDue(ctx context.Context) (int, error) {
	due, err := s.assignments.ListDue(ctx, today(s.clock))
	if err != nil {
		return 0, err
	}
	for i := range due {
		a := &due[i]
		a.Status = model.AssignmentExpired
		if err := s.assignments.Update(ctx, a); err != nil {
			return 0, err
		}
		if err := s.lockers.SetStatus(ctx, a.LockerID, model.LockerStatusFree); err != nil {
			return 0, err
		}
	}
	return len(due), nil
}
