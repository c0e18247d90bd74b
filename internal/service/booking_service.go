package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/desk-booking/internal/metrics"
	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/queue"
	"github.com/iliyamo/desk-booking/internal/repository"
)

// BookingService is the booking conflict engine.  It keeps at most one
// desk-holding booking per desk and per user on any date and drives the
// booking state machine:
//
//	ACTIVE -> CHECKED_IN -> CHECKED_OUT -> COMPLETED
//	ACTIVE | CHECKED_IN -> CANCELLED
//	ACTIVE -> NO_SHOW
//
// Every check-then-write runs in one transaction, and unique keys on the
// bookings table back the same rules at store level.
type BookingService struct {
	tx        Transactor
	bookings  BookingStore
	desks     DeskStore
	users     UserStore
	publisher EventPublisher
	clock     Clock
	logger    zerolog.Logger
}

func NewBookingService(tx Transactor, bookings BookingStore, desks DeskStore, users UserStore,
	publisher EventPublisher, clock Clock, logger zerolog.Logger) *BookingService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &BookingService{
		tx:        tx,
		bookings:  bookings,
		desks:     desks,
		users:     users,
		publisher: publisher,
		clock:     clock,
		logger:    logger.With().Str("service", "bookings").Logger(),
	}
}

// BookingRequest describes a new booking.  Times are HH:MM.
type BookingRequest struct {
	UserID    uint64
	DeskID    uint64
	Date      model.Date
	StartTime *string
	EndTime   *string
	Type      model.BookingType
	Notes     *string
}

// BookingPatch overwrites only its non-nil fields.
type BookingPatch struct {
	Date      *model.Date
	StartTime *string
	EndTime   *string
	Notes     *string
}

func (s *BookingService) Get(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "booking %d not found", id)
	}
	return b, nil
}

func (s *BookingService) ListAll(ctx context.Context) ([]model.Booking, error) {
	return s.bookings.ListAll(ctx)
}

func (s *BookingService) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// ListUpcoming returns the user's ACTIVE bookings from today on.
func (s *BookingService) ListUpcoming(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return s.bookings.ListUpcomingByUser(ctx, userID, today(s.clock))
}

// ListForDate returns the desk-holding bookings of date ordered by floor
// number and desk number.
func (s *BookingService) ListForDate(ctx context.Context, date model.Date) ([]model.Booking, error) {
	return s.bookings.ListActiveForDate(ctx, date)
}

func (s *BookingService) ListForDateAndFloor(ctx context.Context, date model.Date, floorID uint64) ([]model.Booking, error) {
	return s.bookings.ListActiveForDateAndFloor(ctx, date, floorID)
}

// Create books a desk for a user on one date.
func (s *BookingService) Create(ctx context.Context, req BookingRequest) (*model.Booking, error) {
	if req.Date.Before(today(s.clock)) {
		return nil, newError(KindInvalidDate, "cannot book %s: date is in the past", req.Date)
	}
	if err := validateTimes(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if req.Type == "" {
		req.Type = model.BookingFullDay
	}
	if !req.Type.Valid() {
		return nil, newError(KindValidation, "invalid booking type %q", req.Type)
	}

	b := &model.Booking{
		UserID:      req.UserID,
		DeskID:      req.DeskID,
		BookingDate: req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      model.BookingActive,
		Type:        req.Type,
		Notes:       trimmed(req.Notes),
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
			return notFoundAs(err, "user %d not found", req.UserID)
		}
		desk, err := s.desks.GetByID(ctx, req.DeskID)
		if err != nil {
			return notFoundAs(err, "desk %d not found", req.DeskID)
		}
		if !desk.Active {
			return newError(KindInvalidState, "desk %s is not active", desk.DeskNumber)
		}
		if err := s.checkDeskFree(ctx, req.DeskID, req.Date, 0); err != nil {
			return err
		}
		if err := s.checkUserFree(ctx, req.UserID, req.Date, 0); err != nil {
			return err
		}
		return s.bookings.Create(ctx, b)
	})
	if err != nil {
		return nil, s.conflict(err, b)
	}

	if full, err := s.bookings.GetByID(ctx, b.ID); err == nil {
		b = full
	}
	s.logger.Info().Uint64("booking_id", b.ID).Uint64("user_id", b.UserID).Uint64("desk_id", b.DeskID).
		Str("date", b.BookingDate.String()).Msg("booking created")
	s.publish(ctx, queue.EventCreated, b)
	return b, nil
}

// Update changes date, times or notes of an ACTIVE or CHECKED_IN booking.
// A new date must not be in the past and is checked for desk and user
// conflicts, ignoring the booking itself.
func (s *BookingService) Update(ctx context.Context, id uint64, p BookingPatch) (*model.Booking, error) {
	return s.transition(ctx, id, queue.EventUpdated, func(ctx context.Context, b *model.Booking, _ time.Time) error {
		if !b.Status.HoldsDesk() {
			return newError(KindInvalidState, "booking %d is %s and can no longer be changed", b.ID, b.Status)
		}
		if p.Date != nil && !p.Date.Equal(b.BookingDate) {
			if p.Date.Before(today(s.clock)) {
				return newError(KindInvalidDate, "cannot move booking to %s: date is in the past", *p.Date)
			}
			if err := s.checkDeskFree(ctx, b.DeskID, *p.Date, b.ID); err != nil {
				return err
			}
			if err := s.checkUserFree(ctx, b.UserID, *p.Date, b.ID); err != nil {
				return err
			}
			b.BookingDate = *p.Date
		}
		if p.StartTime != nil {
			b.StartTime = p.StartTime
		}
		if p.EndTime != nil {
			b.EndTime = p.EndTime
		}
		if p.Notes != nil {
			b.Notes = trimmed(p.Notes)
		}
		return validateTimes(b.StartTime, b.EndTime)
	})
}

// Cancel moves an ACTIVE or CHECKED_IN booking to CANCELLED.
func (s *BookingService) Cancel(ctx context.Context, id uint64, reason *string) (*model.Booking, error) {
	return s.transition(ctx, id, queue.EventCancelled, func(_ context.Context, b *model.Booking, now time.Time) error {
		if !b.Status.HoldsDesk() {
			return newError(KindInvalidState, "booking %d is already %s", b.ID, b.Status)
		}
		b.Status = model.BookingCancelled
		b.CancelledAt = &now
		b.CancellationReason = trimmed(reason)
		return nil
	})
}

// CheckIn is allowed only for an ACTIVE booking dated today.
func (s *BookingService) CheckIn(ctx context.Context, id uint64) (*model.Booking, error) {
	return s.transition(ctx, id, queue.EventCheckedIn, func(_ context.Context, b *model.Booking, now time.Time) error {
		if b.Status != model.BookingActive {
			return newError(KindInvalidState, "cannot check in: booking %d is %s", b.ID, b.Status)
		}
		if d := today(s.clock); !b.BookingDate.Equal(d) {
			return newError(KindInvalidState, "cannot check in: booking is for %s, today is %s", b.BookingDate, d)
		}
		b.Status = model.BookingCheckedIn
		b.CheckedInAt = &now
		return nil
	})
}

// CheckOut is allowed only for a CHECKED_IN booking.
func (s *BookingService) CheckOut(ctx context.Context, id uint64) (*model.Booking, error) {
	return s.transition(ctx, id, queue.EventCheckedOut, func(_ context.Context, b *model.Booking, now time.Time) error {
		if b.Status != model.BookingCheckedIn {
			return newError(KindInvalidState, "cannot check out: booking %d is %s", b.ID, b.Status)
		}
		b.Status = model.BookingCheckedOut
		b.CheckedOutAt = &now
		return nil
	})
}

// MarkNoShow releases an ACTIVE booking whose day has come without a
// check-in.
func (s *BookingService) MarkNoShow(ctx context.Context, id uint64) (*model.Booking, error) {
	return s.transition(ctx, id, queue.EventNoShow, func(_ context.Context, b *model.Booking, _ time.Time) error {
		if b.Status != model.BookingActive {
			return newError(KindInvalidState, "cannot mark no-show: booking %d is %s", b.ID, b.Status)
		}
		if b.BookingDate.After(today(s.clock)) {
			return newError(KindInvalidState, "cannot mark no-show: booking %d is for %s", b.ID, b.BookingDate)
		}
		b.Status = model.BookingNoShow
		return nil
	})
}

// Complete closes a CHECKED_OUT booking.
func (s *BookingService) Complete(ctx context.Context, id uint64) (*model.Booking, error) {
	return s.transition(ctx, id, queue.EventCompleted, func(_ context.Context, b *model.Booking, _ time.Time) error {
		if b.Status != model.BookingCheckedOut {
			return newError(KindInvalidState, "cannot complete: booking %d is %s", b.ID, b.Status)
		}
		b.Status = model.BookingCompleted
		return nil
	})
}

// transition loads the booking, lets apply validate and mutate it, and
// saves it in one transaction.  The event is published after commit.
func (s *BookingService) transition(ctx context.Context, id uint64, event queue.EventType,
	apply func(ctx context.Context, b *model.Booking, now time.Time) error) (*model.Booking, error) {
	now := s.clock.Now().UTC()
	var b *model.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.bookings.GetByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "booking %d not found", id)
		}
		if err := apply(ctx, b, now); err != nil {
			return err
		}
		return s.bookings.Update(ctx, b)
	})
	if err != nil {
		return nil, s.conflict(err, b)
	}
	s.logger.Info().Uint64("booking_id", b.ID).Str("event", string(event)).Str("status", string(b.Status)).Msg("booking changed")
	s.publish(ctx, event, b)
	return b, nil
}

func (s *BookingService) checkDeskFree(ctx context.Context, deskID uint64, date model.Date, selfID uint64) error {
	other, err := s.bookings.FindActiveByDeskAndDate(ctx, deskID, date)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if other.ID == selfID {
		return nil
	}
	return newError(KindDeskConflict, "desk %d is already booked on %s", deskID, date)
}

func (s *BookingService) checkUserFree(ctx context.Context, userID uint64, date model.Date, selfID uint64) error {
	other, err := s.bookings.FindActiveByUserAndDate(ctx, userID, date)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if other.ID == selfID {
		return nil
	}
	return newError(KindUserConflict, "user %d already has a booking on %s", userID, date)
}

// conflict maps store-level uniqueness violations onto the conflict kinds
// and counts every conflict.
func (s *BookingService) conflict(err error, b *model.Booking) error {
	switch {
	case errors.Is(err, repository.ErrDeskDateTaken):
		e := newError(KindDeskConflict, "desk %d is already booked on %s", b.DeskID, b.BookingDate)
		e.Err = err
		err = e
	case errors.Is(err, repository.ErrUserDateTaken):
		e := newError(KindUserConflict, "user %d already has a booking on %s", b.UserID, b.BookingDate)
		e.Err = err
		err = e
	}
	switch KindOf(err) {
	case KindDeskConflict:
		metrics.IncBookingConflict("desk")
	case KindUserConflict:
		metrics.IncBookingConflict("user")
	}
	return err
}

func (s *BookingService) publish(ctx context.Context, typ queue.EventType, b *model.Booking) {
	metrics.IncBookingEvent(string(typ))
	ev := queue.NewBookingEvent(typ, b, s.clock.Now())
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("event_id", ev.EventID).Uint64("booking_id", b.ID).Msg("booking event not published")
	}
}

// validateTimes checks HH:MM syntax and that end does not precede start.
func validateTimes(start, end *string) error {
	var st, et time.Time
	var err error
	if start != nil {
		if st, err = model.ClockTime(*start); err != nil {
			return &Error{Kind: KindValidation, Msg: err.Error()}
		}
	}
	if end != nil {
		if et, err = model.ClockTime(*end); err != nil {
			return &Error{Kind: KindValidation, Msg: err.Error()}
		}
	}
	if start != nil && end != nil && et.Before(st) {
		return newError(KindInvalidTimeRange, "end time %s is before start time %s", *end, *start)
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
