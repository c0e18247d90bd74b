package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/queue"
)

func strp(s string) *string { return &s }

func TestBookingService_Create(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	d := e.desk(t, f.ID, "A-01")
	u := e.user(t)

	b, err := e.bookings.Create(e.ctx, BookingRequest{UserID: u.ID, DeskID: d.ID, Date: day(2024, time.June, 3), Notes: strp("  near the window ")})
	require.NoError(t, err)
	assert.Equal(t, model.BookingActive, b.Status)
	assert.Equal(t, model.BookingFullDay, b.Type)
	assert.Equal(t, "A-01", b.DeskNumber)
	assert.Equal(t, 1, b.FloorNumber)
	require.NotNil(t, b.Notes)
	assert.Equal(t, "near the window", *b.Notes)
	assert.Equal(t, []queue.EventType{queue.EventCreated}, e.pub.types())
}

func TestBookingService_CreateRejectsPastDate(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	d := e.desk(t, f.ID, "A-01")
	u := e.user(t)

	_, err := e.bookings.Create(e.ctx, BookingRequest{UserID: u.ID, DeskID: d.ID, Date: day(2024, time.June, 2)})
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Empty(t, e.pub.types())
}

func TestBookingService_CreateValidatesTimes(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	d := e.desk(t, f.ID, "A-01")
	u := e.user(t)
	date := day(2024, time.June, 4)

	_, err := e.bookings.Create(e.ctx, BookingRequest{UserID: u.ID, DeskID: d.ID, Date: date,
		StartTime: strp("14:00"), EndTime: strp("09:00"), Type: model.BookingCustom})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = e.bookings.Create(e.ctx, BookingRequest{UserID: u.ID, DeskID: d.ID, Date: date, StartTime: strp("9am")})
	assert.ErrorIs(t, err, ErrValidation)

	b, err := e.bookings.Create(e.ctx, BookingRequest{UserID: u.ID, DeskID: d.ID, Date: date,
		StartTime: strp("09:00"), EndTime: strp("13:00"), Type: model.BookingMorning})
	require.NoError(t, err)
	assert.Equal(t, "09:00", *b.StartTime)
}

func TestBookingService_CreateUnknownUserOrDesk(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	d := e.desk(t, f.ID, "A-01")
	u := e.user(t)

	_, err := e.bookings.Create(e.ctx, BookingRequest{UserID: 999, DeskID: d.ID, Date: day(2024, time.June, 3)})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.bookings.Create(e.ctx, BookingRequest{UserID: u.ID, DeskID: 999, Date: day(2024, time.June, 3)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingService_CreateInactiveDesk(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	d := e.desk(t, f.ID, "A-01")
	u := e.user(t)
	require.NoError(t, e.desks.Delete(e.ctx, d.ID))

	_, err := e.bookings.Create(e.ctx, BookingRequest{UserID: u.ID, DeskID: d.ID, Date: day(2024, time.June, 3)})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestBookingService_DeskConflictLeavesStateUnchanged(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	desks := e.deskRow(t, f.ID, 5)
	a, b := e.user(t), e.user(t)
	desk5 := desks[4]
	date := day(2024, time.June, 3)

	first, err := e.bookings.Create(e.ctx, BookingRequest{UserID: a.ID, DeskID: desk5.ID, Date: date})
	require.NoError(t, err)

	_, err = e.bookings.Create(e.ctx, BookingRequest{UserID: b.ID, DeskID: desk5.ID, Date: date})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeskConflict)
	assert.Equal(t, KindDeskConflict, KindOf(err))

	held, err := e.bookings.ListForDate(e.ctx, date)
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, first.ID, held[0].ID)

	mine, err := e.bookings.ListByUser(e.ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestBookingService_UserConflict(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	desks := e.deskRow(t, f.ID, 2)
	u := e.user(t)
	date := day(2024, time.June, 5)

	_, err := e.bookings.Create(e.ctx, BookingRequest{UserID: u.ID, DeskID: desks[0].ID, Date: date})
	require.NoError(t, err)

	_, err = e.bookings.Create(e.ctx, BookingRequest{UserID: u.ID, DeskID: desks[1].ID, Date: date})
	assert.ErrorIs(t, err, ErrUserConflict)
}

func TestBookingService_CancelledBookingFreesDesk(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	d := e.desk(t, f.ID, "A-01")
	a, b := e.user(t), e.user(t)
	date := day(2024, time.June, 6)

	first, err := e.bookings.Create(e.ctx, BookingRequest{UserID: a.ID, DeskID: d.ID, Date: date})
	require.NoError(t, err)

	cancelled, err := e.bookings.Cancel(e.ctx, first.ID, strp("sick"))
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, "sick", *cancelled.CancellationReason)

	second, err := e.bookings.Create(e.ctx, BookingRequest{UserID: b.ID, DeskID: d.ID, Date: date})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// the original user may book another desk again too
	other := e.desk(t, f.ID, "A-02")
	_, err = e.bookings.Create(e.ctx, BookingRequest{UserID: a.ID, DeskID: other.ID, Date: date})
	require.NoError(t, err)
}

func TestBookingService_CancelCheckedOutIsInvalid(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	d := e.desk(t, f.ID, "A-01")
	u := e.user(t)
	b := e.booking(t, u.ID, d.ID, day(2024, time.June, 3), model.BookingCheckedOut)

	_, err := e.bookings.Cancel(e.ctx, b.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidState)

	got, err := e.bookings.Get(e.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCheckedOut, got.Status)
}

func TestBookingService_Lifecycle(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	d := e.desk(t, f.ID, "A-01")
	u := e.user(t)

	b, err := e.bookings.Create(e.ctx, BookingRequest{UserID: u.ID, DeskID: d.ID, Date: day(2024, time.June, 3)})
	require.NoError(t, err)

	_, err = e.bookings.CheckOut(e.ctx, b.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	b, err = e.bookings.CheckIn(e.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCheckedIn, b.Status)
	require.NotNil(t, b.CheckedInAt)

	_, err = e.bookings.Complete(e.ctx, b.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	b, err = e.bookings.CheckOut(e.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCheckedOut, b.Status)
	require.NotNil(t, b.CheckedOutAt)

	b, err = e.bookings.Complete(e.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCompleted, b.Status)

	assert.Equal(t, []queue.EventType{queue.EventCreated, queue.EventCheckedIn, queue.EventCheckedOut, queue.EventCompleted},
		e.pub.types())
}

func TestBookingService_CheckInOnlyToday(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	d := e.desk(t, f.ID, "A-01")
	u := e.user(t)

	b, err := e.bookings.Create(e.ctx, BookingRequest{UserID: u.ID, DeskID: d.ID, Date: day(2024, time.June, 4)})
	require.NoError(t, err)

	_, err = e.bookings.CheckIn(e.ctx, b.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	got, err := e.bookings.Get(e.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingActive, got.Status)
}

func TestBookingService_MarkNoShow(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	d := e.desk(t, f.ID, "A-01")
	u := e.user(t)

	future := e.booking(t, u.ID, d.ID, day(2024, time.June, 10), model.BookingActive)
	_, err := e.bookings.MarkNoShow(e.ctx, future.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	past := e.booking(t, u.ID, d.ID, day(2024, time.May, 31), model.BookingActive)
	got, err := e.bookings.MarkNoShow(e.ctx, past.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingNoShow, got.Status)

	_, err = e.bookings.MarkNoShow(e.ctx, past.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestBookingService_UpdateMovesDate(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	d := e.desk(t, f.ID, "A-01")
	a, b := e.user(t), e.user(t)

	mine, err := e.bookings.Create(e.ctx, BookingRequest{UserID: a.ID, DeskID: d.ID, Date: day(2024, time.June, 4)})
	require.NoError(t, err)
	_, err = e.bookings.Create(e.ctx, BookingRequest{UserID: b.ID, DeskID: d.ID, Date: day(2024, time.June, 5)})
	require.NoError(t, err)

	taken := day(2024, time.June, 5)
	_, err = e.bookings.Update(e.ctx, mine.ID, BookingPatch{Date: &taken})
	assert.ErrorIs(t, err, ErrDeskConflict)

	past := day(2024, time.June, 1)
	_, err = e.bookings.Update(e.ctx, mine.ID, BookingPatch{Date: &past})
	assert.ErrorIs(t, err, ErrInvalidDate)

	// same date with new notes is not a conflict with itself
	same := day(2024, time.June, 4)
	got, err := e.bookings.Update(e.ctx, mine.ID, BookingPatch{Date: &same, Notes: strp("standing desk")})
	require.NoError(t, err)
	assert.Equal(t, "standing desk", *got.Notes)

	free := day(2024, time.June, 7)
	got, err = e.bookings.Update(e.ctx, mine.ID, BookingPatch{Date: &free})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-07", got.BookingDate.String())

	_, err = e.bookings.Update(e.ctx, mine.ID, BookingPatch{StartTime: strp("18:00"), EndTime: strp("08:00")})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestBookingService_UpdateRejections(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	d1 := e.desk(t, f.ID, "A-01")
	d2 := e.desk(t, f.ID, "A-02")
	u := e.user(t)

	cancelled := e.booking(t, u.ID, d1.ID, day(2024, time.June, 10), model.BookingCancelled)
	checkedOut := e.booking(t, u.ID, d1.ID, day(2024, time.June, 3), model.BookingCheckedOut)
	movable := e.booking(t, u.ID, d1.ID, day(2024, time.June, 4), model.BookingActive)
	e.booking(t, u.ID, d2.ID, day(2024, time.June, 5), model.BookingActive)

	taken := day(2024, time.June, 5)
	later := day(2024, time.June, 12)
	tests := []struct {
		name  string
		id    uint64
		patch BookingPatch
		want  error
	}{
		{"cancelled booking", cancelled.ID, BookingPatch{Notes: strp("late change")}, ErrInvalidState},
		{"checked out booking", checkedOut.ID, BookingPatch{Date: &later}, ErrInvalidState},
		{"unknown booking", 9999, BookingPatch{Notes: strp("x")}, ErrNotFound},
		{"user already booked on new date", movable.ID, BookingPatch{Date: &taken}, ErrUserConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.bookings.Update(e.ctx, tt.id, tt.patch)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	got, err := e.bookings.Get(e.ctx, movable.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-04", got.BookingDate.String())
	assert.Equal(t, model.BookingActive, got.Status)
}

func TestBookingService_PublishFailureIsNotFatal(t *testing.T) {
	e := newEnv(t, monday)
	e.pub.err = errors.New("broker down")
	f := e.floor(t, 1)
	d := e.desk(t, f.ID, "A-01")
	u := e.user(t)

	b, err := e.bookings.Create(e.ctx, BookingRequest{UserID: u.ID, DeskID: d.ID, Date: day(2024, time.June, 3)})
	require.NoError(t, err)
	assert.NotZero(t, b.ID)
}

func TestBookingService_Lists(t *testing.T) {
	e := newEnv(t, monday)
	f1, f2 := e.floor(t, 1), e.floor(t, 2)
	d1 := e.desk(t, f1.ID, "A-01")
	d2 := e.desk(t, f2.ID, "B-01")
	a, b := e.user(t), e.user(t)

	e.booking(t, a.ID, d1.ID, day(2024, time.May, 30), model.BookingCompleted)
	e.booking(t, a.ID, d1.ID, day(2024, time.June, 4), model.BookingActive)
	e.booking(t, b.ID, d2.ID, day(2024, time.June, 4), model.BookingActive)
	e.booking(t, b.ID, d1.ID, day(2024, time.June, 5), model.BookingCancelled)

	upcoming, err := e.bookings.ListUpcoming(e.ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "2024-06-04", upcoming[0].BookingDate.String())

	onDay, err := e.bookings.ListForDate(e.ctx, day(2024, time.June, 4))
	require.NoError(t, err)
	require.Len(t, onDay, 2)
	assert.Equal(t, "A-01", onDay[0].DeskNumber)
	assert.Equal(t, "B-01", onDay[1].DeskNumber)

	onFloor, err := e.bookings.ListForDateAndFloor(e.ctx, day(2024, time.June, 4), f2.ID)
	require.NoError(t, err)
	require.Len(t, onFloor, 1)
	assert.Equal(t, b.ID, onFloor[0].UserID)

	all, err := e.bookings.ListAll(e.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = e.bookings.Get(e.ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}
