package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/desk-booking/internal/model"
)

func TestLockerService_CreateRecountsFloor(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)

	l, err := e.lockers.Create(e.ctx, LockerInput{LockerNumber: " L-01 ", FloorID: f.ID, Type: model.LockerShiftWorkers})
	require.NoError(t, err)
	assert.Equal(t, "L-01", l.LockerNumber)
	assert.Equal(t, model.LockerStatusFree, l.Status)

	_, err = e.lockers.Create(e.ctx, LockerInput{LockerNumber: "L-01", FloorID: f.ID})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = e.lockers.Create(e.ctx, LockerInput{LockerNumber: "L-02", FloorID: 999})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.lockers.Create(e.ctx, LockerInput{LockerNumber: "L-03", FloorID: f.ID, Type: "BIG"})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := e.floors.Get(e.ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalLockers)

	require.NoError(t, e.lockers.Delete(e.ctx, l.ID))
	got, err = e.floors.Get(e.ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalLockers)
}

func TestLockerService_AssignAndRevoke(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	l, err := e.lockers.Create(e.ctx, LockerInput{LockerNumber: "L-01", FloorID: f.ID})
	require.NoError(t, err)
	other, err := e.lockers.Create(e.ctx, LockerInput{LockerNumber: "L-02", FloorID: f.ID})
	require.NoError(t, err)
	a, b := e.user(t), e.user(t)

	asg, err := e.lockers.Assign(e.ctx, AssignmentInput{UserID: a.ID, LockerID: l.ID, StartDate: day(2024, time.June, 3), AccessCode: strp("1234")})
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentActive, asg.Status)

	locker, err := e.lockers.Get(e.ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LockerStatusAssigned, locker.Status)

	_, err = e.lockers.Assign(e.ctx, AssignmentInput{UserID: b.ID, LockerID: l.ID, StartDate: day(2024, time.June, 3)})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = e.lockers.Assign(e.ctx, AssignmentInput{UserID: a.ID, LockerID: other.ID, StartDate: day(2024, time.June, 3)})
	assert.ErrorIs(t, err, ErrConflict)

	active, err := e.lockers.ActiveForUser(e.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, asg.ID, active.ID)

	revoked, err := e.lockers.Revoke(e.ctx, asg.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentRevoked, revoked.Status)

	_, err = e.lockers.Revoke(e.ctx, asg.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	locker, err = e.lockers.Get(e.ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LockerStatusFree, locker.Status)

	_, err = e.lockers.ActiveForUser(e.ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.lockers.Assign(e.ctx, AssignmentInput{UserID: b.ID, LockerID: l.ID, StartDate: day(2024, time.June, 4)})
	require.NoError(t, err)

	history, err := e.lockers.AssignmentsByLocker(e.ctx, l.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestLockerService_AssignRejectsMaintenanceAndBadRange(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	l, err := e.lockers.Create(e.ctx, LockerInput{LockerNumber: "L-01", FloorID: f.ID})
	require.NoError(t, err)
	u := e.user(t)

	end := day(2024, time.June, 1)
	_, err = e.lockers.Assign(e.ctx, AssignmentInput{UserID: u.ID, LockerID: l.ID, StartDate: day(2024, time.June, 3), EndDate: &end})
	assert.ErrorIs(t, err, ErrInvalidRange)

	maintenance := model.LockerStatusMaintenance
	_, err = e.lockers.Update(e.ctx, l.ID, LockerPatch{Status: &maintenance})
	require.NoError(t, err)

	_, err = e.lockers.Assign(e.ctx, AssignmentInput{UserID: u.ID, LockerID: l.ID, StartDate: day(2024, time.June, 3)})
	assert.ErrorIs(t, err, ErrInvalidState)

	free, err := e.lockers.ListFree(e.ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, free)
}

func TestLockerService_ExpireDue(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	l, err := e.lockers.Create(e.ctx, LockerInput{LockerNumber: "L-01", FloorID: f.ID})
	require.NoError(t, err)
	a, b := e.user(t), e.user(t)

	end := day(2024, time.June, 10)
	asg, err := e.lockers.Assign(e.ctx, AssignmentInput{UserID: a.ID, LockerID: l.ID, StartDate: day(2024, time.June, 3), EndDate: &end})
	require.NoError(t, err)
	assert.True(t, asg.CoversDate(day(2024, time.June, 10)))
	assert.False(t, asg.CoversDate(day(2024, time.June, 11)))

	n, err := e.lockers.ExpireDue(e.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// two weeks later the assignment has lapsed and the locker is reusable
	later := newEnvOn(e, time.Date(2024, time.June, 17, 9, 0, 0, 0, time.UTC))
	_, err = later.Assign(e.ctx, AssignmentInput{UserID: b.ID, LockerID: l.ID, StartDate: day(2024, time.June, 17)})
	require.NoError(t, err)

	old, err := later.GetAssignment(e.ctx, asg.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentExpired, old.Status)
}

// newEnvOn returns a locker service over e's stores with a different clock.
func newEnvOn(e *env, now time.Time) *LockerService {
	s := *e.lockers
	s.clock = FixedClock{T: now}
	return &s
}
