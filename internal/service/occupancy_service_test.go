package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/desk-booking/internal/model"
)

func TestOccupancy_SingleDay(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	desks := e.deskRow(t, f.ID, 10)
	date := day(2024, time.June, 3)
	for i := 0; i < 4; i++ {
		e.booking(t, e.user(t).ID, desks[i].ID, date, model.BookingActive)
	}

	r, err := e.occupancy.Compute(e.ctx, date, date)
	require.NoError(t, err)
	assert.Equal(t, 1, r.TotalWorkingDays)
	assert.Equal(t, 10, r.TotalDesks)
	require.Len(t, r.DailyOccupancy, 1)

	d := r.DailyOccupancy[0]
	assert.Equal(t, "Monday", d.DayOfWeek)
	assert.Equal(t, 4, d.OccupiedDesks)
	assert.Equal(t, 6, d.FreeDesks)
	assert.Equal(t, "40.00", d.OccupancyRate.String())
	assert.False(t, d.NonWorking)

	assert.Equal(t, "40.00", r.AverageOccupancyRate.String())
	assert.Equal(t, 4, r.AverageOccupiedDesks)
	assert.Equal(t, 6, r.AverageFreeDesks)
	require.NotNil(t, r.MostOccupiedDay)
	require.NotNil(t, r.LeastOccupiedDay)
	assert.Equal(t, "2024-06-03", r.MostOccupiedDay.Date.String())
	assert.Equal(t, "2024-06-03", r.LeastOccupiedDay.Date.String())
}

func TestOccupancy_WeekendOnly(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	desks := e.deskRow(t, f.ID, 4)
	saturday := day(2024, time.June, 8)
	e.booking(t, e.user(t).ID, desks[0].ID, saturday, model.BookingActive)

	r, err := e.occupancy.Compute(e.ctx, saturday, saturday)
	require.NoError(t, err)
	assert.Equal(t, 0, r.TotalWorkingDays)
	assert.Equal(t, "0.00", r.AverageOccupancyRate.String())
	assert.Equal(t, 0, r.AverageOccupiedDesks)
	assert.Equal(t, 4, r.AverageFreeDesks)
	assert.Nil(t, r.MostOccupiedDay)
	assert.Nil(t, r.LeastOccupiedDay)
	require.Len(t, r.DailyOccupancy, 1)
	assert.True(t, r.DailyOccupancy[0].NonWorking)
	assert.Equal(t, 1, r.DailyOccupancy[0].OccupiedDesks)

	require.Len(t, r.FloorStatistics, 1)
	assert.Equal(t, 0, r.FloorStatistics[0].TotalBookings)
	assert.Equal(t, "0.00", r.FloorStatistics[0].AverageOccupancyRate.String())
}

func TestOccupancy_WeekWithHoliday(t *testing.T) {
	e := newEnv(t, monday)
	f1, f2 := e.floor(t, 1), e.floor(t, 2)
	desks := append(e.deskRow(t, f1.ID, 6), e.deskRow(t, f2.ID, 4)...)
	users := make([]*model.User, len(desks))
	for i := range users {
		users[i] = e.user(t)
	}
	e.holiday(t, day(2024, time.June, 5), "Founders day", false)

	book := func(d model.Date, n int) {
		for i := 0; i < n; i++ {
			e.booking(t, users[i].ID, desks[i].ID, d, model.BookingActive)
		}
	}
	book(day(2024, time.June, 3), 4)
	book(day(2024, time.June, 4), 2)
	book(day(2024, time.June, 5), 5) // holiday
	book(day(2024, time.June, 6), 2)
	book(day(2024, time.June, 7), 3)
	book(day(2024, time.June, 8), 3) // saturday
	// released bookings never count
	e.booking(t, users[9].ID, desks[9].ID, day(2024, time.June, 4), model.BookingCancelled)
	e.booking(t, users[8].ID, desks[8].ID, day(2024, time.June, 4), model.BookingNoShow)

	r, err := e.occupancy.Compute(e.ctx, day(2024, time.June, 3), day(2024, time.June, 9))
	require.NoError(t, err)

	assert.Equal(t, 4, r.TotalWorkingDays)
	require.Len(t, r.DailyOccupancy, 7)
	wed := r.DailyOccupancy[2]
	assert.True(t, wed.NonWorking)
	require.NotNil(t, wed.HolidayName)
	assert.Equal(t, "Founders day", *wed.HolidayName)
	assert.True(t, r.DailyOccupancy[5].NonWorking)
	assert.True(t, r.DailyOccupancy[6].NonWorking)
	assert.Equal(t, 2, r.DailyOccupancy[1].OccupiedDesks)

	// (40 + 20 + 20 + 30) / 4
	assert.Equal(t, "27.50", r.AverageOccupancyRate.String())
	assert.Equal(t, 2, r.AverageOccupiedDesks)
	assert.Equal(t, 8, r.AverageFreeDesks)
	assert.Equal(t, "2024-06-03", r.MostOccupiedDay.Date.String())
	// Tuesday and Thursday tie, the first wins
	assert.Equal(t, "2024-06-04", r.LeastOccupiedDay.Date.String())

	require.Len(t, r.FloorStatistics, 2)
	first, second := r.FloorStatistics[0], r.FloorStatistics[1]
	assert.Equal(t, f1.ID, first.FloorID)
	assert.Equal(t, 6, first.TotalDesks)
	assert.Equal(t, 11, first.TotalBookings)
	// 11 / (6 * 4)
	assert.Equal(t, "45.83", first.AverageOccupancyRate.String())
	assert.Equal(t, f2.ID, second.FloorID)
	assert.Equal(t, 4, second.TotalDesks)
	assert.Equal(t, 0, second.TotalBookings)
}

func TestOccupancy_InactiveDesksAreNotCounted(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 1)
	desks := e.deskRow(t, f.ID, 4)
	date := day(2024, time.June, 3)
	e.booking(t, e.user(t).ID, desks[0].ID, date, model.BookingActive)
	e.booking(t, e.user(t).ID, desks[3].ID, date, model.BookingActive)
	require.NoError(t, e.desks.Delete(e.ctx, desks[3].ID))

	r, err := e.occupancy.Compute(e.ctx, date, date)
	require.NoError(t, err)
	assert.Equal(t, 3, r.TotalDesks)
	assert.Equal(t, 1, r.DailyOccupancy[0].OccupiedDesks)
	assert.Equal(t, "33.33", r.DailyOccupancy[0].OccupancyRate.String())
}

func TestOccupancy_InvalidRange(t *testing.T) {
	e := newEnv(t, monday)
	_, err := e.occupancy.Compute(e.ctx, day(2024, time.June, 4), day(2024, time.June, 3))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestOccupancy_NoDesks(t *testing.T) {
	e := newEnv(t, monday)
	r, err := e.occupancy.Compute(e.ctx, day(2024, time.June, 3), day(2024, time.June, 4))
	require.NoError(t, err)
	assert.Equal(t, 2, r.TotalWorkingDays)
	assert.Equal(t, "0.00", r.AverageOccupancyRate.String())
	assert.Empty(t, r.FloorStatistics)
}

func TestOccupancy_Periods(t *testing.T) {
	wednesday := time.Date(2024, time.June, 5, 15, 0, 0, 0, time.UTC)
	e := newEnv(t, wednesday)

	r, err := e.occupancy.Today(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-05", r.StartDate.String())
	assert.Equal(t, "2024-06-05", r.EndDate.String())

	r, err = e.occupancy.CurrentWeek(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", r.StartDate.String())
	assert.Len(t, r.DailyOccupancy, 3)

	r, err = e.occupancy.CurrentMonth(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", r.StartDate.String())
	assert.Equal(t, "2024-06-05", r.EndDate.String())

	sunday := newEnv(t, time.Date(2024, time.June, 9, 10, 0, 0, 0, time.UTC))
	r, err = sunday.occupancy.CurrentWeek(sunday.ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", r.StartDate.String())
	assert.Len(t, r.DailyOccupancy, 7)
}

func TestOccupancy_FloorStatistics(t *testing.T) {
	e := newEnv(t, monday)
	f := e.floor(t, 3)
	desks := e.deskRow(t, f.ID, 4)
	date := day(2024, time.June, 3)
	e.booking(t, e.user(t).ID, desks[0].ID, date, model.BookingCheckedIn)
	e.booking(t, e.user(t).ID, desks[1].ID, date, model.BookingCancelled)

	var lockers []*model.Locker
	for _, n := range []string{"L1", "L2", "L3"} {
		l, err := e.lockers.Create(e.ctx, LockerInput{LockerNumber: n, FloorID: f.ID})
		require.NoError(t, err)
		lockers = append(lockers, l)
	}
	_, err := e.lockers.Assign(e.ctx, AssignmentInput{UserID: e.user(t).ID, LockerID: lockers[0].ID, StartDate: date})
	require.NoError(t, err)

	st, err := e.occupancy.FloorStatistics(e.ctx, f.ID, date)
	require.NoError(t, err)
	assert.Equal(t, 4, st.TotalDesks)
	assert.Equal(t, 1, st.OccupiedDesks)
	assert.Equal(t, 3, st.AvailableDesks)
	assert.Equal(t, "25.00", st.OccupancyRate.String())
	assert.Equal(t, 3, st.TotalLockers)
	assert.Equal(t, 1, st.AssignedLockers)
	assert.Equal(t, 2, st.FreeLockers)

	_, err = e.occupancy.FloorStatistics(e.ctx, 999, date)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRateHundredths(t *testing.T) {
	cases := []struct {
		part, whole, want int64
	}{
		{4, 10, 4000},
		{1, 3, 3333},
		{2, 3, 6667},
		{1, 8, 1250},
		{5, 0, 0},
		{0, 7, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, rateHundredths(c.part, c.whole), "%d/%d", c.part, c.whole)
	}
	assert.Equal(t, int64(2250), roundDiv(9000, 4))
}
