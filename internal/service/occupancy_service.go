package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iliyamo/desk-booking/internal/metrics"
	"github.com/iliyamo/desk-booking/internal/model"
)

// OccupancyService is the occupancy statistics engine.  Reports are read
// only point-in-time snapshots: each store query is consistent on its own
// and the whole range is not read under one transaction.
type OccupancyService struct {
	holidays HolidayStore
	bookings BookingStore
	desks    DeskStore
	floors   FloorStore
	lockers  LockerStore
	clock    Clock
	logger   zerolog.Logger
}

func NewOccupancyService(holidays HolidayStore, bookings BookingStore, desks DeskStore, floors FloorStore,
	lockers LockerStore, clock Clock, logger zerolog.Logger) *OccupancyService {
	return &OccupancyService{
		holidays: holidays,
		bookings: bookings,
		desks:    desks,
		floors:   floors,
		lockers:  lockers,
		clock:    clock,
		logger:   logger.With().Str("service", "occupancy").Logger(),
	}
}

// Compute builds the occupancy report of [start, end].  Weekends and
// active holidays appear in the daily series flagged NonWorking and are
// left out of every average, extreme and floor total.
func (s *OccupancyService) Compute(ctx context.Context, start, end model.Date) (*model.OccupancyReport, error) {
	if start.After(end) {
		return nil, newError(KindInvalidRange, "start date %s is after end date %s", start, end)
	}

	holidays, err := s.holidays.ListActiveInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	holidayNames := make(map[string]string, len(holidays))
	for _, h := range holidays {
		if _, ok := holidayNames[h.Date.String()]; !ok {
			holidayNames[h.Date.String()] = h.Name
		}
	}
	total, err := s.desks.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	occupied, err := s.bookings.OccupiedDesksByDay(ctx, start, end)
	if err != nil {
		return nil, err
	}

	report := &model.OccupancyReport{
		StartDate:   start,
		EndDate:     end,
		TotalDesks:  total,
		GeneratedAt: s.clock.Now().UTC(),
	}
	var (
		working     []int
		sumOccupied int64
		sumRate     int64
		workingDays = make(map[string]bool)
	)
	for d := start; !d.After(end); d = d.AddDays(1) {
		key := d.String()
		occ := occupied[key]
		rate := rateHundredths(int64(occ), int64(total))
		day := model.DayOccupancy{
			Date:          d,
			DayOfWeek:     d.Weekday().String(),
			OccupiedDesks: occ,
			FreeDesks:     total - occ,
			TotalDesks:    total,
			OccupancyRate: model.RateFromHundredths(rate),
		}
		if name, ok := holidayNames[key]; ok {
			day.NonWorking = true
			day.HolidayName = &name
		}
		if d.IsWeekend() {
			day.NonWorking = true
		}
		report.DailyOccupancy = append(report.DailyOccupancy, day)
		if day.NonWorking {
			continue
		}
		working = append(working, len(report.DailyOccupancy)-1)
		workingDays[key] = true
		sumOccupied += int64(occ)
		sumRate += rate
	}

	report.TotalWorkingDays = len(working)
	if n := int64(len(working)); n > 0 {
		report.AverageOccupancyRate = model.RateFromHundredths(roundDiv(sumRate, n))
		report.AverageOccupiedDesks = int(sumOccupied / n)

		most, least := working[0], working[0]
		for _, i := range working[1:] {
			if report.DailyOccupancy[i].OccupiedDesks > report.DailyOccupancy[most].OccupiedDesks {
				most = i
			}
			if report.DailyOccupancy[i].OccupiedDesks < report.DailyOccupancy[least].OccupiedDesks {
				least = i
			}
		}
		mostDay, leastDay := report.DailyOccupancy[most], report.DailyOccupancy[least]
		report.MostOccupiedDay = &mostDay
		report.LeastOccupiedDay = &leastDay
	}
	report.AverageFreeDesks = total - report.AverageOccupiedDesks

	report.FloorStatistics, err = s.floorStatistics(ctx, start, end, workingDays)
	if err != nil {
		return nil, err
	}

	metrics.IncOccupancyReport()
	s.logger.Debug().Str("start", start.String()).Str("end", end.String()).
		Int("working_days", report.TotalWorkingDays).Int("total_desks", total).Msg("occupancy computed")
	return report, nil
}

func (s *OccupancyService) floorStatistics(ctx context.Context, start, end model.Date, workingDays map[string]bool) ([]model.FloorOccupancy, error) {
	floors, err := s.floors.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	desksByFloor, err := s.desks.CountActiveByFloor(ctx)
	if err != nil {
		return nil, err
	}
	bookingsByFloor, err := s.bookings.BookingsByFloorAndDay(ctx, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]model.FloorOccupancy, 0, len(floors))
	for _, f := range floors {
		desks := desksByFloor[f.ID]
		bookings := 0
		for day, n := range bookingsByFloor[f.ID] {
			if workingDays[day] {
				bookings += n
			}
		}
		var rate int64
		if denom := int64(desks) * int64(len(workingDays)); denom > 0 {
			rate = roundDiv(int64(bookings)*10000, denom)
		}
		out = append(out, model.FloorOccupancy{
			FloorID:              f.ID,
			FloorName:            f.Name,
			FloorNumber:          f.FloorNumber,
			TotalDesks:           desks,
			TotalBookings:        bookings,
			AverageOccupancyRate: model.RateFromHundredths(rate),
		})
	}
	return out, nil
}

// Today reports on the current day.
func (s *OccupancyService) Today(ctx context.Context) (*model.OccupancyReport, error) {
	d := today(s.clock)
	return s.Compute(ctx, d, d)
}

// CurrentWeek reports from Monday of this week through today.
func (s *OccupancyService) CurrentWeek(ctx context.Context) (*model.OccupancyReport, error) {
	d := today(s.clock)
	offset := (int(d.Weekday()) + 6) % 7
	return s.Compute(ctx, d.AddDays(-offset), d)
}

// CurrentMonth reports from the first of this month through today.
func (s *OccupancyService) CurrentMonth(ctx context.Context) (*model.OccupancyReport, error) {
	d := today(s.clock)
	return s.Compute(ctx, model.NewDate(d.Year(), d.Month(), 1), d)
}

// FloorStatistics is a snapshot of one floor on date: desks held by an
// ACTIVE or CHECKED_IN booking and lockers by status.
func (s *OccupancyService) FloorStatistics(ctx context.Context, floorID uint64, date model.Date) (*model.FloorStatistics, error) {
	if _, err := s.floors.GetByID(ctx, floorID); err != nil {
		return nil, notFoundAs(err, "floor %d not found", floorID)
	}
	desksByFloor, err := s.desks.CountActiveByFloor(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.BookingsByFloorAndDay(ctx, date, date)
	if err != nil {
		return nil, err
	}
	lockers, err := s.lockers.CountByFloor(ctx, floorID)
	if err != nil {
		return nil, err
	}

	total := desksByFloor[floorID]
	occupied := bookings[floorID][date.String()]
	st := &model.FloorStatistics{
		FloorID:         floorID,
		Date:            date,
		TotalDesks:      total,
		OccupiedDesks:   occupied,
		AvailableDesks:  total - occupied,
		FreeLockers:     lockers[model.LockerStatusFree],
		AssignedLockers: lockers[model.LockerStatusAssigned],
		OccupancyRate:   model.RateFromHundredths(rateHundredths(int64(occupied), int64(total))),
	}
	for _, n := range lockers {
		st.TotalLockers += n
	}
	return st, nil
}

// TodayDate exposes the clock's current day to callers that default a date.
func (s *OccupancyService) TodayDate() model.Date { return today(s.clock) }

// rateHundredths is part/whole as a percentage in hundredths, rounded half
// up.  It is 0 when whole is 0.
func rateHundredths(part, whole int64) int64 {
	if whole <= 0 {
		return 0
	}
	return roundDiv(part*10000, whole)
}

// roundDiv returns x/y rounded half up, for x >= 0 and y > 0.
func roundDiv(x, y int64) int64 {
	return (2*x + y) / (2 * y)
}
