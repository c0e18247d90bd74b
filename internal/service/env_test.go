package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/desk-booking/internal/database/dbtest"
	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/queue"
	"github.com/iliyamo/desk-booking/internal/repository"
)

// monday is 2024-06-03 09:00 UTC.
var monday = time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) model.Date { return model.NewDate(y, m, d) }

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type env struct {
	ctx         context.Context
	floorRepo   *repository.FloorRepo
	deskRepo    *repository.DeskRepo
	userRepo    *repository.UserRepo
	bookingRepo *repository.BookingRepo
	holidayRepo *repository.HolidayRepo
	lockerRepo  *repository.LockerRepo
	pub         *recordingPublisher

	holidays    *HolidayCalendar
	bookings    *BookingService
	occupancy   *OccupancyService
	desks       *DeskService
	floors      *FloorService
	departments *DepartmentService
	lockers     *LockerService
	users       *UserService

	seq int
}

func newEnv(t *testing.T, now time.Time) *env {
	t.Helper()
	db := dbtest.New(t)
	logger := zerolog.Nop()
	clock := FixedClock{T: now}
	tx := repository.NewTxManager(db)

	e := &env{
		ctx:         context.Background(),
		floorRepo:   repository.NewFloorRepo(db),
		deskRepo:    repository.NewDeskRepo(db),
		userRepo:    repository.NewUserRepo(db),
		bookingRepo: repository.NewBookingRepo(db),
		holidayRepo: repository.NewHolidayRepo(db),
		lockerRepo:  repository.NewLockerRepo(db),
		pub:         &recordingPublisher{},
	}
	departmentRepo := repository.NewDepartmentRepo(db)
	assignmentRepo := repository.NewLockerAssignmentRepo(db)

	e.holidays = NewHolidayCalendar(tx, e.holidayRepo, logger)
	e.bookings = NewBookingService(tx, e.bookingRepo, e.deskRepo, e.userRepo, e.pub, clock, logger)
	e.occupancy = NewOccupancyService(e.holidayRepo, e.bookingRepo, e.deskRepo, e.floorRepo, e.lockerRepo, clock, logger)
	e.desks = NewDeskService(tx, e.deskRepo, e.floorRepo, departmentRepo, e.bookingRepo, logger)
	e.floors = NewFloorService(e.floorRepo, logger)
	e.departments = NewDepartmentService(departmentRepo, e.floorRepo, logger)
	e.lockers = NewLockerService(tx, e.lockerRepo, assignmentRepo, e.floorRepo, e.userRepo, clock, logger)
	e.users = NewUserService(e.userRepo, departmentRepo, 4, clock, logger)
	return e
}

func (e *env) floor(t *testing.T, number int) *model.Floor {
	t.Helper()
	f, err := e.floors.Create(e.ctx, FloorInput{FloorNumber: number, Name: fmt.Sprintf("Floor %d", number)})
	require.NoError(t, err)
	return f
}

func (e *env) desk(t *testing.T, floorID uint64, number string) *model.Desk {
	t.Helper()
	d, err := e.desks.Create(e.ctx, DeskInput{DeskNumber: number, FloorID: floorID})
	require.NoError(t, err)
	return d
}

// deskRow adds n desks numbered D01.. on floorID.
func (e *env) deskRow(t *testing.T, floorID uint64, n int) []*model.Desk {
	t.Helper()
	out := make([]*model.Desk, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, e.desk(t, floorID, fmt.Sprintf("F%d-D%02d", floorID, i)))
	}
	return out
}

func (e *env) user(t *testing.T) *model.User {
	t.Helper()
	e.seq++
	u := &model.User{
		Email:        fmt.Sprintf("user%d@example.com", e.seq),
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     fmt.Sprintf("User%d", e.seq),
		Role:         model.RoleUser,
		WorkType:     model.WorkStandard,
		Active:       true,
	}
	require.NoError(t, e.userRepo.Create(e.ctx, u))
	return u
}

// booking stores a booking directly, bypassing date checks.
func (e *env) booking(t *testing.T, userID, deskID uint64, date model.Date, status model.BookingStatus) *model.Booking {
	t.Helper()
	b := &model.Booking{
		UserID:      userID,
		DeskID:      deskID,
		BookingDate: date,
		Status:      status,
		Type:        model.BookingFullDay,
	}
	require.NoError(t, e.bookingRepo.Create(e.ctx, b))
	return b
}

func (e *env) holiday(t *testing.T, date model.Date, name string, recurring bool) *model.CompanyHoliday {
	t.Helper()
	h, err := e.holidays.Create(e.ctx, HolidayInput{Date: date, Name: name, Recurring: recurring})
	require.NoError(t, err)
	return h
}
