package service

import (
	"context"
	"time"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/queue"
)

// Transactor runs fn inside one store transaction.  Stores called with the
// ctx handed to fn take part in it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher delivers booking events.  Failures are logged by callers
// and never undo a committed change.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

type HolidayStore interface {
	ListAll(ctx context.Context) ([]model.CompanyHoliday, error)
	ListActiveInRange(ctx context.Context, start, end model.Date) ([]model.CompanyHoliday, error)
	ListActiveRecurring(ctx context.Context) ([]model.CompanyHoliday, error)
	GetByID(ctx context.Context, id uint64) (*model.CompanyHoliday, error)
	FindActiveByDate(ctx context.Context, date model.Date) (*model.CompanyHoliday, error)
	Create(ctx context.Context, h *model.CompanyHoliday) error
	Update(ctx context.Context, h *model.CompanyHoliday) error
}

type BookingStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	FindActiveByDeskAndDate(ctx context.Context, deskID uint64, date model.Date) (*model.Booking, error)
	FindActiveByUserAndDate(ctx context.Context, userID uint64, date model.Date) (*model.Booking, error)
	ListAll(ctx context.Context) ([]model.Booking, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	ListUpcomingByUser(ctx context.Context, userID uint64, from model.Date) ([]model.Booking, error)
	ListActiveForDate(ctx context.Context, date model.Date) ([]model.Booking, error)
	ListActiveForDateAndFloor(ctx context.Context, date model.Date, floorID uint64) ([]model.Booking, error)
	ListActiveForDateOnFloor(ctx context.Context, date model.Date, floorID *uint64) ([]model.Booking, error)
	Create(ctx context.Context, b *model.Booking) error
	Update(ctx context.Context, b *model.Booking) error
	OccupiedDesksByDay(ctx context.Context, start, end model.Date) (map[string]int, error)
	BookingsByFloorAndDay(ctx context.Context, start, end model.Date) (map[uint64]map[string]int, error)
}

type DeskStore interface {
	List(ctx context.Context) ([]model.Desk, error)
	ListActive(ctx context.Context) ([]model.Desk, error)
	ListByFloor(ctx context.Context, floorID uint64) ([]model.Desk, error)
	ListByDepartment(ctx context.Context, departmentID uint64) ([]model.Desk, error)
	ListAvailableForDate(ctx context.Context, date model.Date, floorID, departmentID *uint64) ([]model.Desk, error)
	GetByID(ctx context.Context, id uint64) (*model.Desk, error)
	GetByNumber(ctx context.Context, floorID uint64, number string) (*model.Desk, error)
	Create(ctx context.Context, d *model.Desk) error
	Update(ctx context.Context, d *model.Desk) error
	CountActive(ctx context.Context) (int, error)
	CountActiveByFloor(ctx context.Context) (map[uint64]int, error)
}

type FloorStore interface {
	List(ctx context.Context) ([]model.Floor, error)
	ListActive(ctx context.Context) ([]model.Floor, error)
	GetByID(ctx context.Context, id uint64) (*model.Floor, error)
	GetByNumber(ctx context.Context, number int) (*model.Floor, error)
	Create(ctx context.Context, f *model.Floor) error
	Update(ctx context.Context, f *model.Floor) error
	RecountDesks(ctx context.Context, floorID uint64) (int, error)
	RecountLockers(ctx context.Context, floorID uint64) (int, error)
}

type DepartmentStore interface {
	List(ctx context.Context) ([]model.Department, error)
	GetByID(ctx context.Context, id uint64) (*model.Department, error)
	GetByCode(ctx context.Context, code string) (*model.Department, error)
	Create(ctx context.Context, d *model.Department) error
	Update(ctx context.Context, d *model.Department) error
	RecountDesks(ctx context.Context, departmentID uint64) error
}

type LockerStore interface {
	List(ctx context.Context) ([]model.Locker, error)
	ListByFloor(ctx context.Context, floorID uint64) ([]model.Locker, error)
	ListFree(ctx context.Context, typ *model.LockerType) ([]model.Locker, error)
	GetByID(ctx context.Context, id uint64) (*model.Locker, error)
	Create(ctx context.Context, l *model.Locker) error
	Update(ctx context.Context, l *model.Locker) error
	SetStatus(ctx context.Context, id uint64, status model.LockerStatus) error
	CountByFloor(ctx context.Context, floorID uint64) (map[model.LockerStatus]int, error)
}

type AssignmentStore interface {
	GetByID(ctx context.Context, id uint64) (*model.LockerAssignment, error)
	FindActiveByLocker(ctx context.Context, lockerID uint64) (*model.LockerAssignment, error)
	FindActiveByUser(ctx context.Context, userID uint64) (*model.LockerAssignment, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.LockerAssignment, error)
	ListByLocker(ctx context.Context, lockerID uint64) ([]model.LockerAssignment, error)
	ListDue(ctx context.Context, date model.Date) ([]model.LockerAssignment, error)
	Create(ctx context.Context, a *model.LockerAssignment) error
	Update(ctx context.Context, a *model.LockerAssignment) error
}

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	TouchLastLogin(ctx context.Context, id uint64, at time.Time) error
	Delete(ctx context.Context, id uint64) error
}
