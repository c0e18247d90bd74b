package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/repository"
)

type mockHolidayStore struct {
	mock.Mock
}

func (m *mockHolidayStore) ListAll(ctx context.Context) ([]model.CompanyHoliday, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.CompanyHoliday), args.Error(1)
}

func (m *mockHolidayStore) ListActiveInRange(ctx context.Context, start, end model.Date) ([]model.CompanyHoliday, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).([]model.CompanyHoliday), args.Error(1)
}

func (m *mockHolidayStore) ListActiveRecurring(ctx context.Context) ([]model.CompanyHoliday, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.CompanyHoliday), args.Error(1)
}

func (m *mockHolidayStore) GetByID(ctx context.Context, id uint64) (*model.CompanyHoliday, error) {
	args := m.Called(ctx, id)
	h, _ := args.Get(0).(*model.CompanyHoliday)
	return h, args.Error(1)
}

func (m *mockHolidayStore) FindActiveByDate(ctx context.Context, date model.Date) (*model.CompanyHoliday, error) {
	args := m.Called(ctx, date)
	h, _ := args.Get(0).(*model.CompanyHoliday)
	return h, args.Error(1)
}

func (m *mockHolidayStore) Create(ctx context.Context, h *model.CompanyHoliday) error {
	return m.Called(ctx, h).Error(0)
}

func (m *mockHolidayStore) Update(ctx context.Context, h *model.CompanyHoliday) error {
	return m.Called(ctx, h).Error(0)
}

func TestHolidayCalendar_IsHolidayStoreErrors(t *testing.T) {
	ctx := context.Background()
	xmas := day(2024, 12, 25)
	boxing := day(2024, 12, 26)
	broken := day(2024, 12, 27)

	store := new(mockHolidayStore)
	store.On("FindActiveByDate", ctx, xmas).Return(&model.CompanyHoliday{ID: 1, Date: xmas, Active: true}, nil).Once()
	store.On("FindActiveByDate", ctx, boxing).Return(nil, repository.ErrNotFound).Once()
	store.On("FindActiveByDate", ctx, broken).Return(nil, errors.New("connection reset")).Once()

	cal := NewHolidayCalendar(nil, store, zerolog.Nop())

	ok, err := cal.IsHoliday(ctx, xmas)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cal.IsHoliday(ctx, boxing)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = cal.IsHoliday(ctx, broken)
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))

	store.AssertExpectations(t)
}

func TestHolidayCalendar_ListFiltersInactive(t *testing.T) {
	ctx := context.Background()
	store := new(mockHolidayStore)
	store.On("ListAll", ctx).Return([]model.CompanyHoliday{
		{ID: 1, Name: "New Year", Active: true},
		{ID: 2, Name: "Old closure", Active: false},
		{ID: 3, Name: "Liberation Day", Active: true},
	}, nil)

	list, err := NewHolidayCalendar(nil, store, zerolog.Nop()).List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, uint64(1), list[0].ID)
	assert.Equal(t, uint64(3), list[1].ID)
}

func TestHolidayCalendar_InRangeSkipsStoreOnBadRange(t *testing.T) {
	store := new(mockHolidayStore)
	_, err := NewHolidayCalendar(nil, store, zerolog.Nop()).InRange(context.Background(), day(2024, 6, 10), day(2024, 6, 1))
	assert.Equal(t, KindInvalidRange, KindOf(err))
	store.AssertNotCalled(t, "ListActiveInRange", mock.Anything, mock.Anything, mock.Anything)
}
