package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/desk-booking/internal/middleware"
	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/service"
)

func newCtx(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec), rec
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrInvalidState, http.StatusBadRequest},
		{service.ErrInvalidDate, http.StatusBadRequest},
		{service.ErrInvalidTimeRange, http.StatusBadRequest},
		{service.ErrInvalidRange, http.StatusBadRequest},
		{service.ErrValidation, http.StatusBadRequest},
		{service.ErrDeskConflict, http.StatusConflict},
		{service.ErrUserConflict, http.StatusConflict},
		{service.ErrDuplicateDate, http.StatusConflict},
		{service.ErrDuplicate, http.StatusConflict},
		{service.ErrConflict, http.StatusConflict},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrUnauthorized, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", service.ErrDeskConflict), http.StatusConflict},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusOf(service.KindOf(tc.err)), "%v", tc.err)
	}
}

func TestFail(t *testing.T) {
	c, rec := newCtx("/x")
	require.NoError(t, fail(c, zerolog.Nop(), &service.Error{Kind: service.KindDeskConflict, Msg: "desk 5 is taken"}))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"desk 5 is taken"}`, rec.Body.String())

	c, rec = newCtx("/x")
	require.NoError(t, fail(c, zerolog.Nop(), errors.New("dial tcp: connection refused")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestParams(t *testing.T) {
	c, _ := newCtx("/x?date=2024-06-03&floor_id=7&bad_id=x&zero=0")
	c.SetParamNames("id", "date")
	c.SetParamValues("12", "2024-02-30")

	id, ok := paramID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, uint64(12), id)

	_, ok = paramDate(c, "date")
	assert.False(t, ok)

	def := model.NewDate(2000, 1, 1)
	d, ok := queryDate(c, "date", def)
	assert.True(t, ok)
	assert.Equal(t, "2024-06-03", d.String())
	d, ok = queryDate(c, "missing", def)
	assert.True(t, ok)
	assert.Equal(t, def, d)

	fid, ok := queryID(c, "floor_id")
	require.True(t, ok)
	assert.Equal(t, uint64(7), *fid)
	fid, ok = queryID(c, "missing")
	assert.True(t, ok)
	assert.Nil(t, fid)
	_, ok = queryID(c, "bad_id")
	assert.False(t, ok)
	_, ok = queryID(c, "zero")
	assert.False(t, ok)
}

func TestOwnership(t *testing.T) {
	cases := []struct {
		role       model.Role
		id         uint64
		staff      bool
		adminOrOwn bool
	}{
		{model.RoleUser, 1, true, true},
		{model.RoleUser, 2, false, false},
		{model.RoleManager, 2, true, false},
		{model.RoleAdmin, 2, true, true},
	}
	for _, tc := range cases {
		c, _ := newCtx("/x")
		c.Set(middleware.ContextUserID, uint64(1))
		c.Set(middleware.ContextRole, tc.role)
		assert.Equal(t, tc.staff, selfOrStaff(c, tc.id), "%s on %d", tc.role, tc.id)
		assert.Equal(t, tc.adminOrOwn, selfOrAdmin(c, tc.id), "%s on %d", tc.role, tc.id)
	}
}
