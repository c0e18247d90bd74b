package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/desk-booking/internal/middleware"
	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/service"
)

// requestTimeout bounds the store work of one request.
const requestTimeout = 5 * time.Second

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// statusOf maps a service error kind to its HTTP status.
func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindInvalidState, service.KindInvalidDate, service.KindInvalidTimeRange,
		service.KindInvalidRange, service.KindValidation:
		return http.StatusBadRequest
	case service.KindDeskConflict, service.KindUserConflict, service.KindDuplicateDate,
		service.KindDuplicate, service.KindConflict:
		return http.StatusConflict
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// fail writes err as {"error": ...}.  Unclassified errors are logged and
// answered with a generic message.
func fail(c echo.Context, logger zerolog.Logger, err error) error {
	kind := service.KindOf(err)
	status := statusOf(kind)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
}

// paramID parses a positive numeric path parameter.
func paramID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// paramDate parses a YYYY-MM-DD path parameter.
func paramDate(c echo.Context, name string) (model.Date, bool) {
	d, err := model.ParseDate(c.Param(name))
	return d, err == nil
}

// queryDate parses an optional YYYY-MM-DD query parameter; def is used
// when it is absent.
func queryDate(c echo.Context, name string, def model.Date) (model.Date, bool) {
	s := strings.TrimSpace(c.QueryParam(name))
	if s == "" {
		return def, true
	}
	d, err := model.ParseDate(s)
	return d, err == nil
}

// queryID parses an optional numeric query parameter.
func queryID(c echo.Context, name string) (*uint64, bool) {
	s := strings.TrimSpace(c.QueryParam(name))
	if s == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return nil, false
	}
	return &id, true
}

// actor returns the authenticated caller.
func actor(c echo.Context) service.Actor {
	id, _ := middleware.UserID(c)
	return service.Actor{ID: id, Role: middleware.Role(c)}
}

// isStaff reports whether the caller is an ADMIN or a MANAGER.
func isStaff(c echo.Context) bool { return middleware.Role(c).IsStaff() }

// selfOrStaff reports whether the caller is userID or staff.
func selfOrStaff(c echo.Context, userID uint64) bool {
	a := actor(c)
	return a.ID == userID || a.Role.IsStaff()
}

// selfOrAdmin reports whether the caller is userID or an ADMIN.
func selfOrAdmin(c echo.Context, userID uint64) bool {
	a := actor(c)
	return a.ID == userID || a.Role == model.RoleAdmin
}
