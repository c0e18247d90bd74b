package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/service"
)

type LockerHandler struct {
	Lockers *service.LockerService
	Logger  zerolog.Logger
}

func NewLockerHandler(lockers *service.LockerService, logger zerolog.Logger) *LockerHandler {
	return &LockerHandler{Lockers: lockers, Logger: logger}
}

type lockerReq struct {
	LockerNumber string   `json:"locker_number"`
	FloorID      uint64   `json:"floor_id"`
	Type         string   `json:"type"`
	PositionX    *float64 `json:"position_x"`
	PositionY    *float64 `json:"position_y"`
	Notes        *string  `json:"notes"`
}

type lockerPatchReq struct {
	LockerNumber *string             `json:"locker_number"`
	Type         *model.LockerType   `json:"type"`
	Status       *model.LockerStatus `json:"status"`
	PositionX    *float64            `json:"position_x"`
	PositionY    *float64            `json:"position_y"`
	Notes        *string             `json:"notes"`
	Active       *bool               `json:"active"`
}

type assignReq struct {
	UserID     uint64      `json:"user_id"`
	LockerID   uint64      `json:"locker_id"`
	StartDate  model.Date  `json:"start_date"`
	EndDate    *model.Date `json:"end_date"`
	Notes      *string     `json:"notes"`
	AccessCode *string     `json:"access_code"`
}

// List returns lockers, narrowed by ?floor_id= or to free ones with
// ?free=true (optionally of ?type=).
func (h *LockerHandler) List(c echo.Context) error {
	floorID, ok := queryID(c, "floor_id")
	if !ok {
		return badRequest(c, "invalid floor_id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	var (
		out []model.Locker
		err error
	)
	switch {
	case floorID != nil:
		out, err = h.Lockers.ListByFloor(ctx, *floorID)
	case c.QueryParam("free") == "true":
		var typ *model.LockerType
		if s := strings.TrimSpace(c.QueryParam("type")); s != "" {
			t := model.LockerType(strings.ToUpper(s))
			if !t.Valid() {
				return badRequest(c, "invalid type")
			}
			typ = &t
		}
		out, err = h.Lockers.ListFree(ctx, typ)
	default:
		out, err = h.Lockers.List(ctx)
	}
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LockerHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid locker id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	l, err := h.Lockers.Get(ctx, id)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *LockerHandler) Create(c echo.Context) error {
	var req lockerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	l, err := h.Lockers.Create(ctx, service.LockerInput{
		LockerNumber: req.LockerNumber,
		FloorID:      req.FloorID,
		Type:         model.LockerType(strings.ToUpper(strings.TrimSpace(req.Type))),
		PositionX:    req.PositionX,
		PositionY:    req.PositionY,
		Notes:        req.Notes,
	})
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *LockerHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid locker id")
	}
	var req lockerPatchReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	l, err := h.Lockers.Update(ctx, id, service.LockerPatch(req))
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *LockerHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid locker id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Lockers.Delete(ctx, id); err != nil {
		return fail(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Assignments lists the assignment history of a locker; ?active=true
// returns only the current one.
func (h *LockerHandler) Assignments(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid locker id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if c.QueryParam("active") == "true" {
		a, err := h.Lockers.ActiveForLocker(ctx, id)
		if err != nil {
			return fail(c, h.Logger, err)
		}
		return c.JSON(http.StatusOK, a)
	}
	out, err := h.Lockers.AssignmentsByLocker(ctx, id)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

// UserAssignments is the locker history of :id for the user themself or
// staff; ?active=true returns only the current one.
func (h *LockerHandler) UserAssignments(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	if !selfOrStaff(c, id) {
		return forbidden(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if c.QueryParam("active") == "true" {
		a, err := h.Lockers.ActiveForUser(ctx, id)
		if err != nil {
			return fail(c, h.Logger, err)
		}
		return c.JSON(http.StatusOK, a)
	}
	out, err := h.Lockers.AssignmentsByUser(ctx, id)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LockerHandler) GetAssignment(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid assignment id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	a, err := h.Lockers.GetAssignment(ctx, id)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	if !selfOrStaff(c, a.UserID) {
		return forbidden(c)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *LockerHandler) Assign(c echo.Context) error {
	var req assignReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.UserID == 0 || req.LockerID == 0 || req.StartDate.IsZero() {
		return badRequest(c, "user_id, locker_id and start_date are required")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	a, err := h.Lockers.Assign(ctx, service.AssignmentInput(req))
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *LockerHandler) Revoke(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid assignment id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	a, err := h.Lockers.Revoke(ctx, id)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, a)
}

// Expire closes the assignments that ended before today.
func (h *LockerHandler) Expire(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	n, err := h.Lockers.ExpireDue(ctx)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"expired": n})
}
