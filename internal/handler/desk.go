package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/report"
	"github.com/iliyamo/desk-booking/internal/service"
)

// maxImportBytes caps the size of an uploaded desk sheet.
const maxImportBytes = 10 << 20

type DeskHandler struct {
	Desks  *service.DeskService
	Clock  service.Clock
	Logger zerolog.Logger
}

func NewDeskHandler(desks *service.DeskService, clock service.Clock, logger zerolog.Logger) *DeskHandler {
	return &DeskHandler{Desks: desks, Clock: clock, Logger: logger}
}

type deskReq struct {
	DeskNumber    string   `json:"desk_number"`
	FloorID       uint64   `json:"floor_id"`
	DepartmentID  *uint64  `json:"department_id"`
	Type          string   `json:"type"`
	PositionX     *float64 `json:"position_x"`
	PositionY     *float64 `json:"position_y"`
	Equipment     *string  `json:"equipment"`
	Notes         *string  `json:"notes"`
	NearWindow    bool     `json:"near_window"`
	NearElevator  bool     `json:"near_elevator"`
	NearBreakArea bool     `json:"near_break_area"`
}

type deskPatchReq struct {
	DepartmentID  *uint64           `json:"department_id"`
	Type          *model.DeskType   `json:"type"`
	Status        *model.DeskStatus `json:"status"`
	PositionX     *float64          `json:"position_x"`
	PositionY     *float64          `json:"position_y"`
	Equipment     *string           `json:"equipment"`
	Notes         *string           `json:"notes"`
	NearWindow    *bool             `json:"near_window"`
	NearElevator  *bool             `json:"near_elevator"`
	NearBreakArea *bool             `json:"near_break_area"`
	Active        *bool             `json:"active"`
}

// List returns desks, narrowed by ?floor_id=, ?department_id= or
// ?active=true.
func (h *DeskHandler) List(c echo.Context) error {
	floorID, ok := queryID(c, "floor_id")
	if !ok {
		return badRequest(c, "invalid floor_id")
	}
	departmentID, ok := queryID(c, "department_id")
	if !ok {
		return badRequest(c, "invalid department_id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	var (
		out []model.Desk
		err error
	)
	switch {
	case floorID != nil:
		out, err = h.Desks.ListByFloor(ctx, *floorID)
	case departmentID != nil:
		out, err = h.Desks.ListByDepartment(ctx, *departmentID)
	case c.QueryParam("active") == "true":
		out, err = h.Desks.ListActive(ctx)
	default:
		out, err = h.Desks.List(ctx)
	}
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DeskHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid desk id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	d, err := h.Desks.Get(ctx, id)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Available lists the desks bookable on ?date= (default today).
func (h *DeskHandler) Available(c echo.Context) error {
	date, floorID, ok := h.dateAndFloor(c)
	if !ok {
		return badRequest(c, "invalid date or floor_id")
	}
	departmentID, ok := queryID(c, "department_id")
	if !ok {
		return badRequest(c, "invalid department_id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Desks.AvailableForDate(ctx, date, floorID, departmentID)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Availability answers per desk whether it is free on ?date=.
func (h *DeskHandler) Availability(c echo.Context) error {
	date, floorID, ok := h.dateAndFloor(c)
	if !ok {
		return badRequest(c, "invalid date or floor_id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Desks.Availability(ctx, date, floorID)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DeskHandler) dateAndFloor(c echo.Context) (model.Date, *uint64, bool) {
	date, ok := queryDate(c, "date", model.DateOf(h.Clock.Now()))
	if !ok {
		return model.Date{}, nil, false
	}
	floorID, ok := queryID(c, "floor_id")
	return date, floorID, ok
}

func (h *DeskHandler) Create(c echo.Context) error {
	var req deskReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	d, err := h.Desks.Create(ctx, service.DeskInput{
		DeskNumber:    req.DeskNumber,
		FloorID:       req.FloorID,
		DepartmentID:  req.DepartmentID,
		Type:          model.DeskType(strings.ToUpper(strings.TrimSpace(req.Type))),
		PositionX:     req.PositionX,
		PositionY:     req.PositionY,
		Equipment:     req.Equipment,
		Notes:         req.Notes,
		NearWindow:    req.NearWindow,
		NearElevator:  req.NearElevator,
		NearBreakArea: req.NearBreakArea,
	})
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *DeskHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid desk id")
	}
	var req deskPatchReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	d, err := h.Desks.Update(ctx, id, service.DeskPatch(req))
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DeskHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid desk id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Desks.Delete(ctx, id); err != nil {
		return fail(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Import reads the .xlsx upload in form field "file" and creates the
// desks it lists.
func (h *DeskHandler) Import(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	if fh.Size > maxImportBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "file exceeds " + strconv.Itoa(maxImportBytes) + " bytes"})
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, h.Logger, err)
	}
	defer f.Close()

	rows, err := report.ParseDeskSheet(f)
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	return c.JSON(http.StatusOK, h.Desks.Import(ctx, rows))
}
