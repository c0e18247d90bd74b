package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/service"
)

type FloorHandler struct {
	Floors    *service.FloorService
	Occupancy *service.OccupancyService
	Logger    zerolog.Logger
}

func NewFloorHandler(floors *service.FloorService, occupancy *service.OccupancyService, logger zerolog.Logger) *FloorHandler {
	return &FloorHandler{Floors: floors, Occupancy: occupancy, Logger: logger}
}

type floorReq struct {
	FloorNumber  int     `json:"floor_number"`
	Name         string  `json:"name"`
	Code         string  `json:"code"`
	SquareMeters *int    `json:"square_meters"`
	Description  *string `json:"description"`
	MapImageURL  *string `json:"map_image_url"`
}

type floorPatchReq struct {
	Name         *string `json:"name"`
	Code         *string `json:"code"`
	SquareMeters *int    `json:"square_meters"`
	Description  *string `json:"description"`
	MapImageURL  *string `json:"map_image_url"`
	Active       *bool   `json:"active"`
}

// List returns all floors, or only active ones with ?active=true.
func (h *FloorHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	var (
		out []model.Floor
		err error
	)
	if c.QueryParam("active") == "true" {
		out, err = h.Floors.ListActive(ctx)
	} else {
		out, err = h.Floors.List(ctx)
	}
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *FloorHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid floor id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	f, err := h.Floors.Get(ctx, id)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *FloorHandler) GetByNumber(c echo.Context) error {
	n, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return badRequest(c, "invalid floor number")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	f, err := h.Floors.GetByNumber(ctx, n)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *FloorHandler) Create(c echo.Context) error {
	var req floorReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	f, err := h.Floors.Create(ctx, service.FloorInput(req))
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *FloorHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid floor id")
	}
	var req floorPatchReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	f, err := h.Floors.Update(ctx, id, service.FloorPatch(req))
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *FloorHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid floor id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Floors.Delete(ctx, id); err != nil {
		return fail(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Statistics is the desk and locker snapshot of a floor on ?date=
// (default today).
func (h *FloorHandler) Statistics(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid floor id")
	}
	date, ok := queryDate(c, "date", h.Occupancy.TodayDate())
	if !ok {
		return badRequest(c, "invalid date")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	st, err := h.Occupancy.FloorStatistics(ctx, id, date)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, st)
}

type DepartmentHandler struct {
	Departments *service.DepartmentService
	Logger      zerolog.Logger
}

func NewDepartmentHandler(departments *service.DepartmentService, logger zerolog.Logger) *DepartmentHandler {
	return &DepartmentHandler{Departments: departments, Logger: logger}
}

type departmentReq struct {
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description *string `json:"description"`
	FloorID     *uint64 `json:"floor_id"`
}

type departmentPatchReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	FloorID     *uint64 `json:"floor_id"`
	Active      *bool   `json:"active"`
}

func (h *DepartmentHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Departments.List(ctx)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DepartmentHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid department id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	d, err := h.Departments.Get(ctx, id)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DepartmentHandler) Create(c echo.Context) error {
	var req departmentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	d, err := h.Departments.Create(ctx, service.DepartmentInput(req))
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *DepartmentHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid department id")
	}
	var req departmentPatchReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	d, err := h.Departments.Update(ctx, id, service.DepartmentPatch(req))
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DepartmentHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid department id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Departments.Delete(ctx, id); err != nil {
		return fail(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
