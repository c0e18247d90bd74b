package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/service"
)

type HolidayHandler struct {
	Holidays *service.HolidayCalendar
	Logger   zerolog.Logger
}

func NewHolidayHandler(holidays *service.HolidayCalendar, logger zerolog.Logger) *HolidayHandler {
	return &HolidayHandler{Holidays: holidays, Logger: logger}
}

type holidayReq struct {
	Date        model.Date `json:"date"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Type        string     `json:"type"`
	Recurring   bool       `json:"recurring"`
}

type holidayPatchReq struct {
	Date        *model.Date        `json:"date"`
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Type        *model.HolidayType `json:"type"`
	Recurring   *bool              `json:"recurring"`
	Active      *bool              `json:"active"`
}

// List returns the active holidays, or those in [?start, ?end] when both
// are given.
func (h *HolidayHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	if c.QueryParam("start") == "" && c.QueryParam("end") == "" {
		out, err := h.Holidays.List(ctx)
		if err != nil {
			return fail(c, h.Logger, err)
		}
		return c.JSON(http.StatusOK, out)
	}
	start, err1 := model.ParseDate(c.QueryParam("start"))
	end, err2 := model.ParseDate(c.QueryParam("end"))
	if err1 != nil || err2 != nil {
		return badRequest(c, "start and end must both be YYYY-MM-DD")
	}
	out, err := h.Holidays.InRange(ctx, start, end)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HolidayHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid holiday id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	hol, err := h.Holidays.Get(ctx, id)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, hol)
}

// Check answers whether :date is a holiday.
func (h *HolidayHandler) Check(c echo.Context) error {
	date, ok := paramDate(c, "date")
	if !ok {
		return badRequest(c, "invalid date")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	is, err := h.Holidays.IsHoliday(ctx, date)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "is_holiday": is})
}

// Year returns the holidays of :year, materializing recurring ones.
func (h *HolidayHandler) Year(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 || year > 9999 {
		return badRequest(c, "invalid year")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Holidays.ResolveRecurringForYear(ctx, year)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HolidayHandler) Create(c echo.Context) error {
	var req holidayReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Date.IsZero() {
		return badRequest(c, "date is required")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	hol, err := h.Holidays.Create(ctx, service.HolidayInput{
		Date:        req.Date,
		Name:        req.Name,
		Description: req.Description,
		Type:        model.HolidayType(strings.ToUpper(strings.TrimSpace(req.Type))),
		Recurring:   req.Recurring,
	})
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, hol)
}

func (h *HolidayHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid holiday id")
	}
	var req holidayPatchReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	hol, err := h.Holidays.Update(ctx, id, service.HolidayPatch(req))
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, hol)
}

func (h *HolidayHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid holiday id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Holidays.Delete(ctx, id); err != nil {
		return fail(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
