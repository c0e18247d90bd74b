package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/report"
	"github.com/iliyamo/desk-booking/internal/service"
)

// StatisticsHandler serves occupancy reports as JSON and as .xlsx.
type StatisticsHandler struct {
	Occupancy *service.OccupancyService
	Logger    zerolog.Logger
}

func NewStatisticsHandler(occupancy *service.OccupancyService, logger zerolog.Logger) *StatisticsHandler {
	return &StatisticsHandler{Occupancy: occupancy, Logger: logger}
}

func (h *StatisticsHandler) Today(c echo.Context) error {
	return h.respond(c, h.Occupancy.Today)
}

func (h *StatisticsHandler) Week(c echo.Context) error {
	return h.respond(c, h.Occupancy.CurrentWeek)
}

func (h *StatisticsHandler) Month(c echo.Context) error {
	return h.respond(c, h.Occupancy.CurrentMonth)
}

// Range reports on [?start, ?end].
func (h *StatisticsHandler) Range(c echo.Context) error {
	r, err := h.rangeReport(c)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, r)
}

// Export writes the report of [?start, ?end] as a workbook download.
func (h *StatisticsHandler) Export(c echo.Context) error {
	r, err := h.rangeReport(c)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	var buf bytes.Buffer
	if err := report.WriteOccupancy(&buf, r); err != nil {
		return fail(c, h.Logger, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", report.Filename(r)))
	return c.Blob(http.StatusOK, report.ContentType, buf.Bytes())
}

func (h *StatisticsHandler) rangeReport(c echo.Context) (*model.OccupancyReport, error) {
	start, err1 := model.ParseDate(c.QueryParam("start"))
	end, err2 := model.ParseDate(c.QueryParam("end"))
	if err1 != nil || err2 != nil {
		return nil, &service.Error{Kind: service.KindValidation, Msg: "start and end must both be YYYY-MM-DD"}
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	return h.Occupancy.Compute(ctx, start, end)
}

func (h *StatisticsHandler) respond(c echo.Context, fn func(ctx context.Context) (*model.OccupancyReport, error)) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	r, err := fn(ctx)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, r)
}
