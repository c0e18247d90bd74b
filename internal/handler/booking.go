package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/service"
)

type BookingHandler struct {
	Bookings *service.BookingService
	Logger   zerolog.Logger
}

func NewBookingHandler(bookings *service.BookingService, logger zerolog.Logger) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Logger: logger}
}

type createBookingReq struct {
	UserID    uint64     `json:"user_id"`
	DeskID    uint64     `json:"desk_id"`
	Date      model.Date `json:"booking_date"`
	StartTime *string    `json:"start_time"`
	EndTime   *string    `json:"end_time"`
	Type      string     `json:"type"`
	Notes     *string    `json:"notes"`
}

type updateBookingReq struct {
	Date      *model.Date `json:"booking_date"`
	StartTime *string     `json:"start_time"`
	EndTime   *string     `json:"end_time"`
	Notes     *string     `json:"notes"`
}

type cancelReq struct {
	Reason *string `json:"reason"`
}

// List returns every booking, or those of one date (and floor) when
// ?date= (and ?floor_id=) is given.  Staff only.
func (h *BookingHandler) List(c echo.Context) error {
	floorID, ok := queryID(c, "floor_id")
	if !ok {
		return badRequest(c, "invalid floor_id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	var (
		out []model.Booking
		err error
	)
	if c.QueryParam("date") == "" {
		out, err = h.Bookings.ListAll(ctx)
	} else {
		date, ok := queryDate(c, "date", model.Date{})
		if !ok {
			return badRequest(c, "invalid date")
		}
		if floorID != nil {
			out, err = h.Bookings.ListForDateAndFloor(ctx, date, *floorID)
		} else {
			out, err = h.Bookings.ListForDate(ctx, date)
		}
	}
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Mine lists the caller's bookings; ?upcoming=true keeps only ACTIVE ones
// from today on.
func (h *BookingHandler) Mine(c echo.Context) error {
	return h.listForUser(c, actor(c).ID)
}

// ByUser lists the bookings of :id for the user themself or staff.
func (h *BookingHandler) ByUser(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	if !selfOrStaff(c, id) {
		return forbidden(c)
	}
	return h.listForUser(c, id)
}

func (h *BookingHandler) listForUser(c echo.Context, userID uint64) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	var (
		out []model.Booking
		err error
	)
	if c.QueryParam("upcoming") == "true" {
		out, err = h.Bookings.ListUpcoming(ctx, userID)
	} else {
		out, err = h.Bookings.ListByUser(ctx, userID)
	}
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) Get(c echo.Context) error {
	b, err := h.load(c, selfOrStaff)
	if err != nil || b == nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

// Create books a desk.  user_id defaults to the caller; booking for
// someone else is for staff.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.DeskID == 0 || req.Date.IsZero() {
		return badRequest(c, "desk_id and booking_date are required")
	}
	if req.UserID == 0 {
		req.UserID = actor(c).ID
	}
	if !selfOrStaff(c, req.UserID) {
		return forbidden(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	b, err := h.Bookings.Create(ctx, service.BookingRequest{
		UserID:    req.UserID,
		DeskID:    req.DeskID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Type:      model.BookingType(strings.ToUpper(strings.TrimSpace(req.Type))),
		Notes:     req.Notes,
	})
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) Update(c echo.Context) error {
	var req updateBookingReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	b, err := h.load(c, selfOrAdmin)
	if err != nil || b == nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Bookings.Update(ctx, b.ID, service.BookingPatch{
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
	})
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) Cancel(c echo.Context) error {
	var req cancelReq
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid body")
		}
	}
	b, err := h.load(c, selfOrAdmin)
	if err != nil || b == nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Bookings.Cancel(ctx, b.ID, req.Reason)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) CheckIn(c echo.Context) error {
	return h.transition(c, selfOrStaff, h.Bookings.CheckIn)
}

func (h *BookingHandler) CheckOut(c echo.Context) error {
	return h.transition(c, selfOrStaff, h.Bookings.CheckOut)
}

// NoShow and Complete are mounted behind RequireRole.
func (h *BookingHandler) NoShow(c echo.Context) error {
	return h.transition(c, selfOrStaff, h.Bookings.MarkNoShow)
}

func (h *BookingHandler) Complete(c echo.Context) error {
	return h.transition(c, selfOrStaff, h.Bookings.Complete)
}

func (h *BookingHandler) transition(c echo.Context, allowed func(echo.Context, uint64) bool,
	apply func(ctx context.Context, id uint64) (*model.Booking, error)) error {
	b, err := h.load(c, allowed)
	if err != nil || b == nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := apply(ctx, b.ID)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

// load fetches the booking named by :id and checks the caller against its
// owner.  A nil booking means the response has been written.
func (h *BookingHandler) load(c echo.Context, allowed func(echo.Context, uint64) bool) (*model.Booking, error) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, badRequest(c, "invalid booking id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	b, err := h.Bookings.Get(ctx, id)
	if err != nil {
		return nil, fail(c, h.Logger, err)
	}
	if !allowed(c, b.UserID) {
		return nil, forbidden(c)
	}
	return b, nil
}
