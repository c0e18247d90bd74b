// Package router mounts the HTTP API on an echo instance.  Everything but
// auth, health and metrics lives under /api and requires an access token.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/desk-booking/internal/handler"
	"github.com/iliyamo/desk-booking/internal/middleware"
	"github.com/iliyamo/desk-booking/internal/model"
)

// Handlers bundles every API handler.
type Handlers struct {
	Bookings    *handler.BookingHandler
	Desks       *handler.DeskHandler
	Floors      *handler.FloorHandler
	Departments *handler.DepartmentHandler
	Lockers     *handler.LockerHandler
	Holidays    *handler.HolidayHandler
	Statistics  *handler.StatisticsHandler
	Users       *handler.UserHandler
}

var (
	adminOnly = middleware.RequireRole(model.RoleAdmin)
	staffOnly = middleware.RequireRole(model.RoleAdmin, model.RoleManager)
)

// RegisterRoutes mounts the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo, db *sql.DB, rdb *redis.Client, metricsEnabled bool) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db, rdb))
	if metricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}
}

// RegisterAuth mounts the token endpoints.  Register, login, refresh and
// logout work without an access token; /api/me needs one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	e.GET("/api/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterAPI mounts the booking back-office.  cache wraps the reporting
// routes only.
func RegisterAPI(e *echo.Echo, h Handlers, jwtSecret string, cache echo.MiddlewareFunc) {
	api := e.Group("/api", middleware.JWTAuth(jwtSecret))

	registerBookings(api, h.Bookings)
	registerOffice(api, h)
	registerLockers(api, h.Lockers)
	registerStatistics(api, h, cache)
	registerUsers(api, h)
}

func registerBookings(g *echo.Group, h *handler.BookingHandler) {
	g.GET("/bookings", h.List, staffOnly)
	g.POST("/bookings", h.Create)
	g.GET("/bookings/me", h.Mine)
	g.GET("/bookings/:id", h.Get)
	g.PATCH("/bookings/:id", h.Update)
	g.POST("/bookings/:id/cancel", h.Cancel)
	g.POST("/bookings/:id/check-in", h.CheckIn)
	g.POST("/bookings/:id/check-out", h.CheckOut)
	g.POST("/bookings/:id/no-show", h.NoShow, staffOnly)
	g.POST("/bookings/:id/complete", h.Complete, staffOnly)
}

func registerOffice(g *echo.Group, h Handlers) {
	g.GET("/floors", h.Floors.List)
	g.GET("/floors/number/:number", h.Floors.GetByNumber)
	g.GET("/floors/:id", h.Floors.Get)
	g.POST("/floors", h.Floors.Create, adminOnly)
	g.PATCH("/floors/:id", h.Floors.Update, adminOnly)
	g.DELETE("/floors/:id", h.Floors.Delete, adminOnly)

	g.GET("/departments", h.Departments.List)
	g.GET("/departments/:id", h.Departments.Get)
	g.POST("/departments", h.Departments.Create, adminOnly)
	g.PATCH("/departments/:id", h.Departments.Update, adminOnly)
	g.DELETE("/departments/:id", h.Departments.Delete, adminOnly)

	g.GET("/desks", h.Desks.List)
	g.GET("/desks/available", h.Desks.Available)
	g.GET("/desks/availability", h.Desks.Availability)
	g.GET("/desks/:id", h.Desks.Get)
	g.POST("/desks", h.Desks.Create, staffOnly)
	g.POST("/desks/import", h.Desks.Import, staffOnly)
	g.PATCH("/desks/:id", h.Desks.Update, staffOnly)
	g.DELETE("/desks/:id", h.Desks.Delete, staffOnly)

	g.GET("/holidays", h.Holidays.List)
	g.GET("/holidays/check/:date", h.Holidays.Check)
	g.GET("/holidays/year/:year", h.Holidays.Year)
	g.GET("/holidays/:id", h.Holidays.Get)
	g.POST("/holidays", h.Holidays.Create, adminOnly)
	g.PATCH("/holidays/:id", h.Holidays.Update, adminOnly)
	g.DELETE("/holidays/:id", h.Holidays.Delete, adminOnly)
}

func registerLockers(g *echo.Group, h *handler.LockerHandler) {
	g.GET("/lockers", h.List)
	g.GET("/lockers/:id", h.Get)
	g.POST("/lockers", h.Create, staffOnly)
	g.PATCH("/lockers/:id", h.Update, staffOnly)
	g.DELETE("/lockers/:id", h.Delete, staffOnly)
	g.GET("/lockers/:id/assignments", h.Assignments, staffOnly)

	g.POST("/locker-assignments", h.Assign, staffOnly)
	g.POST("/locker-assignments/expire", h.Expire, staffOnly)
	g.GET("/locker-assignments/:id", h.GetAssignment)
	g.POST("/locker-assignments/:id/revoke", h.Revoke, staffOnly)
}

func registerStatistics(g *echo.Group, h Handlers, cache echo.MiddlewareFunc) {
	s := g.Group("/statistics", staffOnly)
	s.GET("/today", h.Statistics.Today, cache)
	s.GET("/week", h.Statistics.Week, cache)
	s.GET("/month", h.Statistics.Month, cache)
	s.GET("/range", h.Statistics.Range, cache)
	s.GET("/export", h.Statistics.Export)
	g.GET("/floors/:id/statistics", h.Floors.Statistics, staffOnly, cache)
}

func registerUsers(g *echo.Group, h Handlers) {
	g.GET("/users", h.Users.List, staffOnly)
	g.POST("/users", h.Users.Create, adminOnly)
	g.GET("/users/:id", h.Users.Get)
	g.PATCH("/users/:id", h.Users.Update)
	g.PUT("/users/:id/password", h.Users.ChangePassword)
	g.DELETE("/users/:id", h.Users.Delete, adminOnly)
	g.GET("/users/:id/bookings", h.Bookings.ByUser)
	g.GET("/users/:id/locker-assignments", h.Lockers.UserAssignments)
}
