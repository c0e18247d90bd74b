package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/desk-booking/internal/config"
	"github.com/iliyamo/desk-booking/internal/database"
	"github.com/iliyamo/desk-booking/internal/handler"
	"github.com/iliyamo/desk-booking/internal/metrics"
	"github.com/iliyamo/desk-booking/internal/middleware"
	"github.com/iliyamo/desk-booking/internal/queue"
	"github.com/iliyamo/desk-booking/internal/repository"
	"github.com/iliyamo/desk-booking/internal/router"
	"github.com/iliyamo/desk-booking/internal/seed"
	"github.com/iliyamo/desk-booking/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := newLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("open db")
	}
	defer db.Close()
	if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}

	rdb := config.NewRedisClient(&logger)
	if rdb != nil {
		defer rdb.Close()
	}

	var publisher service.EventPublisher = queue.NopPublisher{}
	if cfg.RabbitURL != "" {
		publisher = queue.NewPublisher(cfg.RabbitURL, logger)
		if cfg.RunConsumer {
			go func() {
				if err := queue.NewConsumer(cfg.RabbitURL, "logs", logger).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error().Err(err).Msg("booking consumer stopped")
				}
			}()
		}
	}
	if cfg.MetricsEnabled {
		metrics.Register()
	}

	var (
		tx          = repository.NewTxManager(db)
		floors      = repository.NewFloorRepo(db)
		departments = repository.NewDepartmentRepo(db)
		desks       = repository.NewDeskRepo(db)
		bookings    = repository.NewBookingRepo(db)
		holidays    = repository.NewHolidayRepo(db)
		lockers     = repository.NewLockerRepo(db)
		assignments = repository.NewLockerAssignmentRepo(db)
		users       = repository.NewUserRepo(db)
		tokens      = repository.NewTokenRepo(db)
		clock       = service.SystemClock{Loc: cfg.Location()}
	)

	floorSvc := service.NewFloorService(floors, logger)
	departmentSvc := service.NewDepartmentService(departments, floors, logger)
	deskSvc := service.NewDeskService(tx, desks, floors, departments, bookings, logger)
	holidaySvc := service.NewHolidayCalendar(tx, holidays, logger)
	bookingSvc := service.NewBookingService(tx, bookings, desks, users, publisher, clock, logger)
	occupancySvc := service.NewOccupancyService(holidays, bookings, desks, floors, lockers, clock, logger)
	lockerSvc := service.NewLockerService(tx, lockers, assignments, floors, users, clock, logger)
	userSvc := service.NewUserService(users, departments, cfg.BcryptCost, clock, logger)

	if cfg.SeedFile != "" {
		f, err := seed.Load(cfg.SeedFile)
		if err != nil {
			logger.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("load seed")
		}
		res, err := seed.NewSeeder(floorSvc, departmentSvc, holidaySvc, logger).Apply(ctx, f)
		if err != nil {
			logger.Fatal().Err(err).Msg("apply seed")
		}
		logger.Info().Int("floors", res.Floors).Int("departments", res.Departments).
			Int("holidays", res.Holidays).Msg("seed applied")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger))

	router.RegisterRoutes(e, db, rdb, cfg.MetricsEnabled)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, userSvc, tokens, logger), cfg.JWTSecret)
	router.RegisterAPI(e, router.Handlers{
		Bookings:    handler.NewBookingHandler(bookingSvc, logger),
		Desks:       handler.NewDeskHandler(deskSvc, clock, logger),
		Floors:      handler.NewFloorHandler(floorSvc, occupancySvc, logger),
		Departments: handler.NewDepartmentHandler(departmentSvc, logger),
		Lockers:     handler.NewLockerHandler(lockerSvc, logger),
		Holidays:    handler.NewHolidayHandler(holidaySvc, logger),
		Statistics:  handler.NewStatisticsHandler(occupancySvc, logger),
		Users:       handler.NewUserHandler(userSvc, logger),
	}, cfg.JWTSecret, middleware.NewRedisCache(config.LoadCacheConfig(), rdb, logger))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Str("env", cfg.Env).Str("driver", cfg.DBDriver).Msg("listening")
	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

// newLogger writes human readable lines in dev and JSON everywhere else.
func newLogger(env string) zerolog.Logger {
	if env == "dev" || env == "development" {
		out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(out).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
