package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/logging"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/realtime"
	"github.com/iliyamo/cinema-booking/internal/repository"
	"github.com/iliyamo/cinema-booking/internal/router"
	"github.com/iliyamo/cinema-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine; the environment may already be set
	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.IsProd())
	log := logging.Component("server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()
	if cfg.MigrateOnStart {
		mctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := database.Migrate(mctx, db)
		cancel()
		if err != nil {
			log.WithError(err).Fatal("schema migration failed")
		}
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable: seat cache, token revocation, rate limiting and cross-instance events are disabled")
	} else {
		defer rdb.Close()
	}

	bookingRepo := repository.NewBookingRepo(db)
	buddyRepo := repository.NewBuddyRepo(db)
	movieRepo := repository.NewMovieRepo(db)
	userRepo := repository.NewUserRepo(db)
	foodRepo := repository.NewFoodOrderRepo(db)
	tokenRepo := repository.NewTokenRepo(rdb)

	hub := realtime.NewHub(rdb, cfg.RealtimeChan)
	publisher := queue.NewPublisher(cfg.AMQPURL)
	consumer := queue.NewConsumer(cfg.AMQPURL, filepath.Join("logs", "booking.log"))

	bookings := service.NewBookingService(bookingRepo, buddyRepo, movieRepo,
		service.NewSeatCache(rdb, cfg.SeatCacheTTL), publisher, hub)
	buddies := service.NewBuddyService(buddyRepo, bookingRepo, userRepo, hub)
	auth := service.NewAuthService(userRepo, tokenRepo, service.AuthConfig{
		JWTSecret:    cfg.JWTSecret,
		AccessTTLMin: cfg.AccessTTLMin,
		BcryptCost:   cfg.BcryptCost,
		AdminEmails:  cfg.AdminEmails,
	})
	movies := service.NewMovieService(movieRepo)
	food := service.NewFoodService(foodRepo, bookingRepo)

	movieCache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, "movies")

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, cfg.JWTSecret, "/healthz", "/metrics", "/api/events"))

	router.RegisterRoutes(e, router.Handlers{
		Health:   handler.Health(db),
		Auth:     handler.NewAuthHandler(auth, cfg.RequestTimeout),
		Bookings: handler.NewBookingHandler(bookings, cfg.RequestTimeout),
		Buddies:  handler.NewBuddyHandler(buddies, cfg.RequestTimeout),
		Movies:   handler.NewMovieHandler(movies, movieCache, cfg.RequestTimeout),
		Food:     handler.NewFoodHandler(food, cfg.RequestTimeout),
		Events:   handler.NewEventsHandler(hub),
	}, router.Security{
		JWTSecret:  cfg.JWTSecret,
		Revoked:    tokenRepo,
		MovieCache: movieCache.Middleware(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error {
		if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("server stopped with error")
	}
	log.Info("server stopped")
}
