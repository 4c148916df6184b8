package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/cinebook/internal/booking"
	"github.com/iliyamo/cinebook/internal/config"
	"github.com/iliyamo/cinebook/internal/database"
	"github.com/iliyamo/cinebook/internal/handler"
	"github.com/iliyamo/cinebook/internal/logger"
	"github.com/iliyamo/cinebook/internal/middleware"
	"github.com/iliyamo/cinebook/internal/queue"
	"github.com/iliyamo/cinebook/internal/repository"
	"github.com/iliyamo/cinebook/internal/router"
)

func main() {
	cfg := config.Load()

	lg, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		lg.Fatal("database connect failed", zap.Error(err))
	}
	defer db.Close()

	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			lg.Fatal("database migrate failed", zap.Error(err))
		}
		lg.Info("database schema up to date")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	movies := repository.NewMovieRepo(db)
	rooms := repository.NewRoomRepo(db)
	showings := repository.NewShowingRepo(db)
	reservations := repository.NewReservationRepo(db)
	stats := repository.NewStatsRepo(db)

	if cfg.AdminEmail != "" {
		created, err := users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost)
		if err != nil {
			lg.Fatal("seed admin failed", zap.Error(err))
		}
		if created {
			lg.Info("admin account created", zap.String("email", cfg.AdminEmail))
		}
	}

	var opts []booking.Option
	if cfg.Queue.Enabled {
		opts = append(opts, booking.WithNotifier(
			queue.NewPublisher(cfg.Queue.URL, cfg.Queue.CreatedQueue, cfg.Queue.CancelledQueue, lg)))
		consumer := queue.NewConsumer(cfg.Queue.URL, cfg.Queue.LogPath, lg,
			cfg.Queue.CreatedQueue, cfg.Queue.CancelledQueue)
		go consumer.Run(ctx)
	}
	engine := booking.NewEngine(showings, reservations, lg, opts...)
	if err := engine.Preload(ctx); err != nil {
		lg.Fatal("load reservations failed", zap.Error(err))
	}

	rdb := config.NewRedisClient(cfg.Redis, lg)
	if rdb != nil {
		defer rdb.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(lg.Named("http")))
	e.Use(echomw.Recover())
	e.Use(echomw.ContextTimeout(cfg.RequestTimeout))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(showings, engine), middleware.NewRedisCache(cfg.Cache, rdb))
	router.RegisterCustomer(e, handler.NewCustomerHandler(engine, lg), cfg.JWTSecret,
		middleware.NewTokenBucket(cfg.RateLimit, rdb, lg))
	router.RegisterAdmin(e,
		handler.NewAdminHandler(movies, rooms, showings, stats, engine),
		handler.NewUserAdminHandler(users, tokens, cfg.BcryptCost),
		cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		lg.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
	engine.Wait()
}
