package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/beverage-reservation/internal/config"
	"github.com/iliyamo/beverage-reservation/internal/database"
	"github.com/iliyamo/beverage-reservation/internal/handler"
	"github.com/iliyamo/beverage-reservation/internal/logger"
	"github.com/iliyamo/beverage-reservation/internal/middleware"
	"github.com/iliyamo/beverage-reservation/internal/publisher"
	"github.com/iliyamo/beverage-reservation/internal/queue"
	"github.com/iliyamo/beverage-reservation/internal/repository"
	"github.com/iliyamo/beverage-reservation/internal/router"
	"github.com/iliyamo/beverage-reservation/internal/service"
)

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		_ = logger.Init("dev")
		zap.L().Fatal("config", zap.Error(err))
	}
	if err := logger.Init(cfg.Env); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := zap.L()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	defer db.Close()

	if cfg.DBAutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
		log.Info("schema applied")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := repository.NewStore(db)

	var events service.EventPublisher = publisher.Nop{}
	if cfg.RabbitURL != "" {
		events = publisher.NewAMQP(cfg.RabbitURL)
		go func() {
			if err := queue.StartConsumer(ctx, cfg.RabbitURL, cfg.EventLogDir); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("event consumer stopped", zap.Error(err))
			}
		}()
	} else {
		log.Info("RABBITMQ_URL not set; events disabled")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unreachable; cache and rate limit disabled")
	} else {
		defer rdb.Close()
	}

	er := handler.ErrorResponder{RetryAfter: cfg.ContentionRetryAfter}
	h := router.Handlers{
		Catalog:      handler.NewCatalogHandler(service.NewCatalogService(store), er),
		Accounts:     handler.NewAccountHandler(service.NewAccountService(store, cfg.BcryptCost), er),
		Orders:       handler.NewOrderHandler(service.NewOrderService(store, events), er),
		Reservations: handler.NewReservationHandler(service.NewReservationService(store, events, cfg.ReservationWindow), er),
		DB:           store,
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit("1M"))
	router.RegisterRoutes(e, h,
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	)

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	log.Info("stopped")
}
