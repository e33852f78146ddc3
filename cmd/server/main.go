package main // Entry point package

import (
	"context"   // shutdown deadline
	"errors"    // server-closed detection
	"log/slog"  // structured logging
	"net/http"  // http.ErrServerClosed
	"os"        // exit codes and stderr
	"os/signal" // graceful shutdown
	"syscall"   // SIGTERM
	"time"      // shutdown timeout

	"github.com/joho/godotenv"                                  // .env loading
	"github.com/labstack/echo/v4"                               // Echo web framework
	"github.com/prometheus/client_golang/prometheus"            // metrics registry
	"github.com/prometheus/client_golang/prometheus/collectors" // runtime collectors

	"github.com/iliyamo/guest-seating/internal/app"        // engine assembly
	"github.com/iliyamo/guest-seating/internal/config"     // Internal config loader
	"github.com/iliyamo/guest-seating/internal/database"   // store connection
	"github.com/iliyamo/guest-seating/internal/handler"    // HTTP handlers
	"github.com/iliyamo/guest-seating/internal/middleware" // cache and rate limit
	"github.com/iliyamo/guest-seating/internal/queue"      // seating.changed consumer
	"github.com/iliyamo/guest-seating/internal/repository" // schema migration
	"github.com/iliyamo/guest-seating/internal/router"     // Internal router setup
	"github.com/iliyamo/guest-seating/internal/seating"    // seating metrics
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()  // a missing .env is fine outside development
	cfg := config.Load() // Load environment config
	log := config.NewLogger(os.Stderr, cfg.LogLevel, false)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer store.DB().Close()
	if err := repository.Migrate(ctx, store); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := seating.NewMetrics(reg)

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		log.Warn("redis unavailable; view cache and check-in rate limit disabled")
	} else {
		defer rdb.Close()
	}
	cache := middleware.NewViewCache(config.LoadCacheConfig(), rdb)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	notifiers, closeNotifiers := app.ChangeNotifiers(cache, cfg.RabbitMQURL)
	defer closeNotifiers()
	if cfg.RabbitMQURL != "" {
		go func() {
			if err := queue.StartSeatingConsumer(ctx, cfg.RabbitMQURL, "logs"); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("seating consumer stopped", "error", err)
			}
		}()
	}

	engine := app.NewEngine(store, cfg.Seating, app.Deps{Log: log, Metrics: metrics, Notifiers: notifiers})

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	router.RegisterRoutes(e, store.DB(), reg)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(engine, log), cache, limiter)
	router.RegisterAdmin(e, handler.NewAdminHandler(engine, app.ImportOptions(cfg.Seating, false), log), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Info("listening", "addr", addr, "env", cfg.Env, "driver", cfg.DB.Driver)

	errc := make(chan error, 1)
	go func() { errc <- e.Start(addr) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}
