package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fuzumoe/crawlplan-backend/configs"
	_ "github.com/fuzumoe/crawlplan-backend/docs"
	"github.com/fuzumoe/crawlplan-backend/internal/crawler"
	"github.com/fuzumoe/crawlplan-backend/internal/handler"
	"github.com/fuzumoe/crawlplan-backend/internal/logger"
	"github.com/fuzumoe/crawlplan-backend/internal/metrics"
	"github.com/fuzumoe/crawlplan-backend/internal/probe"
	"github.com/fuzumoe/crawlplan-backend/internal/repository"
	"github.com/fuzumoe/crawlplan-backend/internal/server"
	"github.com/fuzumoe/crawlplan-backend/internal/service"
)

// hookable functions for dependency injection
var (
	LoadConfig = configs.Load
	NewDB      = repository.NewDB
	MigrateDB  = repository.Migrate
)

// Run loads config, opens DB, runs migrations, wires the components, and
// serves until SIGINT/SIGTERM.
func Run() error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}

	log := logger.New(os.Stdout, cfg.LogLevel)

	db, err := NewDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}

	if err := MigrateDB(db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	// Repositories
	sessionRepo := repository.NewSessionRepo(db)
	snapshotRepo := repository.NewSnapshotRepo(db)
	stateRepo := repository.NewCrawlStateRepo(db)

	// External collaborators and controller
	prober := probe.NewHTTPProber(cfg.ProbeURL, cfg.ProbeTimeout)
	fetcher := crawler.StaticFetcher{
		ProductsPerPage: cfg.Policy.ProductsPerPageAssumed,
		Delay:           cfg.FetchDelay,
	}
	ctrl := crawler.New(fetcher, log, cfg.EventBufferLen)
	defer ctrl.Shutdown()

	m := metrics.New(nil)

	// Services
	healthSvc := service.NewHealthService(db, "CrawlPlan Backend")
	statusSvc := service.NewStatusService(prober, snapshotRepo, stateRepo, cfg.Policy, m)
	sessionSvc := service.NewSessionService(ctrl, sessionRepo, stateRepo, prober, cfg.Policy, m, log)

	// Handlers and router
	gin.SetMode(cfg.ServerMode)
	r := gin.New()

	healthH := handler.NewHealthHandler(healthSvc)
	statusH := handler.NewStatusHandler(statusSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)

	server.RegisterRoutes(
		r,
		cfg.JWTSecret,
		healthH,
		[]server.RouteRegistrar{statusH, sessionH},
		[]server.RouteRegistrar{handler.SessionControl{H: sessionH}},
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info("server listening", "addr", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
