package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/appointment-booking/internal/api"
	"github.com/hackgods/appointment-booking/internal/appointment"
	"github.com/hackgods/appointment-booking/internal/bootstrap"
	"github.com/hackgods/appointment-booking/internal/config"
	"github.com/hackgods/appointment-booking/internal/logging"
	"github.com/hackgods/appointment-booking/internal/otelx"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := logging.New(cfg.Env, "booking-server")
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("booking-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("store", cfg.StoreBackend),
		zap.String("notifier", cfg.Notifier),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otelx.Setup(rootCtx, otelx.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  "booking-server",
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		logger.Fatal("tracing setup error", zap.Error(err))
	}

	store, checks, closeStore, err := bootstrap.OpenStore(rootCtx, cfg)
	if err != nil {
		logger.Fatal("store setup error", zap.Error(err))
	}
	defer closeStore()
	logger.Info("store ready", zap.String("backend", cfg.StoreBackend), zap.String("key", cfg.StateKey))

	notifier, closeNotifier, err := bootstrap.OpenNotifier(cfg, logger)
	if err != nil {
		logger.Fatal("notifier setup error", zap.Error(err))
	}
	defer closeNotifier()

	svc := appointment.NewService(store, notifier, cfg.Booking, logger)

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: api.NewRouter(api.RouterConfig{
			Service: svc,
			Logger:  logger,
			Checks:  checks,
			Env:     cfg.Env,
			Version: version,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-rootCtx.Done()
	logger.Info("shutting down booking-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", zap.Error(err))
	}
}
