package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/hackgods/appointment-booking/internal/appointment"
	"github.com/hackgods/appointment-booking/internal/receipt"
)

type BookingService interface {
	Submit(ctx context.Context, req appointment.Request) (appointment.Record, error)
	Current(ctx context.Context) (appointment.Record, error)
	Settings() appointment.Settings
}

// RenderFunc materialises a record as a downloadable PDF.
type RenderFunc func(rec appointment.Record) ([]byte, error)

type RouterConfig struct {
	Service BookingService
	Logger  *zap.Logger
	Checks  map[string]Pinger
	Render  RenderFunc       // defaults to receipt.Render
	Now     func() time.Time // defaults to time.Now
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Render == nil {
		cfg.Render = receipt.Render
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	h := &handlers{
		svc:    cfg.Service,
		logger: cfg.Logger,
		render: cfg.Render,
		now:    cfg.Now,
		pages:  mustParsePages(),
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.Checks, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Entry and confirmation pages
	r.Get("/", h.showForm)
	r.Post("/", h.submitForm)
	r.Get("/confirmation", h.showConfirmation)
	r.Get("/confirmation/pdf", h.downloadPDF)
	r.Post("/confirmation/restart", h.restart)

	// JSON endpoints
	r.Route("/api", func(r chi.Router) {
		r.Get("/time-slots", h.listTimeSlots)
		r.Post("/appointments", h.createAppointment)
		r.Get("/appointments/current", h.currentAppointment)
		r.Get("/appointments/current/pdf", h.currentAppointmentPDF)
	})

	return otelhttp.NewHandler(r, "booking-server")
}
