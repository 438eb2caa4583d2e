package appointment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	store     Store
	notifier  Notifier
	settings  Settings
	validator *Validator
	logger    *zap.Logger

	now   func() time.Time
	newID func() string

	// submitMu keeps notify+persist of one submission from interleaving
	// with another, so the stored record is the last one notified.
	submitMu sync.Mutex
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func NewService(store Store, notifier Notifier, settings Settings, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		store:    store,
		notifier: notifier,
		settings: settings,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validator = NewValidator(settings, s.now)

	return s
}

func (s *Service) Settings() Settings {
	return s.settings
}

// Validate checks req without submitting it.
func (s *Service) Validate(req Request) FieldErrors {
	return s.validator.Validate(req)
}

// Submit validates req, sends the booking notification and, only if that
// succeeds, overwrites the stored record with the new one.
func (s *Service) Submit(ctx context.Context, req Request) (Record, error) {
	if errs := s.validator.Validate(req); errs != nil {
		return Record{}, errs
	}

	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	rec := Record{
		ID:    s.newID(),
		Name:  req.Name,
		Phone: req.Phone,
		Date:  FormatDate(req.Date),
		Time:  req.Time,
	}

	if err := s.notifier.Notify(ctx, s.notificationFor(rec)); err != nil {
		s.logger.Warn("appointment notification failed",
			zap.String("appointment_id", rec.ID),
			zap.Error(err),
		)
		return Record{}, fmt.Errorf("%w: %w", ErrNotificationFailed, err)
	}

	if err := s.store.Set(ctx, rec); err != nil {
		s.logger.Error("appointment notified but not persisted",
			zap.String("appointment_id", rec.ID),
			zap.Error(err),
		)
		return Record{}, fmt.Errorf("persist appointment: %w", err)
	}

	s.logger.Info("appointment booked",
		zap.String("appointment_id", rec.ID),
		zap.String("date", rec.Date),
		zap.String("time", rec.Time),
	)

	return rec, nil
}

// Current returns the stored record or ErrNoRecord.
func (s *Service) Current(ctx context.Context) (Record, error) {
	rec, err := s.store.Get(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("load appointment: %w", err)
	}
	return rec, nil
}

// Reset clears the stored record.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear appointment: %w", err)
	}
	return nil
}

func (s *Service) notificationFor(rec Record) Notification {
	return Notification{
		ServiceID:  s.settings.ServiceID,
		TemplateID: s.settings.TemplateID,
		Params: NotificationParams{
			ToName:          s.settings.RecipientLabel,
			AppointmentID:   rec.ID,
			ClientName:      rec.Name,
			PhoneNumber:     rec.Phone,
			AppointmentDate: rec.Date,
			AppointmentTime: rec.Time,
		},
	}
}
