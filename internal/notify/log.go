package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/hackgods/appointment-booking/internal/appointment"
)

// Log only records the notification. Used in development when no mail
// service is configured.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(_ context.Context, n appointment.Notification) error {
	l.logger.Info("appointment notification",
		zap.String("service_id", n.ServiceID),
		zap.String("template_id", n.TemplateID),
		zap.String("to_name", n.Params.ToName),
		zap.String("appointment_id", n.Params.AppointmentID),
		zap.String("client_name", n.Params.ClientName),
		zap.String("phone_number", n.Params.PhoneNumber),
		zap.String("appointment_date", n.Params.AppointmentDate),
		zap.String("appointment_time", n.Params.AppointmentTime),
	)
	return nil
}
