package appointment

import (
	"context"
	"errors"
)

var (
	ErrNoRecord           = errors.New("no appointment record")
	ErrNotificationFailed = errors.New("appointment notification failed")
	ErrValidation         = errors.New("appointment request is invalid")
)

// Store is the single-slot persisted state holding the latest Record.
// Set overwrites whatever was there before.
type Store interface {
	Get(ctx context.Context) (Record, error)
	Set(ctx context.Context, rec Record) error
	Clear(ctx context.Context) error
}

// Notifier delivers the booking notification. A returned error aborts the
// submission.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
