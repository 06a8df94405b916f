package interfaces

import (
	"context"
	"errors"

	"carsplay/internal/rental/application/events"
	"carsplay/internal/rental/notify"
)

// SessionCompletedConsumer forwards completion events to the alarm
// notifier.
type SessionCompletedConsumer struct {
	notifier notify.Notifier
}

// NewSessionCompletedConsumer constructs a consumer.
func NewSessionCompletedConsumer(notifier notify.Notifier) (*SessionCompletedConsumer, error) {
	if notifier == nil {
		return nil, errors.New("completed consumer: nil notifier")
	}
	return &SessionCompletedConsumer{notifier: notifier}, nil
}

// Handle notifies about one completed session.
func (c *SessionCompletedConsumer) Handle(ctx context.Context, event events.SessionCompleted) error {
	c.notifier.Notify(ctx, event)
	return nil
}
