package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"carsplay/internal/observability/metrics"
	"carsplay/internal/rental/application/events"
)

// Notifier reacts to a session reaching its planned time.
type Notifier interface {
	Notify(ctx context.Context, event events.SessionCompleted)
}

// ChannelNotifier renders a completion message and sends it through a
// channel.
type ChannelNotifier struct {
	channel Channel
	timeout time.Duration
	logger  *log.Logger
}

// ChannelOption configures the notifier.
type ChannelOption func(*ChannelNotifier)

// WithRequestTimeout bounds a single delivery attempt.
func WithRequestTimeout(timeout time.Duration) ChannelOption {
	return func(n *ChannelNotifier) {
		if timeout > 0 {
			n.timeout = timeout
		}
	}
}

// WithLogger overrides the delivery failure logger.
func WithLogger(logger *log.Logger) ChannelOption {
	return func(n *ChannelNotifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewChannelNotifier constructs a ChannelNotifier.
func NewChannelNotifier(channel Channel, opts ...ChannelOption) (*ChannelNotifier, error) {
	if channel == nil {
		return nil, errors.New("notify: nil channel")
	}
	n := &ChannelNotifier{
		channel: channel,
		timeout: 10 * time.Second,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Notify sends the completion message. Failures are logged, not
// returned: a dead webhook must not stall the timer loop.
func (n *ChannelNotifier) Notify(ctx context.Context, event events.SessionCompleted) {
	if n == nil || n.channel == nil {
		return
	}
	content := fmt.Sprintf(
		"Time is up\nStation: %s\nPlanned: %d min\nAmount: %.2f\nCompleted: %s",
		event.StationID,
		event.Minutes,
		event.Amount,
		event.At.Format(time.RFC3339),
	)
	sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	if err := n.channel.Send(sendCtx, content); err != nil {
		metrics.AlarmNotify(false)
		n.logger.Printf("notify: completion delivery failed for station %s: %v", event.StationID, err)
		return
	}
	metrics.AlarmNotify(true)
}

// MultiNotifier dispatches completion events to multiple notifiers.
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier constructs a MultiNotifier.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

// Notify forwards events to all notifiers.
func (m *MultiNotifier) Notify(ctx context.Context, event events.SessionCompleted) {
	if m == nil {
		return
	}
	for _, notifier := range m.notifiers {
		if notifier != nil {
			notifier.Notify(ctx, event)
		}
	}
}

// LogNotifier writes completion events to the service log.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier constructs a LogNotifier.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the event.
func (l *LogNotifier) Notify(_ context.Context, event events.SessionCompleted) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf("notify: station %s session %s completed after %d min, amount %.2f",
		event.StationID, event.SessionID, event.Minutes, event.Amount)
}
