package eventbus

import (
	"context"
	"sync"

	"carsplay/internal/rental/application/events"
)

// InMemoryBus is a lightweight in-process bus for session lifecycle events.
// Handlers run synchronously in publish order on the publisher's goroutine.
type InMemoryBus struct {
	mu sync.RWMutex

	completedHandlers []func(context.Context, events.SessionCompleted) error
	settledHandlers   []func(context.Context, events.SessionSettled) error
}

// NewInMemoryBus constructs a bus.
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{}
}

// SubscribeSessionCompleted registers a handler for SessionCompleted.
func (b *InMemoryBus) SubscribeSessionCompleted(handler func(context.Context, events.SessionCompleted) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.completedHandlers = append(b.completedHandlers, handler)
}

// PublishSessionCompleted publishes a SessionCompleted event.
func (b *InMemoryBus) PublishSessionCompleted(ctx context.Context, event events.SessionCompleted) error {
	b.mu.RLock()
	handlers := append([]func(context.Context, events.SessionCompleted) error(nil), b.completedHandlers...)
	b.mu.RUnlock()

	var firstErr error
	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		if err := handler(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SubscribeSessionSettled registers a handler for SessionSettled.
func (b *InMemoryBus) SubscribeSessionSettled(handler func(context.Context, events.SessionSettled) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settledHandlers = append(b.settledHandlers, handler)
}

// PublishSessionSettled publishes a SessionSettled event.
func (b *InMemoryBus) PublishSessionSettled(ctx context.Context, event events.SessionSettled) error {
	b.mu.RLock()
	handlers := append([]func(context.Context, events.SessionSettled) error(nil), b.settledHandlers...)
	b.mu.RUnlock()

	var firstErr error
	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		if err := handler(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
