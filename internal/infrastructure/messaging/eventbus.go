// Package messaging implements event bus functionality for the quest
// coach bot. A single-process bot needs only the in-memory bus.
package messaging

import (
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrBusClosed is returned when publishing to a closed bus.
	ErrBusClosed = errors.New("eventbus: closed")

	// ErrNilHandler is returned when subscribing a nil handler.
	ErrNilHandler = errors.New("eventbus: handler cannot be nil")
)

// InMemoryEventBus is a simple in-memory implementation of shared.EventBus.
// Suitable for single-instance deployments and testing.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]shared.EventHandler
	allHandlers []shared.EventHandler
	asyncMode   bool
	logger      *slog.Logger
	closed      bool
	wg          sync.WaitGroup
}

// Config contains configuration for InMemoryEventBus.
type Config struct {
	// AsyncMode runs handlers in goroutines instead of inline.
	AsyncMode bool

	// Logger for structured logging.
	Logger *slog.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus.
func NewInMemoryEventBus(cfg Config) *InMemoryEventBus {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &InMemoryEventBus{
		handlers:  make(map[shared.EventType][]shared.EventHandler),
		asyncMode: cfg.AsyncMode,
		logger:    cfg.Logger,
	}
}

// Subscribe registers a handler for a specific event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	return nil
}

// SubscribeAll registers a handler for every event.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	b.allHandlers = append(b.allHandlers, handler)
	return nil
}

// Publish sends an event to all matching subscribers. Handler errors are
// logged, not propagated: a failed side effect must not fail the command
// that already committed.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	handlers := make([]shared.EventHandler, 0, len(b.handlers[event.EventType()])+len(b.allHandlers))
	handlers = append(handlers, b.handlers[event.EventType()]...)
	handlers = append(handlers, b.allHandlers...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if b.asyncMode {
			b.wg.Add(1)
			go func(h shared.EventHandler) {
				defer b.wg.Done()
				b.invoke(h, event)
			}(h)
		} else {
			b.invoke(h, event)
		}
	}
	return nil
}

// Close shuts the bus down, waiting for in-flight async handlers.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

func (b *InMemoryEventBus) invoke(h shared.EventHandler, event shared.Event) {
	defer func() {
		if p := recover(); p != nil {
			b.logger.Error("event handler panicked",
				"event_type", string(event.EventType()),
				"panic", p,
				"stack", string(debug.Stack()))
		}
	}()

	if err := h(event); err != nil {
		b.logger.Warn("event handler failed",
			"event_type", string(event.EventType()),
			"aggregate_id", event.AggregateID(),
			"error", err)
	}
}
