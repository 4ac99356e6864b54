package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/dmitrymomot/eventbus/core/logger"
	"github.com/dmitrymomot/eventbus/pkg/broadcast"
)

// Bus is an in-process broadcast channel for values of any type.
// Create one with NewBus and share it between publishers and subscribers.
type Bus struct {
	broadcaster *broadcast.MemoryBroadcaster[Event]
	logger      *slog.Logger
	observer    Observer

	published     atomic.Int64
	delivered     atomic.Int64
	overwritten   atomic.Int64
	outcomes      outcomeCounters
	subscriptions atomic.Int64
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithLogger configures structured logging for the bus and its subscriptions.
// Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable logging.
func WithLogger(l *slog.Logger) BusOption {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithObserver attaches an observer that is notified about publishes and handler outcomes.
func WithObserver(o Observer) BusOption {
	return func(b *Bus) {
		if o != nil {
			b.observer = o
		}
	}
}

// NewBus creates an event bus. Every subscription gets a single-slot keep-latest mailbox.
//
// Example:
//
//	bus := event.NewBus(event.WithLogger(log))
//	defer bus.Close()
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		broadcaster: broadcast.NewMemoryBroadcaster[Event](
			broadcast.WithDefaultCapacity(1),
			broadcast.WithDefaultPolicy(broadcast.KeepLatest),
		),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer: noopObserver{},
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Publish hands payload to every live subscription interested in its type and returns
// without waiting for any handler. It fails only for a nil payload, a done context or
// a closed bus.
//
// Example:
//
//	err := bus.Publish(ctx, ResultSuccess{SportKey: 1, SportType: "Football"})
func (b *Bus) Publish(ctx context.Context, payload any) error {
	if payload == nil {
		return ErrNilPayload
	}

	evt := NewEvent(payload)
	res, err := b.broadcaster.Broadcast(ctx, broadcast.Message[Event]{Data: evt})
	if err != nil {
		if errors.Is(err, broadcast.ErrBroadcasterClosed) {
			return ErrBusClosed
		}
		return err
	}

	b.published.Add(1)
	b.delivered.Add(int64(res.Delivered))
	b.overwritten.Add(int64(res.Evicted))
	b.observer.EventPublished(evt.Name, res.Delivered, res.Evicted)

	b.logger.DebugContext(ctx, "event published",
		logger.EventID(evt.ID),
		logger.Event(evt.Name),
		logger.Count("subscribers", res.Delivered))

	return nil
}

// Stats returns current bus counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		Overwritten:   b.overwritten.Load(),
		Handled:       b.outcomes.handled.Load(),
		Superseded:    b.outcomes.superseded.Load(),
		Cancelled:     b.outcomes.cancelled.Load(),
		Failed:        b.outcomes.failed.Load(),
		Subscriptions: b.subscriptions.Load(),
	}
}

// Ping returns ErrBusClosed once the bus is closed. It fits readiness checks.
func (b *Bus) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.broadcaster.Closed() {
		return ErrBusClosed
	}
	return nil
}

// Close detaches every subscription. Their Err reports ErrBusClosed.
// Later Publish and Subscribe calls fail with ErrBusClosed. Close is idempotent.
func (b *Bus) Close() error {
	if err := b.broadcaster.Close(); err != nil {
		return err
	}
	b.logger.Info("event bus closed")
	return nil
}
