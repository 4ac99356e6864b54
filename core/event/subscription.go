package event

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/eventbus/core/logger"
	"github.com/dmitrymomot/eventbus/pkg/broadcast"
)

// Subscription is a live registration of a typed handler on a Bus.
type Subscription struct {
	id   string
	name string
	bus  *Bus
	sub  *broadcast.Subscriber[Event]

	cancel context.CancelFunc
	done   chan struct{}
	err    atomic.Pointer[error]
	busy   atomic.Bool

	outcomes outcomeCounters
}

type subscriptionOptions struct {
	name string
}

// SubscriptionOption configures a Subscription.
type SubscriptionOption func(*subscriptionOptions)

// WithSubscriptionName names the subscription in logs, metrics and handler context.
// Defaults to the bare name of the subscribed type.
func WithSubscriptionName(name string) SubscriptionOption {
	return func(o *subscriptionOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// Subscribe registers fn for every value of variant T published on bus after this call.
// Values of other types are ignored silently. The subscription runs in its own goroutine
// until ctx is cancelled, Cancel is called or the bus is closed.
//
// At most one value is handled at a time. When a newer matching value arrives while fn
// is still running, fn's context is cancelled and fn is restarted with the newest value;
// values in between may be skipped.
//
// Subscribe fails when ctx is already done or the bus is closed.
//
// Example:
//
//	sub, err := event.Subscribe(ctx, bus, func(ctx context.Context, e ResultError) error {
//	    fmt.Println("error", e.ErrorKey, e.ErrorType)
//	    return nil
//	})
//	if err != nil {
//	    return err
//	}
//	defer sub.Close()
func Subscribe[T any](ctx context.Context, bus *Bus, fn HandlerFunc[T], opts ...SubscriptionOption) (*Subscription, error) {
	if bus == nil {
		return nil, ErrNilBus
	}
	if fn == nil {
		return nil, ErrNilHandler
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	want := reflect.TypeFor[T]()
	cfg := subscriptionOptions{name: typeName(want)}
	for _, opt := range opts {
		opt(&cfg)
	}

	sctx, cancel := context.WithCancel(ctx)
	sub, err := bus.broadcaster.Subscribe(sctx,
		broadcast.WithFilter(func(e Event) bool { return matches(e.Type, want) }),
	)
	if err != nil {
		cancel()
		if errors.Is(err, broadcast.ErrBroadcasterClosed) {
			return nil, ErrBusClosed
		}
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	s := &Subscription{
		id:     uuid.New().String(),
		name:   cfg.name,
		bus:    bus,
		sub:    sub,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	handle := func(ctx context.Context, evt Event) error {
		v, ok := evt.Payload.(T)
		if !ok {
			return nil
		}
		return safeCall(ctx, fn, v)
	}

	bus.subscriptions.Add(1)
	bus.logger.DebugContext(ctx, "subscription started",
		logger.Subscription(s.name),
		logger.ID("subscription_id", s.id))

	go s.run(sctx, handle)

	return s, nil
}

// Listen subscribes fn like Subscribe and blocks until ctx is cancelled.
// It returns nil after cancellation and an error when registration fails or the bus is closed.
//
// Example:
//
//	g.Go(func() error {
//	    return event.Listen(ctx, bus, printAd)
//	})
func Listen[T any](ctx context.Context, bus *Bus, fn HandlerFunc[T], opts ...SubscriptionOption) error {
	s, err := Subscribe(ctx, bus, fn, opts...)
	if err != nil {
		return err
	}

	<-s.Done()

	err = s.Err()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Name returns the subscription name.
func (s *Subscription) Name() string {
	return s.name
}

// Cancel stops the subscription without waiting for it to finish.
func (s *Subscription) Cancel() {
	s.cancel()
}

// Close stops the subscription and waits until its goroutine has exited.
func (s *Subscription) Close() error {
	s.cancel()
	<-s.done
	return nil
}

// Done is closed once the subscription has stopped and released its resources.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err returns nil while the subscription runs. Afterwards it returns the context error
// that stopped it, or ErrBusClosed.
func (s *Subscription) Err() error {
	if p := s.err.Load(); p != nil {
		return *p
	}
	return nil
}

// Idle reports whether the subscription has no pending value and no running handler.
// Values published after Idle returns are not accounted for.
func (s *Subscription) Idle() bool {
	return !s.busy.Load() && s.sub.Pending() == 0
}

// Stats returns the subscription's counters.
func (s *Subscription) Stats() SubscriptionStats {
	return SubscriptionStats{
		Handled:     s.outcomes.handled.Load(),
		Superseded:  s.outcomes.superseded.Load(),
		Cancelled:   s.outcomes.cancelled.Load(),
		Failed:      s.outcomes.failed.Load(),
		Overwritten: s.sub.Dropped(),
	}
}

func (s *Subscription) run(ctx context.Context, handle func(context.Context, Event) error) {
	defer s.finish(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.sub.Done():
			return
		case <-s.sub.Ready():
		}

		// Marked busy before Take so Idle never observes an empty mailbox with work in flight.
		s.busy.Store(true)
		msg, ok := s.sub.Take()
		if ok {
			s.process(ctx, msg.Data, handle)
		}
		s.busy.Store(false)
	}
}

// process runs handle for evt and restarts it with the newest pending event whenever one
// arrives before the current invocation returns.
func (s *Subscription) process(ctx context.Context, evt Event, handle func(context.Context, Event) error) {
	for {
		if ctx.Err() != nil || s.detached() {
			return
		}

		hctx, cancel := context.WithCancel(withMeta(ctx, evt, s.name))
		finished := make(chan error, 1)
		start := time.Now()

		go func() {
			finished <- handle(hctx, evt)
		}()

		var (
			err     error
			next    Event
			newer   bool
			stopped bool
		)
	wait:
		for {
			select {
			case err = <-finished:
				break wait
			case <-s.sub.Done():
				stopped = true
				cancel()
				err = <-finished
				break wait
			case <-s.sub.Ready():
				msg, ok := s.sub.Take()
				if !ok {
					continue
				}
				next, newer = msg.Data, true
				cancel()
				err = <-finished
				break wait
			}
		}
		cancel()

		s.record(ctx, evt, classify(ctx, err, newer, stopped), time.Since(start), err)

		if !newer {
			return
		}
		evt = next
	}
}

func classify(ctx context.Context, err error, superseded, stopped bool) Outcome {
	switch {
	case err == nil:
		return Handled
	case errors.Is(err, context.Canceled) && superseded:
		return Superseded
	case errors.Is(err, context.Canceled) && (stopped || ctx.Err() != nil):
		return Cancelled
	default:
		return Failed
	}
}

func (s *Subscription) record(ctx context.Context, evt Event, outcome Outcome, d time.Duration, err error) {
	s.outcomes.add(outcome)
	s.bus.outcomes.add(outcome)
	s.bus.observer.HandlerFinished(s.name, evt.Name, outcome, d)

	switch outcome {
	case Failed:
		s.bus.logger.ErrorContext(ctx, "event handler failed",
			logger.Subscription(s.name),
			logger.EventID(evt.ID),
			logger.Event(evt.Name),
			logger.Duration(d),
			logger.Error(err))
	case Superseded:
		s.bus.logger.DebugContext(ctx, "event handler superseded by newer event",
			logger.Subscription(s.name),
			logger.EventID(evt.ID),
			logger.Event(evt.Name))
	}
}

// detached reports whether the underlying broadcaster subscriber was closed, e.g. by Bus.Close.
func (s *Subscription) detached() bool {
	select {
	case <-s.sub.Done():
		return true
	default:
		return false
	}
}

func (s *Subscription) finish(ctx context.Context) {
	// Bus.Close detaches the subscriber without cancelling ctx.
	err := ctx.Err()
	if err == nil {
		err = ErrBusClosed
	}
	s.err.Store(&err)

	_ = s.sub.Close()
	s.cancel()

	s.bus.subscriptions.Add(-1)
	s.bus.logger.Debug("subscription stopped",
		logger.Subscription(s.name),
		logger.ID("subscription_id", s.id),
		logger.Error(err))

	close(s.done)
}
