package event_test

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dmitrymomot/eventbus/core/event"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder collects handled values in arrival order.
type recorder[T any] struct {
	mu     sync.Mutex
	values []T
}

func (r *recorder[T]) handle(_ context.Context, v T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
	return nil
}

func (r *recorder[T]) snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

func (r *recorder[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fakeObserver struct {
	mu        sync.Mutex
	published map[string]int
	outcomes  map[event.Outcome]int
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{
		published: make(map[string]int),
		outcomes:  make(map[event.Outcome]int),
	}
}

func (o *fakeObserver) EventPublished(name string, delivered, overwritten int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.published[name]++
}

func (o *fakeObserver) HandlerFinished(subscription, name string, outcome event.Outcome, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes[outcome]++
}

func (o *fakeObserver) count(outcome event.Outcome) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.outcomes[outcome]
}

func newTestBus(t *testing.T, opts ...event.BusOption) *event.Bus {
	t.Helper()
	bus := event.NewBus(opts...)
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

// publishAndWait publishes v and waits until cond holds, so that keep-latest never skips it.
func publishAndWait(t *testing.T, bus *event.Bus, v any, cond func() bool) {
	t.Helper()
	require.NoError(t, bus.Publish(context.Background(), v))
	require.Eventually(t, cond, time.Second, time.Millisecond)
}

// ============================================================================
// Publish Tests
// ============================================================================

func TestPublishWithoutSubscribers(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	require.NoError(t, bus.Publish(context.Background(), scoreEvent{Key: 1}))

	stats := bus.Stats()
	assert.Equal(t, int64(1), stats.Published)
	assert.Equal(t, int64(0), stats.Delivered)
}

func TestPublishErrors(t *testing.T) {
	t.Parallel()

	t.Run("nil payload", func(t *testing.T) {
		t.Parallel()
		bus := newTestBus(t)
		assert.ErrorIs(t, bus.Publish(context.Background(), nil), event.ErrNilPayload)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		bus := newTestBus(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, bus.Publish(ctx, scoreEvent{}), context.Canceled)
	})

	t.Run("closed bus", func(t *testing.T) {
		t.Parallel()
		bus := event.NewBus()
		require.NoError(t, bus.Close())
		assert.ErrorIs(t, bus.Publish(context.Background(), scoreEvent{}), event.ErrBusClosed)
	})
}

// ============================================================================
// Routing Tests
// ============================================================================

func TestSubscriptionsReceiveOnlyTheirVariant(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scores := &recorder[scoreEvent]{}
	failures := &recorder[failureEvent]{}
	markers := &recorder[markerEvent]{}

	_, err := event.Subscribe(ctx, bus, scores.handle)
	require.NoError(t, err)
	_, err = event.Subscribe(ctx, bus, failures.handle)
	require.NoError(t, err)
	_, err = event.Subscribe(ctx, bus, markers.handle)
	require.NoError(t, err)

	publishAndWait(t, bus, scoreEvent{Key: 1, Name: "Football"}, func() bool { return scores.len() == 1 })
	publishAndWait(t, bus, failureEvent{Code: 10}, func() bool { return failures.len() == 1 })
	publishAndWait(t, bus, scoreEvent{Key: 2, Name: "Rugby"}, func() bool { return scores.len() == 2 })
	publishAndWait(t, bus, failureEvent{Code: 20}, func() bool { return failures.len() == 2 })
	publishAndWait(t, bus, scoreEvent{Key: 3, Name: "Tennis"}, func() bool { return scores.len() == 3 })

	assert.Equal(t, []scoreEvent{{1, "Football"}, {2, "Rugby"}, {3, "Tennis"}}, scores.snapshot())
	assert.Equal(t, []failureEvent{{10}, {20}}, failures.snapshot())
	assert.Empty(t, markers.snapshot())
}

func TestPointerIsDistinctVariant(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	values := &recorder[pointerEvent]{}
	pointers := &recorder[*pointerEvent]{}

	_, err := event.Subscribe(ctx, bus, values.handle)
	require.NoError(t, err)
	_, err = event.Subscribe(ctx, bus, pointers.handle)
	require.NoError(t, err)

	publishAndWait(t, bus, &pointerEvent{Value: "p"}, func() bool { return pointers.len() == 1 })
	publishAndWait(t, bus, pointerEvent{Value: "v"}, func() bool { return values.len() == 1 })

	assert.Equal(t, "p", pointers.snapshot()[0].Value)
	assert.Equal(t, "v", values.snapshot()[0].Value)
}

func TestInterfaceSubscriptionReceivesFamily(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	family := &recorder[tagged]{}
	_, err := event.Subscribe(ctx, bus, family.handle)
	require.NoError(t, err)

	publishAndWait(t, bus, taggedA{}, func() bool { return family.len() == 1 })
	require.NoError(t, bus.Publish(ctx, scoreEvent{}))
	publishAndWait(t, bus, taggedB{}, func() bool { return family.len() == 2 })

	got := family.snapshot()
	assert.Equal(t, "a", got[0].tag())
	assert.Equal(t, "b", got[1].tag())
}

func TestNoReplayForLateSubscriber(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Publish(ctx, markerEvent{}))
	require.NoError(t, bus.Publish(ctx, markerEvent{}))

	markers := &recorder[markerEvent]{}
	_, err := event.Subscribe(ctx, bus, markers.handle)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, markers.len())

	publishAndWait(t, bus, markerEvent{}, func() bool { return markers.len() == 1 })
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, markers.len())
}

func TestSinglePublisherOrder(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder[primitiveEvent]{}
	_, err := event.Subscribe(ctx, bus, rec.handle)
	require.NoError(t, err)

	const n = 200
	for i := 1; i <= n; i++ {
		require.NoError(t, bus.Publish(ctx, primitiveEvent(i)))
	}

	require.Eventually(t, func() bool {
		got := rec.snapshot()
		return len(got) > 0 && got[len(got)-1] == n
	}, time.Second, time.Millisecond)

	got := rec.snapshot()
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1], got[i], "values must arrive in publish order")
	}
}

// ============================================================================
// Keep-Latest Tests
// ============================================================================

func TestSlowHandlerIsSupersededByNewerValue(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan primitiveEvent, 4)
	var (
		mu      sync.Mutex
		handled []primitiveEvent
	)

	sub, err := event.Subscribe(ctx, bus, func(ctx context.Context, v primitiveEvent) error {
		started <- v
		if v == 1 {
			<-ctx.Done()
			return ctx.Err()
		}
		mu.Lock()
		handled = append(handled, v)
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, primitiveEvent(1)))
	require.Equal(t, primitiveEvent(1), <-started)

	require.NoError(t, bus.Publish(ctx, primitiveEvent(2)))
	require.Equal(t, primitiveEvent(2), <-started)

	require.Eventually(t, func() bool { return sub.Stats().Handled == 1 }, time.Second, time.Millisecond)

	stats := sub.Stats()
	assert.Equal(t, int64(1), stats.Superseded)
	assert.Equal(t, int64(0), stats.Failed)

	mu.Lock()
	assert.Equal(t, []primitiveEvent{2}, handled)
	mu.Unlock()
}

func TestPendingValueIsOverwritten(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	rec := &recorder[primitiveEvent]{}

	sub, err := event.Subscribe(ctx, bus, func(ctx context.Context, v primitiveEvent) error {
		if v == 1 {
			started <- struct{}{}
			<-release
		}
		return rec.handle(ctx, v)
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, primitiveEvent(1)))
	<-started

	// The handler ignores cancellation, so later values pile up in the single slot.
	for i := 2; i <= 5; i++ {
		require.NoError(t, bus.Publish(ctx, primitiveEvent(i)))
	}
	close(release)

	require.Eventually(t, func() bool {
		got := rec.snapshot()
		return len(got) > 0 && got[len(got)-1] == 5
	}, time.Second, time.Millisecond)

	got := rec.snapshot()
	assert.Equal(t, primitiveEvent(1), got[0])
	assert.Less(t, len(got), 5, "intermediate values are skipped")
	assert.Positive(t, sub.Stats().Overwritten)
}

func TestNonMatchingValuesDoNotEvictPending(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	rec := &recorder[primitiveEvent]{}

	_, err := event.Subscribe(ctx, bus, func(ctx context.Context, v primitiveEvent) error {
		if v == 1 {
			started <- struct{}{}
			<-release
		}
		return rec.handle(ctx, v)
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, primitiveEvent(1)))
	<-started
	require.NoError(t, bus.Publish(ctx, primitiveEvent(2)))
	for range 10 {
		require.NoError(t, bus.Publish(ctx, scoreEvent{}))
	}
	close(release)

	require.Eventually(t, func() bool { return rec.len() == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []primitiveEvent{1, 2}, rec.snapshot())
}

// ============================================================================
// Failure Isolation Tests
// ============================================================================

func TestHandlerFailuresAreIsolated(t *testing.T) {
	t.Parallel()

	obs := newFakeObserver()
	bus := newTestBus(t, event.WithObserver(obs))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	failing, err := event.Subscribe(ctx, bus, func(ctx context.Context, v primitiveEvent) error {
		switch v {
		case 1:
			panic("boom")
		case 2:
			return assert.AnError
		}
		return nil
	})
	require.NoError(t, err)

	healthy := &recorder[primitiveEvent]{}
	_, err = event.Subscribe(ctx, bus, healthy.handle)
	require.NoError(t, err)

	settled := func(failed, handled int) func() bool {
		return func() bool {
			return obs.count(event.Failed) == failed && obs.count(event.Handled) == handled
		}
	}
	publishAndWait(t, bus, primitiveEvent(1), settled(1, 1))
	publishAndWait(t, bus, primitiveEvent(2), settled(2, 2))
	publishAndWait(t, bus, primitiveEvent(3), settled(2, 4))

	assert.Equal(t, []primitiveEvent{1, 2, 3}, healthy.snapshot())
	assert.NoError(t, failing.Err(), "subscription keeps running after failures")
	assert.Equal(t, int64(1), failing.Stats().Handled)
	assert.Equal(t, int64(2), bus.Stats().Failed)
}

// ============================================================================
// Lifecycle Tests
// ============================================================================

func TestSubscribeErrors(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, scoreEvent) error { return nil }

	t.Run("nil bus", func(t *testing.T) {
		t.Parallel()
		_, err := event.Subscribe(context.Background(), nil, noop)
		assert.ErrorIs(t, err, event.ErrNilBus)
	})

	t.Run("nil handler", func(t *testing.T) {
		t.Parallel()
		_, err := event.Subscribe[scoreEvent](context.Background(), newTestBus(t), nil)
		assert.ErrorIs(t, err, event.ErrNilHandler)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := event.Subscribe(ctx, newTestBus(t), noop)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("closed bus", func(t *testing.T) {
		t.Parallel()
		bus := event.NewBus()
		require.NoError(t, bus.Close())
		_, err := event.Subscribe(context.Background(), bus, noop)
		assert.ErrorIs(t, err, event.ErrBusClosed)
	})
}

func TestSubscriptionStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())

	rec := &recorder[scoreEvent]{}
	sub, err := event.Subscribe(ctx, bus, rec.handle, event.WithSubscriptionName("scores"))
	require.NoError(t, err)
	assert.Equal(t, "scores", sub.Name())
	assert.NotEmpty(t, sub.ID())
	assert.Equal(t, int64(1), bus.Stats().Subscriptions)

	cancel()
	<-sub.Done()

	assert.ErrorIs(t, sub.Err(), context.Canceled)
	assert.Equal(t, int64(0), bus.Stats().Subscriptions)

	require.NoError(t, bus.Publish(context.Background(), scoreEvent{Key: 1}))
	assert.Equal(t, int64(0), bus.Stats().Delivered)
	assert.Zero(t, rec.len())
}

func TestPing(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	require.NoError(t, bus.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, bus.Ping(ctx), context.Canceled)

	require.NoError(t, bus.Close())
	assert.ErrorIs(t, bus.Ping(context.Background()), event.ErrBusClosed)
}

func TestSubscriptionClose(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	sub, err := event.Subscribe(context.Background(), bus, func(context.Context, scoreEvent) error { return nil })
	require.NoError(t, err)
	assert.NoError(t, sub.Err())

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
	assert.ErrorIs(t, sub.Err(), context.Canceled)
}

func TestDefaultSubscriptionName(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	sub, err := event.Subscribe(context.Background(), bus, func(context.Context, *pointerEvent) error { return nil })
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, "pointerEvent", sub.Name())
}

func TestBusCloseStopsSubscriptions(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	sub, err := event.Subscribe(context.Background(), bus, func(context.Context, scoreEvent) error { return nil })
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription did not stop after bus close")
	}
	assert.ErrorIs(t, sub.Err(), event.ErrBusClosed)
}

func TestBusCloseCancelsRunningHandler(t *testing.T) {
	t.Parallel()

	obs := newFakeObserver()
	bus := event.NewBus(event.WithObserver(obs))

	started := make(chan struct{})
	sub, err := event.Subscribe(context.Background(), bus, func(ctx context.Context, _ scoreEvent) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), scoreEvent{Key: 1}))
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("handler did not start")
	}

	require.NoError(t, bus.Close())

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("running handler was not cancelled by bus close")
	}
	assert.ErrorIs(t, sub.Err(), event.ErrBusClosed)
	assert.Equal(t, 1, obs.count(event.Cancelled))
	assert.Equal(t, int64(1), sub.Stats().Cancelled)
}

func TestListen(t *testing.T) {
	t.Parallel()

	t.Run("returns nil on cancel", func(t *testing.T) {
		t.Parallel()
		bus := newTestBus(t)
		ctx, cancel := context.WithCancel(context.Background())

		rec := &recorder[markerEvent]{}
		errc := make(chan error, 1)
		go func() { errc <- event.Listen(ctx, bus, rec.handle) }()

		require.Eventually(t, func() bool { return bus.Stats().Subscriptions == 1 }, time.Second, time.Millisecond)
		publishAndWait(t, bus, markerEvent{}, func() bool { return rec.len() == 1 })

		cancel()
		assert.NoError(t, <-errc)
	})

	t.Run("returns ErrBusClosed when bus closes", func(t *testing.T) {
		t.Parallel()
		bus := event.NewBus()

		errc := make(chan error, 1)
		go func() {
			errc <- event.Listen(context.Background(), bus, func(context.Context, markerEvent) error { return nil })
		}()

		require.Eventually(t, func() bool { return bus.Stats().Subscriptions == 1 }, time.Second, time.Millisecond)
		require.NoError(t, bus.Close())
		assert.ErrorIs(t, <-errc, event.ErrBusClosed)
	})

	t.Run("returns registration error", func(t *testing.T) {
		t.Parallel()
		err := event.Listen[markerEvent](context.Background(), newTestBus(t), nil)
		assert.ErrorIs(t, err, event.ErrNilHandler)
	})
}

// ============================================================================
// Context Metadata Tests
// ============================================================================

func TestHandlerContextMetadata(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type seen struct {
		id, name, subscription string
		createdAt, startedAt   time.Time
	}
	got := make(chan seen, 1)

	_, err := event.Subscribe(ctx, bus, func(ctx context.Context, v failureEvent) error {
		got <- seen{
			id:           event.EventID(ctx),
			name:         event.EventName(ctx),
			subscription: event.SubscriptionName(ctx),
			createdAt:    event.EventTime(ctx),
			startedAt:    event.StartProcessingTime(ctx),
		}
		return nil
	}, event.WithSubscriptionName("errors"))
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, failureEvent{Code: 20}))

	m := <-got
	assert.NotEmpty(t, m.id)
	assert.Equal(t, "failureEvent", m.name)
	assert.Equal(t, "errors", m.subscription)
	assert.False(t, m.createdAt.IsZero())
	assert.False(t, m.startedAt.Before(m.createdAt))
}

func TestMetadataOutsideHandler(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, event.EventID(ctx))
	assert.Empty(t, event.EventName(ctx))
	assert.Empty(t, event.SubscriptionName(ctx))
	assert.True(t, event.EventTime(ctx).IsZero())
	assert.True(t, event.StartProcessingTime(ctx).IsZero())
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "handled", event.Handled.String())
	assert.Equal(t, "superseded", event.Superseded.String())
	assert.Equal(t, "cancelled", event.Cancelled.String())
	assert.Equal(t, "failed", event.Failed.String())
	assert.Equal(t, "unknown", event.Outcome(42).String())
}

func TestSubscriptionIdle(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release := make(chan struct{})
	sub, err := event.Subscribe(ctx, bus, func(context.Context, markerEvent) error {
		<-release
		return nil
	})
	require.NoError(t, err)
	assert.True(t, sub.Idle())

	require.NoError(t, bus.Publish(ctx, markerEvent{}))
	assert.False(t, sub.Idle(), "published value is pending or in flight")

	close(release)
	require.Eventually(t, sub.Idle, time.Second, time.Millisecond)
	assert.Equal(t, int64(1), sub.Stats().Handled)
}
