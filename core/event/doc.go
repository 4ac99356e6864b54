// Package event provides an in-process, type-filtered publish/subscribe bus.
//
// A single Bus accepts values of any type. Every published value is boxed into an Event
// that records its exact runtime type, and is handed to each live subscription whose
// variant matches that type. Unrelated event families can share one bus.
//
// # Core Components
//
// Bus owns the fan-out. Publish never waits for handlers: it places the event into the
// mailbox of every matching subscription and returns.
//
// Subscription ties a variant T to a HandlerFunc[T] and runs in its own goroutine until
// its context is cancelled. Subscribe returns a handle; Listen blocks until cancellation.
//
// Decorator[T] wraps handlers for cross-cutting concerns (Logging, Timeout, Filter).
//
// # Basic Usage
//
//	bus := event.NewBus(event.WithLogger(log))
//	defer bus.Close()
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	_, err := event.Subscribe(ctx, bus, func(ctx context.Context, r ResultSuccess) error {
//		fmt.Println(r.SportKey, r.SportType)
//		return nil
//	})
//	if err != nil {
//		return err
//	}
//
//	bus.Publish(ctx, ResultSuccess{SportKey: 1, SportType: "Football"})
//	bus.Publish(ctx, ResultError{ErrorKey: 10, ErrorType: "Network error"}) // ignored by the subscription above
//
// # Type Matching
//
// A subscription for a concrete type T receives values whose dynamic type is exactly T;
// T and *T are different variants. A subscription for an interface type receives every
// value implementing it, which lets a consumer take a whole closed family at once.
//
// # Delivery Semantics
//
//   - Live only: a subscription receives values published after Subscribe returned.
//   - At most once: a value is never handed to the same subscription twice.
//   - Per-publisher order: values published sequentially by one goroutine are never
//     observed out of order by any subscription.
//   - Keep latest: every subscription holds at most one pending value. A newer matching
//     value overwrites the pending one and cancels the context of the running handler,
//     which is then restarted with the newest value. Slow handlers skip values.
//
// # Errors
//
// Handler errors and panics stay inside their subscription: they are logged, counted in
// Stats and reported to the Observer, and the subscription keeps running. Non-matching
// values and skipped values are never errors.
//
// # Context Metadata
//
// Handlers can read the event's metadata from their context:
//
//	func(ctx context.Context, r ResultSuccess) error {
//		log.InfoContext(ctx, "result",
//			"event_id", event.EventID(ctx),
//			"published_at", event.EventTime(ctx),
//			"subscription", event.SubscriptionName(ctx))
//		return nil
//	}
//
// # Graceful Shutdown with errgroup
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(func() error { return event.Listen(ctx, bus, printAd) })
//	g.Go(func() error { return feed.Run(ctx) })
//	err := g.Wait()
package event
