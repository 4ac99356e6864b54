// Package broadcast provides a generic in-memory fan-out primitive with bounded,
// per-subscriber mailboxes.
//
// A publisher never waits for subscribers. Every subscriber owns a small mailbox and an
// overflow policy that decides what happens when the subscriber falls behind:
//
//   - KeepLatest (default): the oldest buffered message is evicted to admit the newest one.
//     With the default capacity of 1 the mailbox is a single slot that is always overwritten.
//   - DropNewest: the incoming message is discarded while the mailbox is full.
//
// # Usage
//
//	b := broadcast.NewMemoryBroadcaster[string]()
//	defer b.Close()
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	sub, err := b.Subscribe(ctx,
//		broadcast.WithFilter(func(s string) bool { return s != "" }),
//	)
//	if err != nil {
//		return err
//	}
//
//	go func() {
//		for {
//			msg, err := sub.Next(ctx)
//			if err != nil {
//				return
//			}
//			fmt.Println(msg.Data)
//		}
//	}()
//
//	b.Broadcast(ctx, broadcast.Message[string]{Data: "Hello, World!"})
//
// # Lifecycle
//
// Subscribers are detached automatically when the context passed to Subscribe is
// cancelled. Subscribing with an already cancelled context fails with the context error.
// Subscribers only see messages broadcast after they were attached; there is no history.
//
// # Ordering
//
// Messages from a single goroutine calling Broadcast sequentially reach every subscriber
// in the order they were sent (minus evicted ones). Concurrent publishers are interleaved
// in whatever order their calls acquire the mailbox.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use.
package broadcast
