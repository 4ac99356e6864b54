package broadcast

import (
	"context"
	"sync"
	"sync/atomic"
)

// Message wraps a broadcast value.
type Message[T any] struct {
	Data T
}

// BroadcastResult describes what a single Broadcast call did.
type BroadcastResult struct {
	// Delivered is the number of subscribers whose mailbox accepted the message.
	Delivered int
	// Evicted is the number of older buffered messages displaced by this one.
	Evicted int
	// Rejected is the number of full DropNewest mailboxes that discarded the message.
	Rejected int
}

// MemoryBroadcaster fans messages out to every attached subscriber.
type MemoryBroadcaster[T any] struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscriber[T]
	nextID atomic.Uint64
	closed bool

	capacity int
	policy   Policy
}

// NewMemoryBroadcaster creates a broadcaster. Without options every subscriber gets a
// single-slot KeepLatest mailbox.
//
// Example:
//
//	b := broadcast.NewMemoryBroadcaster[Event](
//		broadcast.WithDefaultCapacity(16),
//		broadcast.WithDefaultPolicy(broadcast.DropNewest),
//	)
func NewMemoryBroadcaster[T any](opts ...Option) *MemoryBroadcaster[T] {
	cfg := options{capacity: 1, policy: KeepLatest}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &MemoryBroadcaster[T]{
		subs:     make(map[uint64]*Subscriber[T]),
		capacity: cfg.capacity,
		policy:   cfg.policy,
	}
}

// Broadcast hands msg to every live subscriber whose filter accepts it.
// It never waits for subscribers to consume the message.
func (b *MemoryBroadcaster[T]) Broadcast(ctx context.Context, msg Message[T]) (BroadcastResult, error) {
	var res BroadcastResult

	if err := ctx.Err(); err != nil {
		return res, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return res, ErrBroadcasterClosed
	}

	for _, sub := range b.subs {
		if sub.filter != nil && !sub.filter(msg.Data) {
			continue
		}
		accepted, evicted := sub.box.push(msg)
		if !accepted {
			res.Rejected++
			continue
		}
		res.Delivered++
		res.Evicted += evicted
	}

	return res, nil
}

// Subscribe attaches a new subscriber. The subscriber is detached when ctx is cancelled,
// when Close is called on it, or when the broadcaster is closed.
func (b *MemoryBroadcaster[T]) Subscribe(ctx context.Context, opts ...SubscribeOption[T]) (*Subscriber[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := subscribeOptions[T]{capacity: b.capacity, policy: b.policy}
	for _, opt := range opts {
		opt(&cfg)
	}

	sub := &Subscriber[T]{
		id:     b.nextID.Add(1),
		filter: cfg.filter,
		box:    newMailbox[T](cfg.capacity, cfg.policy),
		done:   make(chan struct{}),
	}
	sub.detach = func() { b.remove(sub.id) }

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBroadcasterClosed
	}
	b.subs[sub.id] = sub
	b.mu.Unlock()

	sub.setStop(context.AfterFunc(ctx, func() { _ = sub.Close() }))

	return sub, nil
}

// Len returns the number of attached subscribers.
func (b *MemoryBroadcaster[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Closed reports whether Close has been called.
func (b *MemoryBroadcaster[T]) Closed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}

// Close detaches all subscribers. Subsequent Broadcast and Subscribe calls fail with
// ErrBroadcasterClosed. Close is idempotent.
func (b *MemoryBroadcaster[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[uint64]*Subscriber[T])
	b.mu.Unlock()

	for _, sub := range subs {
		sub.shutdown()
	}
	return nil
}

func (b *MemoryBroadcaster[T]) remove(id uint64) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

// Subscriber receives messages from a MemoryBroadcaster.
type Subscriber[T any] struct {
	id     uint64
	filter func(T) bool
	box    *mailbox[T]

	mu     sync.Mutex
	done   chan struct{}
	once   sync.Once
	detach func()
	stop   func() bool
}

// ID returns the subscriber identifier, unique within its broadcaster.
func (s *Subscriber[T]) ID() uint64 {
	return s.id
}

// Ready is signalled whenever a message may be waiting in the mailbox.
// A signal can be stale; Take reports whether a message was actually there.
func (s *Subscriber[T]) Ready() <-chan struct{} {
	return s.box.ready
}

// Take removes the oldest buffered message without blocking.
func (s *Subscriber[T]) Take() (Message[T], bool) {
	return s.box.take()
}

// Next blocks until a message is available, the subscriber is closed or ctx is done.
func (s *Subscriber[T]) Next(ctx context.Context) (Message[T], error) {
	for {
		if msg, ok := s.box.take(); ok {
			return msg, nil
		}

		select {
		case <-ctx.Done():
			return Message[T]{}, ctx.Err()
		case <-s.done:
			return Message[T]{}, ErrSubscriberClosed
		case <-s.box.ready:
		}
	}
}

// Pending returns the number of buffered messages.
func (s *Subscriber[T]) Pending() int {
	return s.box.len()
}

// Dropped returns how many messages were evicted or rejected by this subscriber's mailbox.
func (s *Subscriber[T]) Dropped() uint64 {
	return s.box.dropped.Load()
}

// Done is closed once the subscriber has been detached.
func (s *Subscriber[T]) Done() <-chan struct{} {
	return s.done
}

// Close detaches the subscriber. It is idempotent and always returns nil.
func (s *Subscriber[T]) Close() error {
	s.once.Do(func() {
		s.release()
		s.detach()
	})
	return nil
}

// shutdown is used by the broadcaster, which has already dropped the subscriber.
func (s *Subscriber[T]) shutdown() {
	s.once.Do(s.release)
}

func (s *Subscriber[T]) release() {
	s.mu.Lock()
	close(s.done)
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// setStop records the context hook, or unregisters it right away when the
// subscriber was already closed.
func (s *Subscriber[T]) setStop(stop func() bool) {
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		stop()
		return
	default:
	}
	s.stop = stop
	s.mu.Unlock()
}
