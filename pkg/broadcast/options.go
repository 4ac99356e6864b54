package broadcast

type options struct {
	capacity int
	policy   Policy
}

// Option configures a MemoryBroadcaster.
type Option func(*options)

// WithDefaultCapacity sets the mailbox capacity given to new subscribers.
// Values below 1 are ignored.
func WithDefaultCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithDefaultPolicy sets the overflow policy given to new subscribers.
func WithDefaultPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

type subscribeOptions[T any] struct {
	filter   func(T) bool
	capacity int
	policy   Policy
}

// SubscribeOption configures a single subscriber.
type SubscribeOption[T any] func(*subscribeOptions[T])

// WithFilter restricts the subscriber to messages accepted by fn.
// Rejected messages never enter the mailbox, so they cannot evict accepted ones.
func WithFilter[T any](fn func(T) bool) SubscribeOption[T] {
	return func(o *subscribeOptions[T]) {
		o.filter = fn
	}
}

// WithCapacity overrides the mailbox capacity for this subscriber.
func WithCapacity[T any](n int) SubscribeOption[T] {
	return func(o *subscribeOptions[T]) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithPolicy overrides the overflow policy for this subscriber.
func WithPolicy[T any](p Policy) SubscribeOption[T] {
	return func(o *subscribeOptions[T]) {
		o.policy = p
	}
}
