package event

import (
	"sync/atomic"
	"time"
)

// Outcome classifies how a single handler invocation ended.
type Outcome uint8

const (
	// Handled means the handler returned nil.
	Handled Outcome = iota
	// Superseded means a newer matching event cancelled the invocation.
	Superseded
	// Cancelled means the subscription ended while the handler was running.
	Cancelled
	// Failed means the handler returned an error or panicked.
	Failed
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case Handled:
		return "handled"
	case Superseded:
		return "superseded"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Observer receives bus activity, e.g. to export metrics.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	// EventPublished is called once per Publish with the number of subscriptions that
	// received the event and the number of pending events it overwrote.
	EventPublished(name string, delivered, overwritten int)

	// HandlerFinished is called after every handler invocation.
	HandlerFinished(subscription, name string, outcome Outcome, d time.Duration)
}

type noopObserver struct{}

func (noopObserver) EventPublished(string, int, int) {}
func (noopObserver) HandlerFinished(string, string, Outcome, time.Duration) {}

// Stats is a point-in-time snapshot of bus counters.
type Stats struct {
	Published     int64
	Delivered     int64
	Overwritten   int64
	Handled       int64
	Superseded    int64
	Cancelled     int64
	Failed        int64
	Subscriptions int64
}

// SubscriptionStats is a point-in-time snapshot of a single subscription.
type SubscriptionStats struct {
	Handled     int64
	Superseded  int64
	Cancelled   int64
	Failed      int64
	Overwritten uint64
}

type outcomeCounters struct {
	handled    atomic.Int64
	superseded atomic.Int64
	cancelled  atomic.Int64
	failed     atomic.Int64
}

func (c *outcomeCounters) add(o Outcome) {
	switch o {
	case Handled:
		c.handled.Add(1)
	case Superseded:
		c.superseded.Add(1)
	case Cancelled:
		c.cancelled.Add(1)
	case Failed:
		c.failed.Add(1)
	}
}
