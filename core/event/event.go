package event

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope every published value travels in.
// Type carries the exact runtime type of Payload and is what subscriptions filter on.
type Event struct {
	ID        string       `json:"id"`         // Unique identifier for the event
	Name      string       `json:"name"`       // Bare type name of the payload (e.g., "ResultSuccess")
	Type      reflect.Type `json:"-"`          // Exact payload type
	Payload   any          `json:"payload"`    // The published value
	CreatedAt time.Time    `json:"created_at"` // When the event was published
}

// NewEvent boxes payload into an Event with a fresh ID and timestamp.
//
// Example:
//
//	evt := event.NewEvent(ResultError{ErrorKey: 10, ErrorType: "Network error"})
//	// evt.Name == "ResultError"
//	// evt.Type == reflect.TypeOf(ResultError{})
func NewEvent(payload any) Event {
	t := reflect.TypeOf(payload)
	return Event{
		ID:        uuid.New().String(),
		Name:      typeName(t),
		Type:      t,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

// Is reports whether the event belongs to variant T.
// For concrete types this is exact type identity, so T and *T are different variants.
// For interface types it reports whether the payload implements T.
func Is[T any](e Event) bool {
	return matches(e.Type, reflect.TypeFor[T]())
}

// As returns the payload as T when the event belongs to variant T.
func As[T any](e Event) (T, bool) {
	var zero T
	if !Is[T](e) {
		return zero, false
	}
	v, ok := e.Payload.(T)
	return v, ok
}

func matches(got, want reflect.Type) bool {
	if got == nil {
		return false
	}
	if want.Kind() == reflect.Interface {
		return got.Implements(want)
	}
	return got == want
}
