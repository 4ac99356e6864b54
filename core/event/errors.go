package event

import "errors"

var (
	// ErrBusClosed is returned when publishing to or subscribing on a closed bus.
	ErrBusClosed = errors.New("event bus is closed")

	// ErrNilPayload is returned when publishing a nil value.
	ErrNilPayload = errors.New("event payload is nil")

	// ErrNilHandler is returned when subscribing with a nil handler.
	ErrNilHandler = errors.New("event handler is nil")

	// ErrNilBus is returned when subscribing on a nil bus.
	ErrNilBus = errors.New("event bus is nil")

	// ErrHandlerPanicked wraps a recovered handler panic.
	ErrHandlerPanicked = errors.New("event handler panicked")
)
