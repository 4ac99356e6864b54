package event

import (
	"context"
	"fmt"
)

// HandlerFunc processes values of variant T.
// The context is cancelled when a newer matching value supersedes the current one
// or when the subscription ends; long-running handlers should watch ctx.Done().
type HandlerFunc[T any] func(context.Context, T) error

// safeCall runs fn and converts a panic into an error wrapping ErrHandlerPanicked.
func safeCall[T any](ctx context.Context, fn HandlerFunc[T], v T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanicked, r)
		}
	}()
	return fn(ctx, v)
}
