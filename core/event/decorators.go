package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/eventbus/core/logger"
)

// Timeout bounds a single handler invocation. The handler's context is cancelled once
// the timeout elapses; a handler that gives up with the deadline error has it wrapped
// with the configured timeout.
//
// Example:
//
//	handler := event.ApplyDecorators(sendAnalytics, event.Timeout[AdEvent](2*time.Second))
func Timeout[T any](d time.Duration) Decorator[T] {
	return func(next HandlerFunc[T]) HandlerFunc[T] {
		return func(ctx context.Context, v T) error {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			err := next(ctx, v)
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("handler timeout after %s: %w", d, err)
			}
			return err
		}
	}
}

// Logging logs every invocation with its duration at debug level and failures at error level.
// Invocations cancelled because a newer value arrived are logged at debug level.
func Logging[T any](log *slog.Logger) Decorator[T] {
	return func(next HandlerFunc[T]) HandlerFunc[T] {
		return func(ctx context.Context, v T) error {
			start := time.Now()
			err := next(ctx, v)

			attrs := []any{
				logger.EventID(EventID(ctx)),
				logger.Event(EventName(ctx)),
				logger.Subscription(SubscriptionName(ctx)),
				logger.Duration(time.Since(start)),
			}

			switch {
			case err == nil:
				log.DebugContext(ctx, "event handled", attrs...)
			case errors.Is(err, context.Canceled):
				log.DebugContext(ctx, "event handling cancelled", append(attrs, logger.Error(err))...)
			default:
				log.ErrorContext(ctx, "event handling failed", append(attrs, logger.Error(err))...)
			}
			return err
		}
	}
}

// Filter skips values for which keep returns false. Skipped values count as handled.
//
// Example:
//
//	warnings := event.ApplyDecorators(printWarning,
//	    event.Filter(func(r Result) bool { return r.IsWarning }),
//	)
func Filter[T any](keep func(T) bool) Decorator[T] {
	return func(next HandlerFunc[T]) HandlerFunc[T] {
		return func(ctx context.Context, v T) error {
			if !keep(v) {
				return nil
			}
			return next(ctx, v)
		}
	}
}
