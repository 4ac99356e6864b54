package event

import (
	"context"
	"time"
)

type metaCtx struct{}

// meta is attached once per handler invocation.
type meta struct {
	id           string
	name         string
	createdAt    time.Time
	startedAt    time.Time
	subscription string
}

func withMeta(ctx context.Context, evt Event, subscription string) context.Context {
	return context.WithValue(ctx, metaCtx{}, meta{
		id:           evt.ID,
		name:         evt.Name,
		createdAt:    evt.CreatedAt,
		startedAt:    time.Now(),
		subscription: subscription,
	})
}

func metaFrom(ctx context.Context) meta {
	m, _ := ctx.Value(metaCtx{}).(meta)
	return m
}

// EventID returns the ID of the event being handled, or "" outside a handler.
func EventID(ctx context.Context) string {
	return metaFrom(ctx).id
}

// EventName returns the name of the event being handled, or "" outside a handler.
func EventName(ctx context.Context) string {
	return metaFrom(ctx).name
}

// EventTime returns when the handled event was published, or the zero time.
func EventTime(ctx context.Context) time.Time {
	return metaFrom(ctx).createdAt
}

// StartProcessingTime returns when the current handler invocation started, or the zero time.
func StartProcessingTime(ctx context.Context) time.Time {
	return metaFrom(ctx).startedAt
}

// SubscriptionName returns the name of the subscription running the handler.
func SubscriptionName(ctx context.Context) string {
	return metaFrom(ctx).subscription
}
