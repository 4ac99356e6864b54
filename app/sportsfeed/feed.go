package sportsfeed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/eventbus/core/event"
	"github.com/dmitrymomot/eventbus/core/logger"
)

// DelayFunc returns the pause before the next publication.
type DelayFunc func() time.Duration

// RandomDelay returns a DelayFunc drawing uniformly from [min, max).
// It returns min when max <= min.
func RandomDelay(min, max time.Duration) DelayFunc {
	return func() time.Duration {
		if max <= min {
			return min
		}
		return min + rand.N(max-min)
	}
}

// Feed publishes sample sequences on a bus with randomized pacing.
type Feed struct {
	bus      *event.Bus
	logger   *slog.Logger
	delay    DelayFunc
	adFactor int
}

// FeedOption configures a Feed.
type FeedOption func(*Feed)

// WithDelay sets the pacing source. Defaults to RandomDelay(500ms, 2s).
func WithDelay(fn DelayFunc) FeedOption {
	return func(f *Feed) {
		if fn != nil {
			f.delay = fn
		}
	}
}

// WithAdDelayFactor slows the ad stream down by factor relative to the result stream.
// Defaults to 2.
func WithAdDelayFactor(factor int) FeedOption {
	return func(f *Feed) {
		if factor >= 1 {
			f.adFactor = factor
		}
	}
}

// WithFeedLogger sets the logger used for publication progress.
func WithFeedLogger(l *slog.Logger) FeedOption {
	return func(f *Feed) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFeed creates a feed publishing on bus.
func NewFeed(bus *event.Bus, opts ...FeedOption) *Feed {
	f := &Feed{
		bus:      bus,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		delay:    RandomDelay(500*time.Millisecond, 2*time.Second),
		adFactor: 2,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// PublishResults publishes the legacy results one by one, pausing before each.
func (f *Feed) PublishResults(ctx context.Context, results []Result) error {
	return publishEach(ctx, f, "results", results, 1)
}

// PublishSportEvents publishes the tagged events and, concurrently, the ad stream paced
// by the ad delay factor. It returns when both streams are done or the first one fails.
func (f *Feed) PublishSportEvents(ctx context.Context, events []SportEvent, ads []AdEvent) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return publishEach(ctx, f, "ads", ads, f.adFactor)
	})
	g.Go(func() error {
		return publishEach(ctx, f, "sport_events", events, 1)
	})
	return g.Wait()
}

func publishEach[T any](ctx context.Context, f *Feed, stream string, items []T, factor int) error {
	for i, item := range items {
		if err := sleep(ctx, f.delay()*time.Duration(factor)); err != nil {
			return err
		}
		if err := f.bus.Publish(ctx, item); err != nil {
			return fmt.Errorf("publish %s #%d: %w", stream, i, err)
		}
	}
	f.logger.DebugContext(ctx, "stream published",
		logger.Component("feed"),
		slog.String("stream", stream),
		logger.Count("events", len(items)))
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
