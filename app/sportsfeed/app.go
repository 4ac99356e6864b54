package sportsfeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/eventbus/core/config"
	"github.com/dmitrymomot/eventbus/core/event"
	"github.com/dmitrymomot/eventbus/core/logger"
)

const drainPollInterval = 10 * time.Millisecond

// App wires the sample feed, the console handlers and the event bus together.
type App struct {
	config   Config
	bus      *event.Bus
	ownsBus  bool
	observer event.Observer
	output   io.Writer
	logger   *slog.Logger
	feed     *Feed
	console  *Console
	delay    DelayFunc

	mu  sync.Mutex
	ran bool
}

// AppOption configures an App. A non-nil error aborts NewApp.
type AppOption func(*App) error

// NewApp loads Config from the environment, applies opts and builds the app.
// The bus is created here unless WithBus supplies one; an app-owned bus is closed by Close.
func NewApp(opts ...AppOption) (*App, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}

	app := &App{
		config: cfg,
		output: os.Stdout,
		logger: logger.New(),
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if err := app.config.Validate(); err != nil {
		return nil, err
	}

	console, err := NewConsole(app.output, app.config.Locale)
	if err != nil {
		return nil, err
	}
	app.console = console

	if app.bus == nil {
		busOpts := []event.BusOption{event.WithLogger(app.logger)}
		if app.observer != nil {
			busOpts = append(busOpts, event.WithObserver(app.observer))
		}
		app.bus = event.NewBus(busOpts...)
		app.ownsBus = true
	}

	delay := app.delay
	if delay == nil {
		delay = RandomDelay(app.config.MinDelay, app.config.MaxDelay)
	}
	app.feed = NewFeed(app.bus,
		WithDelay(delay),
		WithAdDelayFactor(app.config.AdDelayFactor),
		WithFeedLogger(app.logger),
	)

	return app, nil
}

// WithConfig replaces the configuration loaded from the environment.
func WithConfig(cfg Config) AppOption {
	return func(app *App) error {
		app.config = cfg
		return nil
	}
}

// WithLogger sets the logger for the app, its feed and an app-owned bus.
func WithLogger(logger *slog.Logger) AppOption {
	return func(app *App) error {
		if logger == nil {
			return ErrNilLogger
		}
		app.logger = logger
		return nil
	}
}

// WithBus uses an externally owned bus. WithObserver is ignored in that case.
func WithBus(bus *event.Bus) AppOption {
	return func(app *App) error {
		if bus == nil {
			return ErrNilBus
		}
		app.bus = bus
		return nil
	}
}

// WithOutput sets where the console handlers print. Defaults to os.Stdout.
func WithOutput(w io.Writer) AppOption {
	return func(app *App) error {
		if w == nil {
			return ErrNilOutput
		}
		app.output = w
		return nil
	}
}

// WithObserver attaches an observer to the app-owned bus.
func WithObserver(o event.Observer) AppOption {
	return func(app *App) error {
		if o == nil {
			return ErrNilObserver
		}
		app.observer = o
		return nil
	}
}

// WithDelayFunc overrides the pacing derived from FEED_MIN_DELAY and FEED_MAX_DELAY.
func WithDelayFunc(fn DelayFunc) AppOption {
	return func(app *App) error {
		if fn == nil {
			return fmt.Errorf("%w: nil delay func", ErrInvalidDelay)
		}
		app.delay = fn
		return nil
	}
}

// Bus returns the bus the app publishes on.
func (app *App) Bus() *event.Bus {
	return app.bus
}

// Config returns the effective configuration.
func (app *App) Config() Config {
	return app.config
}

// Run registers the console subscriptions, publishes the sample streams and returns once
// publication has finished and every subscription is idle, or when ctx is cancelled.
// An App runs once.
func (app *App) Run(ctx context.Context) error {
	app.mu.Lock()
	if app.ran {
		app.mu.Unlock()
		return ErrAlreadyRan
	}
	app.ran = true
	app.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	subs, err := app.subscribe(subCtx)
	defer func() {
		for _, s := range subs {
			_ = s.Close()
		}
	}()
	if err != nil {
		return err
	}

	app.logger.InfoContext(ctx, "sports feed started",
		logger.Component("sportsfeed"),
		logger.Count("subscriptions", len(subs)),
		slog.String("locale", app.config.Locale))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.feed.PublishSportEvents(gctx, SportEvents(), AdEvents())
	})
	if app.config.IncludeLegacy {
		g.Go(func() error {
			return app.feed.PublishResults(gctx, Results())
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			app.logger.InfoContext(ctx, "sports feed interrupted", logger.Component("sportsfeed"))
			return nil
		}
		return fmt.Errorf("sports feed: %w", err)
	}

	if drain(ctx, subs) != nil {
		app.logger.InfoContext(ctx, "sports feed interrupted while draining", logger.Component("sportsfeed"))
		return nil
	}

	stats := app.bus.Stats()
	app.logger.InfoContext(ctx, "sports feed finished",
		logger.Component("sportsfeed"),
		logger.Count("published", int(stats.Published)),
		logger.Count("handled", int(stats.Handled)),
		logger.Count("overwritten", int(stats.Overwritten)),
		logger.Count("superseded", int(stats.Superseded)),
		logger.Count("failed", int(stats.Failed)))

	return nil
}

// Close releases the bus when the app created it.
func (app *App) Close() error {
	if app.ownsBus {
		return app.bus.Close()
	}
	return nil
}

func (app *App) subscribe(ctx context.Context) ([]*event.Subscription, error) {
	var subs []*event.Subscription

	add := func(s *event.Subscription, err error) error {
		if err != nil {
			return err
		}
		subs = append(subs, s)
		return nil
	}

	log := app.logger.With(logger.Component("sportsfeed"))

	if err := add(event.Subscribe(ctx, app.bus,
		event.ApplyDecorators(app.console.PrintSuccess, event.Logging[ResultSuccess](log)),
		event.WithSubscriptionName("results.success"))); err != nil {
		return subs, err
	}
	if err := add(event.Subscribe(ctx, app.bus,
		event.ApplyDecorators(app.console.PrintError, event.Logging[ResultError](log)),
		event.WithSubscriptionName("results.error"))); err != nil {
		return subs, err
	}
	if err := add(event.Subscribe(ctx, app.bus,
		event.ApplyDecorators(app.console.PrintAd, event.Logging[AdEvent](log)),
		event.WithSubscriptionName("analytics.ads"))); err != nil {
		return subs, err
	}
	if app.config.IncludeLegacy {
		if err := add(event.Subscribe(ctx, app.bus,
			event.ApplyDecorators(app.console.HandleResult, event.Logging[Result](log)),
			event.WithSubscriptionName("results.legacy"))); err != nil {
			return subs, err
		}
	}

	return subs, nil
}

// drain waits until every subscription is idle or ctx is done.
func drain(ctx context.Context, subs []*event.Subscription) error {
	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

	for {
		idle := true
		for _, s := range subs {
			if !s.Idle() {
				idle = false
				break
			}
		}
		if idle {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
