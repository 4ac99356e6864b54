// Package metrics exports event bus activity as Prometheus metrics.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	bus := event.NewBus(event.WithObserver(metrics.NewObserver(reg)))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmitrymomot/eventbus/core/event"
)

const defaultNamespace = "eventbus"

// Observer implements event.Observer on top of Prometheus collectors.
type Observer struct {
	published   *prometheus.CounterVec
	delivered   *prometheus.CounterVec
	overwritten *prometheus.CounterVec
	outcomes    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

type options struct {
	namespace string
	buckets   []float64
	labels    prometheus.Labels
}

// Option configures an Observer.
type Option func(*options)

// WithNamespace sets the metric namespace. Defaults to "eventbus".
func WithNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// WithBuckets overrides the handler duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(o *options) {
		if len(buckets) > 0 {
			o.buckets = buckets
		}
	}
}

// WithConstLabels attaches constant labels, e.g. the application name, to every metric.
func WithConstLabels(labels map[string]string) Option {
	return func(o *options) {
		for k, v := range labels {
			o.labels[k] = v
		}
	}
}

// NewObserver registers the bus collectors on reg and returns the observer.
// It panics if the collectors are already registered on reg.
func NewObserver(reg prometheus.Registerer, opts ...Option) *Observer {
	cfg := options{
		namespace: defaultNamespace,
		buckets:   prometheus.DefBuckets,
		labels:    prometheus.Labels{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(reg)

	return &Observer{
		published: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "events_published_total",
			Help:        "Total events published on the bus",
			ConstLabels: cfg.labels,
		}, []string{"event"}),
		delivered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "events_delivered_total",
			Help:        "Total events placed into subscription mailboxes",
			ConstLabels: cfg.labels,
		}, []string{"event"}),
		overwritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "events_overwritten_total",
			Help:        "Total pending events replaced by a newer event before being handled",
			ConstLabels: cfg.labels,
		}, []string{"event"}),
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "handler_invocations_total",
			Help:        "Total handler invocations by outcome",
			ConstLabels: cfg.labels,
		}, []string{"subscription", "event", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.namespace,
			Name:        "handler_duration_seconds",
			Help:        "Handler invocation duration",
			Buckets:     cfg.buckets,
			ConstLabels: cfg.labels,
		}, []string{"subscription", "event"}),
	}
}

// EventPublished implements event.Observer.
func (o *Observer) EventPublished(name string, delivered, overwritten int) {
	o.published.WithLabelValues(name).Inc()
	if delivered > 0 {
		o.delivered.WithLabelValues(name).Add(float64(delivered))
	}
	if overwritten > 0 {
		o.overwritten.WithLabelValues(name).Add(float64(overwritten))
	}
}

// HandlerFinished implements event.Observer.
func (o *Observer) HandlerFinished(subscription, name string, outcome event.Outcome, d time.Duration) {
	o.outcomes.WithLabelValues(subscription, name, outcome.String()).Inc()
	o.duration.WithLabelValues(subscription, name).Observe(d.Seconds())
}

var _ event.Observer = (*Observer)(nil)
