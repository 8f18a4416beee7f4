package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/toast/pkg/toast"
)

// Promise outcomes used as the outcome label of promise_duration_seconds.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeAbandoned = "abandoned"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "toast").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for promise duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// Now returns the current time. Default: time.Now
	Now func() time.Time
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// WithNow sets the time source used to measure promises.
func WithNow(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "toast",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
		Now:       time.Now,
	}
}

// Collector records toast store activity as Prometheus metrics.
//
// Metrics collected:
//   - toast_toasts_created_total: Counter of created toasts by type
//   - toast_toasts_updated_total: Counter of updates by new type
//   - toast_toasts_removed_total: Counter of removed toasts by reason
//     (dismissed, expired, cleared)
//   - toast_toasts_active: Gauge of toasts currently on the list
//   - toast_promise_duration_seconds: Histogram of the time a loading
//     toast waited for its outcome
type Collector struct {
	created         *prometheus.CounterVec
	updated         *prometheus.CounterVec
	removed         *prometheus.CounterVec
	active          prometheus.Gauge
	promiseDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
	now      func() time.Time

	mu      sync.Mutex
	loading map[int]time.Time
	lastSeq uint64
}

// New registers the toast metrics and returns their collector.
// Registering twice on the same registry panics, as with promauto.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	factory := promauto.With(config.Registry)

	c := &Collector{
		created: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toasts_created_total",
			Help:        "Total number of toasts created",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		updated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toasts_updated_total",
			Help:        "Total number of toast updates by resulting type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		removed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toasts_removed_total",
			Help:        "Total number of toasts removed by reason",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),

		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toasts_active",
			Help:        "Number of toasts currently displayed",
			ConstLabels: config.ConstLabels,
		}),

		promiseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "promise_duration_seconds",
			Help:        "Time between a loading toast and its outcome in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"outcome"}),

		now:     config.Now,
		loading: make(map[int]time.Time),
	}

	if g, ok := config.Registry.(prometheus.Gatherer); ok {
		c.gatherer = g
	} else {
		c.gatherer = prometheus.DefaultGatherer
	}

	return c
}

// Attach subscribes the collector to s and returns the unsubscribe func.
func (c *Collector) Attach(s *toast.Store) func() {
	unsubscribe := s.Subscribe(c.Observe)
	seq, toasts := s.Snapshot()
	c.mu.Lock()
	if seq >= c.lastSeq {
		c.lastSeq = seq
		c.active.Set(float64(len(toasts)))
	}
	c.mu.Unlock()
	return unsubscribe
}

// Observe records one store change. Changes may arrive out of order; the
// active gauge only follows the newest Seq seen.
func (c *Collector) Observe(ch toast.Change) {
	c.mu.Lock()
	if ch.Seq > c.lastSeq {
		c.lastSeq = ch.Seq
		c.active.Set(float64(len(ch.Toasts)))
	}
	c.mu.Unlock()

	switch ch.Kind {
	case toast.ChangeCreated:
		c.created.WithLabelValues(string(ch.Toast.Type)).Inc()
		if ch.Toast.Type == toast.TypeLoading {
			c.mu.Lock()
			c.loading[ch.Toast.ID] = c.now()
			c.mu.Unlock()
		}

	case toast.ChangeUpdated:
		c.updated.WithLabelValues(string(ch.Toast.Type)).Inc()
		switch ch.Toast.Type {
		case toast.TypeSuccess:
			c.settle(ch.Toast.ID, OutcomeSuccess)
		case toast.TypeError:
			c.settle(ch.Toast.ID, OutcomeError)
		case toast.TypeLoading:
			// Back to loading restarts the measurement.
			c.mu.Lock()
			c.loading[ch.Toast.ID] = c.now()
			c.mu.Unlock()
		default:
			c.settle(ch.Toast.ID, OutcomeAbandoned)
		}

	case toast.ChangeDismissed, toast.ChangeExpired:
		c.removed.WithLabelValues(string(ch.Kind)).Inc()
		c.settle(ch.Toast.ID, OutcomeAbandoned)

	case toast.ChangeCleared:
		c.removed.WithLabelValues(string(ch.Kind)).Add(float64(len(ch.Removed)))
		for _, t := range ch.Removed {
			c.settle(t.ID, OutcomeAbandoned)
		}
	}
}

// ObservePromise records a finished promise directly.
func (c *Collector) ObservePromise(outcome string, d time.Duration) {
	c.promiseDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// Pending returns the number of loading toasts awaiting an outcome.
func (c *Collector) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.loading)
}

// Handler serves the registry the collector was registered on.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func (c *Collector) settle(id int, outcome string) {
	c.mu.Lock()
	start, ok := c.loading[id]
	delete(c.loading, id)
	c.mu.Unlock()

	if ok {
		c.ObservePromise(outcome, c.now().Sub(start))
	}
}
