package engine

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const metricNamespace = "wesolowski"

type Metrics struct {
	Squarings        prometheus.Counter
	Generations      *prometheus.CounterVec
	Verifications    *prometheus.CounterVec
	GenerateDuration prometheus.Histogram
	VerifyDuration   prometheus.Histogram
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
}

// NewMetrics creates the engine collectors and registers them with reg. A
// nil registerer leaves them unregistered; collectors that are already
// registered are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Squarings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "squarings_total",
			Help:      "Sequential squarings completed by successful generations.",
		}),
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "generations_total",
			Help:      "VDF generations by result.",
		}, []string{"result"}),
		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "verifications_total",
			Help:      "VDF verifications by result.",
		}, []string{"result"}),
		GenerateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricNamespace,
			Name:      "generate_duration_seconds",
			Help:      "Time spent computing and proving a VDF output.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		VerifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricNamespace,
			Name:      "verify_duration_seconds",
			Help:      "Time spent verifying a VDF output.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "parameter_cache_hits_total",
			Help:      "Group parameter lookups served from the cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "parameter_cache_misses_total",
			Help:      "Group parameter lookups that derived new parameters.",
		}),
	}

	if reg == nil {
		return m, nil
	}

	var err error
	if m.Squarings, err = register(reg, m.Squarings); err != nil {
		return nil, errors.Wrap(err, "new metrics")
	}
	if m.Generations, err = register(reg, m.Generations); err != nil {
		return nil, errors.Wrap(err, "new metrics")
	}
	if m.Verifications, err = register(reg, m.Verifications); err != nil {
		return nil, errors.Wrap(err, "new metrics")
	}
	if m.GenerateDuration, err = register(reg, m.GenerateDuration); err != nil {
		return nil, errors.Wrap(err, "new metrics")
	}
	if m.VerifyDuration, err = register(reg, m.VerifyDuration); err != nil {
		return nil, errors.Wrap(err, "new metrics")
	}
	if m.CacheHits, err = register(reg, m.CacheHits); err != nil {
		return nil, errors.Wrap(err, "new metrics")
	}
	if m.CacheMisses, err = register(reg, m.CacheMisses); err != nil {
		return nil, errors.Wrap(err, "new metrics")
	}

	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}

	are := prometheus.AlreadyRegisteredError{}
	if !errors.As(err, &are) {
		return c, err
	}

	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return c, err
	}

	return existing, nil
}
