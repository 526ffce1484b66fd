// Package metrics exposes sealing and screening counters to Prometheus
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tcfw/sentinel/internal/screening"
	"github.com/tcfw/sentinel/internal/utils/logging"
	"github.com/tcfw/sentinel/pkg/ledger"
	"github.com/tcfw/sentinel/pkg/payment"
)

const namespace = "sentinel"

var (
	_ ledger.Observer    = (*Collector)(nil)
	_ screening.Observer = (*Collector)(nil)
)

type Collector struct {
	BlocksSealed prometheus.Counter
	NoncesTried  prometheus.Counter
	SealDuration prometheus.Histogram
	ChainHeight  prometheus.Gauge
	Screened     *prometheus.CounterVec
}

func New() *Collector {
	return &Collector{
		BlocksSealed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "blocks_sealed_total",
			Help:      "Blocks mined and appended to the chain",
		}),
		NoncesTried: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "nonces_tried_total",
			Help:      "Digests computed while searching for nonces",
		}),
		SealDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "seal_duration_seconds",
			Help:      "Time spent searching for a nonce",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		ChainHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "chain_height",
			Help:      "Height of the latest sealed block",
		}),
		Screened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "transactions_total",
			Help:      "Screened transactions by recommendation and decision source",
		}, []string{"recommendation", "source"}),
	}
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{c.BlocksSealed, c.NoncesTried, c.SealDuration, c.ChainHeight, c.Screened}
}

// Register the collectors, ignoring any error returned (simply logs a Warn)
func (c *Collector) Register(r prometheus.Registerer) {
	for _, col := range c.collectors() {
		if err := r.Register(col); err != nil {
			logging.Component("metrics").WithError(err).Warn("cannot register metrics")
		}
	}
}

func (c *Collector) ObserveSeal(b *ledger.Block, attempts uint64, took time.Duration) {
	c.BlocksSealed.Inc()
	c.NoncesTried.Add(float64(attempts))
	c.SealDuration.Observe(took.Seconds())
	c.ChainHeight.Set(float64(b.Height))
}

func (c *Collector) ObserveScreen(rec payment.Recommendation, src screening.Source) {
	c.Screened.WithLabelValues(string(rec), string(src)).Inc()
}

// Handler serves the metrics gathered from g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
