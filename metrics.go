package pinboard

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes board activity as Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Batches       prometheus.Counter
	Actions       *prometheus.CounterVec
	BatchDuration prometheus.Histogram
	Items         prometheus.Gauge
	Scale         prometheus.Gauge
	Arranged      *prometheus.CounterVec
}

// NewMetrics creates the board collectors and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Batches: factory.NewCounter(prometheus.CounterOpts{
			Name: "pinboard_pointer_batches_total",
			Help: "Total number of pointer batches handled",
		}),
		Actions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pinboard_actions_total",
			Help: "Total number of actions applied, by kind",
		}, []string{"kind"}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pinboard_pointer_batch_duration_seconds",
			Help:    "Time spent handling one pointer batch",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}),
		Items: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pinboard_items",
			Help: "Current number of items on the board",
		}),
		Scale: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pinboard_scale",
			Help: "Current board zoom scale",
		}),
		Arranged: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pinboard_arranged_items_total",
			Help: "Items proposed by smart arrange, by result",
		}, []string{"result"}),
	}
}

// WithMetrics records board activity into m.
func WithMetrics(m *Metrics) BoardOption {
	return func(b *Board) {
		b.metrics = m
	}
}

func (m *Metrics) observeBatch(d time.Duration) {
	if m == nil {
		return
	}
	m.Batches.Inc()
	m.BatchDuration.Observe(d.Seconds())
}

func (m *Metrics) observeAction(kind ActionKind) {
	if m == nil {
		return
	}
	m.Actions.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) setItems(n int) {
	if m == nil {
		return
	}
	m.Items.Set(float64(n))
}

func (m *Metrics) setScale(scale float64) {
	if m == nil {
		return
	}
	m.Scale.Set(scale)
}

func (m *Metrics) observeArrangement(moved, dropped int) {
	if m == nil {
		return
	}
	m.Arranged.WithLabelValues("moved").Add(float64(moved))
	m.Arranged.WithLabelValues("dropped").Add(float64(dropped))
}
