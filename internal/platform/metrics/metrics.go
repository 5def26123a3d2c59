package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"portalConsole/internal/modules/portal/application/port"
)

const namespace = "portal_console"

// Recorder exports list view activity as prometheus metrics.
type Recorder struct {
	registry  *prometheus.Registry
	fetches   *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	mutations *prometheus.CounterVec
	rollbacks *prometheus.CounterVec
	stale     *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "list_fetches_total",
			Help:      "List queries by entity and outcome.",
		}, []string{"entity", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "list_fetch_seconds",
			Help:      "Query endpoint round-trip time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"entity"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Commands and fresh reads by entity, kind and outcome.",
		}, []string{"entity", "kind", "outcome"}),
		rollbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delete_rollbacks_total",
			Help:      "Optimistic deletes restored after a failed command.",
		}, []string{"entity"}),
		stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Responses discarded because a newer fetch superseded them.",
		}, []string{"entity"}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.fetches, r.latency, r.mutations, r.rollbacks, r.stale,
	)
	return r
}

// Gauge registers a gauge read from fn at scrape time.
func (r *Recorder) Gauge(name, help string, fn func() int) {
	r.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, func() float64 { return float64(fn()) }))
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) ObserveFetch(entity string, elapsed time.Duration, err error) {
	r.fetches.WithLabelValues(entity, outcome(err)).Inc()
	r.latency.WithLabelValues(entity).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveMutation(entity, kind string, err error) {
	r.mutations.WithLabelValues(entity, kind, outcome(err)).Inc()
}

func (r *Recorder) ObserveRollback(entity string) {
	r.rollbacks.WithLabelValues(entity).Inc()
}

func (r *Recorder) ObserveStale(entity string) {
	r.stale.WithLabelValues(entity).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var _ port.ListObserver = (*Recorder)(nil)
