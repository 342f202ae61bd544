// Package metrics exposes Prometheus instrumentation for the scraping engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors the engine updates during a run. All
// collectors register against the given registry so tests can use isolated
// registries.
type Metrics struct {
	ProductsCollected *prometheus.CounterVec
	PagesScraped      *prometheus.CounterVec
	FetchRetries      *prometheus.CounterVec
	RetailerFailures  *prometheus.CounterVec
	JobsStarted       prometheus.Counter
	JobsCompleted     *prometheus.CounterVec
	FetchDuration     *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ProductsCollected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cottonscout",
			Name:      "products_collected_total",
			Help:      "Cotton products collected, by retailer.",
		}, []string{"retailer"}),
		PagesScraped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cottonscout",
			Name:      "pages_scraped_total",
			Help:      "Category pages scraped, by retailer.",
		}, []string{"retailer"}),
		FetchRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cottonscout",
			Name:      "fetch_retries_total",
			Help:      "Retried fetches after transient failures, by retailer.",
		}, []string{"retailer"}),
		RetailerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cottonscout",
			Name:      "retailer_failures_total",
			Help:      "Retailer tasks that ended in failure, by retailer.",
		}, []string{"retailer"}),
		JobsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cottonscout",
			Name:      "jobs_started_total",
			Help:      "Scraping jobs accepted.",
		}),
		JobsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cottonscout",
			Name:      "jobs_finished_total",
			Help:      "Scraping jobs finished, by terminal state.",
		}, []string{"state"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cottonscout",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching retailer pages.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"retailer", "kind"}),
	}

	reg.MustRegister(
		m.ProductsCollected,
		m.PagesScraped,
		m.FetchRetries,
		m.RetailerFailures,
		m.JobsStarted,
		m.JobsCompleted,
		m.FetchDuration,
	)
	return m
}
