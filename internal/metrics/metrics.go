// Package metrics holds the Prometheus collectors of a catalog run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/law-makers/catalogsync/pkg/models"
)

// Metrics bundles the collectors on a dedicated registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Registry        *prometheus.Registry
	SectionsTotal   prometheus.Counter
	ProductURLs     prometheus.Counter
	ParsedTotal     prometheus.Counter
	SkippedTotal    *prometheus.CounterVec
	RetriesTotal    prometheus.Counter
	ProductDuration prometheus.Histogram
	SyncedTotal     *prometheus.CounterVec
}

// New constructs and registers all collectors
func New() *Metrics {
	registry := prometheus.NewRegistry()

	sections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalogsync_sections_total",
		Help: "Catalog sections discovered in the site navigation.",
	})
	urls := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalogsync_product_urls_total",
		Help: "Unique product URLs collected across all sections.",
	})
	parsed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalogsync_products_parsed_total",
		Help: "Product pages turned into records.",
	})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalogsync_products_skipped_total",
		Help: "Product pages that produced no record, by reason.",
	}, []string{"reason"})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalogsync_http_retries_total",
		Help: "HTTP requests repeated after a retryable failure.",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalogsync_product_fetch_duration_seconds",
		Help:    "Time to fetch and parse one product page.",
		Buckets: prometheus.DefBuckets,
	})
	synced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalogsync_sync_operations_total",
		Help: "WooCommerce write operations, by resource and action.",
	}, []string{"resource", "action"})

	registry.MustRegister(sections, urls, parsed, skipped, retries, duration, synced)

	return &Metrics{
		Registry:        registry,
		SectionsTotal:   sections,
		ProductURLs:     urls,
		ParsedTotal:     parsed,
		SkippedTotal:    skipped,
		RetriesTotal:    retries,
		ProductDuration: duration,
		SyncedTotal:     synced,
	}
}

func (m *Metrics) AddSections(n int) {
	if m == nil {
		return
	}
	m.SectionsTotal.Add(float64(n))
}

func (m *Metrics) AddProductURLs(n int) {
	if m == nil {
		return
	}
	m.ProductURLs.Add(float64(n))
}

func (m *Metrics) IncParsed() {
	if m == nil {
		return
	}
	m.ParsedTotal.Inc()
}

func (m *Metrics) IncSkipped(reason models.SkipReason) {
	if m == nil {
		return
	}
	m.SkippedTotal.WithLabelValues(string(reason)).Inc()
}

func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

func (m *Metrics) ObserveProduct(d time.Duration) {
	if m == nil {
		return
	}
	m.ProductDuration.Observe(d.Seconds())
}

// IncSynced counts one remote write, e.g. ("product", "create")
func (m *Metrics) IncSynced(resource, action string) {
	if m == nil {
		return
	}
	m.SyncedTotal.WithLabelValues(resource, action).Inc()
}

// WriteTextfile dumps the registry in the node_exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
