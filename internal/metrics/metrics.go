// Package metrics exposes Prometheus collectors for the scraper.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcome label values.
const (
	OutcomeOK        = "ok"
	OutcomeHTTPError = "http_error"
	OutcomeError     = "error"
	OutcomeCanceled  = "canceled"
)

var (
	pagesFetchedTotal    *prometheus.CounterVec
	fetchDurationSeconds *prometheus.HistogramVec
	recordsParsedTotal   prometheus.Counter
	recordsEnrichedTotal prometheus.Counter
	datasetRowsWritten   prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pagesFetchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_pages_fetched_total",
				Help: "Total number of pages fetched, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_fetch_duration_seconds",
				Help:    "Duration of page fetches, labeled by outcome.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		)

		recordsParsedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_records_parsed_total",
				Help: "Total number of listing records parsed.",
			},
		)

		recordsEnrichedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_records_enriched_total",
				Help: "Total number of records enriched from detail pages.",
			},
		)

		datasetRowsWritten = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "scraper_dataset_rows_written",
				Help: "Rows written by the most recent dataset serialization.",
			},
		)
	})
}

// ObserveFetch records one page fetch with its outcome and duration.
func ObserveFetch(outcome string, duration time.Duration) {
	if pagesFetchedTotal == nil {
		return
	}
	pagesFetchedTotal.WithLabelValues(outcome).Inc()
	fetchDurationSeconds.WithLabelValues(outcome).Observe(duration.Seconds())
}

// AddRecordsParsed adds to the parsed-record counter.
func AddRecordsParsed(n int) {
	if recordsParsedTotal == nil {
		return
	}
	recordsParsedTotal.Add(float64(n))
}

// IncRecordsEnriched counts one successfully enriched record.
func IncRecordsEnriched() {
	if recordsEnrichedTotal == nil {
		return
	}
	recordsEnrichedTotal.Inc()
}

// SetDatasetRows records the row count of the last written dataset.
func SetDatasetRows(n int) {
	if datasetRowsWritten == nil {
		return
	}
	datasetRowsWritten.Set(float64(n))
}

// Handler returns the HTTP handler exposing the collectors.
func Handler() http.Handler {
	return promhttp.Handler()
}
