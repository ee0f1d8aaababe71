// Package metrics defines Prometheus instrumentation for the indexing
// pipeline and the filesystem watcher. Metrics are exposed by the
// watch command when --metrics-addr is set.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Indexer metrics
var (
	IndexerRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pdfdex_indexer_runs_total",
			Help: "Total number of batch index runs",
		},
	)

	IndexerRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pdfdex_indexer_running",
			Help: "Whether a batch index run is in progress (1 or 0)",
		},
	)

	FilesIndexed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pdfdex_files_indexed_total",
			Help: "Total number of files processed by the indexing pipeline",
		},
	)

	RowsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pdfdex_rows_swept_total",
			Help: "Total number of orphaned rows deleted by the generation sweep",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pdfdex_thumbnails_generated_total",
			Help: "Total number of successful thumbnail cache fills",
		},
	)

	ThumbnailFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pdfdex_thumbnail_failures_total",
			Help: "Total number of thumbnail generation failures (always non-fatal)",
		},
	)
)

// Watcher metrics
var (
	WatcherEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfdex_watcher_events_total",
			Help: "Total number of filesystem events processed, by kind",
		},
		[]string{"kind"},
	)

	WatcherSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pdfdex_watcher_suppressed_total",
			Help: "Total number of modify events suppressed by the post-create debounce window",
		},
	)

	WatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pdfdex_watcher_errors_total",
			Help: "Total number of per-event pipeline errors (watching continues)",
		},
	)
)
