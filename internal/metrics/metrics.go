package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_catalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "book_catalog_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "book_catalog_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Catalog metrics
var (
	CatalogReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_catalog_reads_total",
			Help: "Total number of catalog page reads",
		},
		[]string{"operation", "status"}, // read|search × success|absent|error
	)

	CatalogReadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "book_catalog_read_duration_seconds",
			Help:    "Time to build one catalog page",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	CatalogPageItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "book_catalog_page_items",
			Help:    "Number of items on a catalog page",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"kind"}, // folder|book
	)

	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_catalog_extractions_total",
			Help: "Total number of preview extractions by outcome",
		},
		[]string{"status"}, // success|dropped
	)

	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "book_catalog_extraction_duration_seconds",
			Help:    "Time to open a book and extract its preview",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	ExtractionWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "book_catalog_extraction_workers",
			Help: "Size of the preview extraction worker pool",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "book_catalog_active_sessions",
			Help: "Number of catalog sessions currently held",
		},
	)
)

// Volume metrics
var (
	VolumePresent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "book_catalog_volume_present",
			Help: "Whether the storage volume is present (1) or absent (0)",
		},
	)

	VolumeBooksTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "book_catalog_volume_books",
			Help: "Number of files on the volume at the last full listing",
		},
	)

	BookDownloadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "book_catalog_book_download_bytes_total",
			Help: "Total bytes of book files sent to clients",
		},
	)

	BookDownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_catalog_book_downloads_total",
			Help: "Total number of book downloads by outcome",
		},
		[]string{"outcome"},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "book_catalog_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations by volume and operation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_catalog_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_catalog_filesystem_retry_attempts_total",
			Help: "Total number of filesystem retry attempts after a stale handle",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_catalog_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_catalog_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_catalog_filesystem_stale_errors_total",
			Help: "Total number of stale file handle errors",
		},
		[]string{"operation", "volume"},
	)
)

// Runtime metrics
var (
	GoMemAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "book_catalog_go_memory_alloc_bytes",
			Help: "Bytes of allocated heap objects",
		},
	)

	GoMemSysBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "book_catalog_go_memory_sys_bytes",
			Help: "Total bytes of memory obtained from the OS",
		},
	)
)

// AppInfo exposes build information as labels.
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "book_catalog_app_info",
		Help: "Application build information",
	},
	[]string{"version", "commit", "go_version"},
)
