// Package metrics provides Prometheus instrumentation for the book catalog.
//
// All metrics are registered with the default registry through promauto and
// prefixed with "book_catalog_". Mount promhttp.Handler() on the metrics
// listener to expose them.
//
// # Metric Categories
//
//   - HTTP: request counts, durations and in-flight requests.
//   - Catalog: page reads by operation and outcome, read latency, page
//     sizes, preview extraction outcomes and the worker pool size.
//   - Volume: presence of the storage volume and its book count.
//   - Filesystem: per-volume operation latency and stale handle retries,
//     fed by the observer from [NewFilesystemObserver].
//   - Runtime: heap and OS memory, sampled by [Collector].
//
// # Prometheus Queries
//
// Share of books dropped during preview extraction:
//
//	rate(book_catalog_extractions_total{status="dropped"}[5m]) /
//	rate(book_catalog_extractions_total[5m])
//
// P95 catalog page latency:
//
//	histogram_quantile(0.95, sum(rate(book_catalog_read_duration_seconds_bucket[5m])) by (le, operation))
package metrics
