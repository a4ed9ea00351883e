package metrics

// FilesystemVolumes are the volume labels recorded by the filesystem observer.
var FilesystemVolumes = []string{"card", "unknown"}

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Catalog reads ---
	for _, op := range []string{"read", "search"} {
		for _, status := range []string{"success", "absent", "error"} {
			CatalogReadsTotal.WithLabelValues(op, status)
		}
		CatalogReadDuration.WithLabelValues(op)
	}
	for _, kind := range []string{"folder", "book"} {
		CatalogPageItems.WithLabelValues(kind)
	}

	// --- Preview extraction outcomes ---
	for _, status := range []string{"success", "dropped"} {
		ExtractionsTotal.WithLabelValues(status)
	}

	// --- Book downloads ---
	for _, outcome := range []string{"complete", "client_gone", "timeout", "error"} {
		BookDownloadsTotal.WithLabelValues(outcome)
	}

	// --- Filesystem operations (per volume × operation) ---
	fsOps := []string{"stat", "open", "readdir"}
	for _, vol := range FilesystemVolumes {
		for _, op := range fsOps {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
		}
	}
}
