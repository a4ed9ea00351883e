package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"book-catalog/internal/metrics"
)

// wildcardPrefixes are routes whose remainder is a volume path.
var wildcardPrefixes = []string{"/api/book/"}

// metricsResponseWriter captures the status code and, for downloads, the
// time the first byte went out.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
	startTime     time.Time
	firstByteTime time.Time
	isDownload    bool
}

func newMetricsResponseWriter(w http.ResponseWriter, start time.Time, isDownload bool) *metricsResponseWriter {
	return &metricsResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
		startTime:      start,
		isDownload:     isDownload,
	}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	if !rw.headerWritten {
		rw.statusCode = code
		rw.headerWritten = true
		if rw.isDownload {
			rw.firstByteTime = time.Now()
		}
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *metricsResponseWriter) Write(b []byte) (int, error) {
	if !rw.headerWritten {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *metricsResponseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the connection.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// GetDuration returns time to first byte for downloads and the total
// request time otherwise.
func (rw *metricsResponseWriter) GetDuration() time.Duration {
	if rw.isDownload && !rw.firstByteTime.IsZero() {
		return rw.firstByteTime.Sub(rw.startTime)
	}
	return time.Since(rw.startTime)
}

// MetricsConfig holds configuration for the metrics middleware
type MetricsConfig struct {
	// SkipPaths are paths that should not be recorded
	SkipPaths []string
}

// DefaultMetricsConfig returns the default metrics configuration
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		SkipPaths: []string{"/metrics", "/health", "/healthz", "/livez", "/readyz"},
	}
}

// Metrics returns a middleware that records Prometheus metrics
func Metrics(config MetricsConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			wrapped := newMetricsResponseWriter(w, time.Now(), isDownloadPath(r.URL.Path))
			next.ServeHTTP(wrapped, r)

			path := normalizePath(r.URL.Path)
			status := strconv.Itoa(wrapped.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(wrapped.GetDuration().Seconds())
		})
	}
}

func isDownloadPath(path string) bool {
	return strings.HasPrefix(path, "/api/book/")
}

// normalizePath normalizes the path for metrics to avoid high cardinality
func normalizePath(path string) string {
	for _, prefix := range wildcardPrefixes {
		if strings.HasPrefix(path, prefix) {
			return prefix + "{path}"
		}
	}

	// Keep the first four segments of anything else; parts[0] is the
	// empty string before the leading slash.
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i > 4 {
			parts[i] = "{path}"
			return strings.Join(parts[:i+1], "/")
		}
	}

	return path
}
