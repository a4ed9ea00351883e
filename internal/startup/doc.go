// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration is read from environment variables by [LoadConfig], after
// loading optional .env and .env.local files. Variables already present in
// the environment take precedence over the files.
//
//   - VOLUME_BACKEND: "local" or "s3" (default: local)
//   - VOLUME_PATHS: comma-separated candidate mount points; the first
//     existing directory is the volume (default: /media/sdcard)
//   - SKIP_HIDDEN: hide dot-files and dot-folders (default: true)
//   - S3_BUCKET, S3_PREFIX, S3_REGION, S3_ENDPOINT, S3_ACCESS_KEY_ID,
//     S3_SECRET_ACCESS_KEY: bucket settings for the s3 backend
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: enable or disable the metrics server (default: true)
//   - SESSION_TTL: idle catalog session lifetime (default: 30m)
//   - EXTRACT_WORKERS: preview extraction pool size (default: 2 per CPU, max 16)
//   - MAX_PREVIEW_BYTES: largest archive buffered for a preview (default: 32 MiB)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: log health check requests (default: true)
//
// GOMEMLIMIT, MEMORY_LIMIT and MEMORY_RATIO are read separately by
// book-catalog/internal/memory.
//
// The resulting [Config] is checked with go-playground/validator struct tags
// plus the cross-field rules in [Validate].
//
// # Build Information
//
// Version, Commit and BuildTime are injected at build time:
//
//	go build -ldflags "-X book-catalog/internal/startup.Version=1.0.0"
package startup
