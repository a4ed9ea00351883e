// Package main provides the entry point for the book catalog server.
//
// The server browses the book files on a removable volume (an SD card or
// USB stick mount, or an S3 bucket standing in for one) and serves each
// client a catalog: one folder at a time, subfolders first, then books with
// their extracted title, author and description.
//
// # Application Lifecycle
//
//  1. Configuration Loading: .env files, environment variables, validation
//  2. Memory Limit: GOMEMLIMIT from the container limit
//  3. Metrics: registers label sets, build info and the filesystem observer
//  4. Storage Volume: local mount points or an S3 bucket
//  5. Preview Registry: fb2, epub, zipped fb2 and plain text extractors
//  6. Sessions: one catalog reader per client cookie, idle sessions swept
//  7. HTTP Server Setup: routes, logging and metrics middleware
//  8. Graceful Shutdown: SIGINT/SIGTERM stop the servers and background loops
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 8080):
//     - /api/catalog, /api/catalog/{enter,back,search,next,refresh}
//     - /api/volume and /api/book/{path}
//     - /health, /healthz, /livez, /readyz, /version
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//     - Health check endpoint (/health)
//
// See [book-catalog/internal/startup] for the environment variables.
//
// # Related Packages
//
//   - [book-catalog/internal/catalog]: folder pages, navigation and search
//   - [book-catalog/internal/preview]: book metadata extraction
//   - [book-catalog/internal/storage]: volume providers (local, s3, memory)
//   - [book-catalog/internal/session]: per-client catalog readers
//   - [book-catalog/internal/handlers]: HTTP request handlers
//   - [book-catalog/internal/streaming]: chunked book downloads
//   - [book-catalog/internal/middleware]: HTTP middleware (logging, metrics)
package main
