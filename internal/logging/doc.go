// Package logging provides the leveled logger used across the book catalog.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (per-file extraction results)
//   - INFO: General operational messages
//   - WARN: Recoverable problems such as a book that could not be previewed
//   - ERROR: Error conditions surfaced to a caller
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable, or forced
// to debug with DEBUG=true. Tests can redirect output with SetOutput and pin the
// level with SetLevel.
package logging
