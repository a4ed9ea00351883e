// Package handlers provides HTTP request handlers for the book catalog API.
//
// It includes handlers for:
//   - Browsing the current catalog page of a session
//   - Entering and leaving folders, searching the current folder
//   - Volume presence and whole-volume book counts
//   - Downloading book files
//   - Health checks and version information
package handlers
