// Package middleware provides HTTP middleware for the book catalog server.
//
// It includes:
//   - Request logging in W3C Extended Log Format, with control characters
//     stripped from client-supplied fields
//   - Prometheus request metrics; book downloads record time to first byte
package middleware
