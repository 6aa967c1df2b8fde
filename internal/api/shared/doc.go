// Package shared holds the request, response and context helpers used by both the
// API handlers and the HTTP middleware.
package shared
