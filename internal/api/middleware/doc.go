// Package middleware provides the HTTP middleware used by the API router:
// request tracing, structured request logging, bearer-token authentication and
// Redis-backed rate limiting.
package middleware
