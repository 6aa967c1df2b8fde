// Package logger provides structured logging for the application.
//
// It configures log/slog with a JSON handler at the level named in the server
// configuration and carries request-scoped loggers through context.Context so that
// handlers, services and stores log with the same trace attributes.
package logger
