//go:build integration

// Package testdb provides helpers for integration tests that run against a real
// Postgres database. Tests are skipped unless TASKFLOW_TEST_DATABASE_URL (or
// TASKFLOW_DATABASE_URL) is set.
package testdb
