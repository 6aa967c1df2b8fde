// Package postgres provides PostgreSQL implementations of the store interfaces
// together with the embedded goose migrations that define their schema.
//
// Task queries always carry the owning user's ID in their WHERE clause, so a task
// belonging to someone else is reported as store.ErrTaskNotFound.
package postgres
