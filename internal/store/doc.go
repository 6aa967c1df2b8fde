// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Every task operation takes the owning user's ID explicitly. Implementations
// must filter by it so that one user's tasks are never visible to another and
// a foreign task is indistinguishable from a missing one.
package store
