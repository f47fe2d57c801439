// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Implementations map driver errors onto the sentinel errors declared in
// errors.go so callers can rely on errors.Is.
package store
