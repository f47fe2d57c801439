// Package metrics defines the observability hooks used by the HTTP layer, the
// task list cache and the task event stream, with a Prometheus implementation.
package metrics
