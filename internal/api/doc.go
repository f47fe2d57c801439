// Package api handles incoming HTTP requests: it decodes and validates
// input, calls the account and task services, and writes every outcome in
// the shared response envelope.
package api
