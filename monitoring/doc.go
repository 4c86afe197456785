// Package monitoring provides Prometheus metrics and structured logging for
// codec operations.
//
// Nothing here is global: metrics register on the Registerer passed in
// Config and loggers are injected. Instrument wraps any message.Codec so
// encode and decode calls are timed, counted and logged on failure.
package monitoring
