// Package arrow provides Arrow IPC interchange for encoded messages.
// This package implements:
// - Single column records carrying one encoded message each
// - Arrow IPC stream serialization with optional LZ4 or Zstd compression
package arrow
