// Package bridge moves encoded messages across process boundaries as Arrow
// IPC bytes.
//
// This package contains:
//   - Marshal and Unmarshal for a single message
//   - MarshalAll and UnmarshalAll, encoding and decoding batches on a bounded
//     number of goroutines
//
// Any consumer holding the same message descriptors can decode the bytes,
// independent of the process that produced them.
package bridge
