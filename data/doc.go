// Package data provides the image message types exchanged as Arrow unions.
// This package implements:
// - Encoding, Metadata, Image and Annotation message types
// - JSON to Arrow conversion
// - Schema validation for received arrays
package data
