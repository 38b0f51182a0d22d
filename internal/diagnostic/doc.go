// Package diagnostic collects structured warnings raised while schemas and
// converters are derived.
//
// Key capabilities:
//   - Lossy fallback conversions (a type rendered through its textual form)
//   - Name suggestions attached to failed lookups
//   - Plain-text rendering for the CLI
package diagnostic
