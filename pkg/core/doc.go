// Package core defines the shared language of the cardfile system.
//
// This package contains:
//   - FormatVersion (Version) and its parsing rules
//   - The error taxonomy shared by reader, writer and schema codecs
//   - Warnings for recoverable conditions (unknown keys, unknown type tags)
//
// The Golden Rule: pkg/core imports ONLY pkg/token and stdlib.
// All other packages depend on core, not the reverse.
package core
