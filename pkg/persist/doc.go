// Package persist reads and writes reflected objects as card file documents.
//
// A Reader turns a document into an object graph using the declarations in
// a schema.Registry; a Writer does the reverse. Both are synchronous and
// keep all per-document state (version, warnings, position) in the call,
// so one Reader or Writer can be reused and shared.
package persist
