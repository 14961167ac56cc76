// Package value provides ownership wrappers for reflected fields.
//
//   - Owned holds a child exclusively; copies must go through Clone.
//   - Shared holds a child that several parents reference; copies share it.
//   - Defaultable holds either an explicit value or "inherit the default".
//
// None of the wrappers are safe for concurrent use. A document graph has a
// single logical owner at a time.
package value

// Holder is implemented by every wrapper. It lets code that walks objects
// by reflection see through a wrapper without knowing its type parameter.
type Holder interface {
	Interface() any
}
