package value

type sharedRef[T any] struct {
	v    T
	refs int
}

// Shared is a reference counted handle. Copies made with Copy share the
// referent, which stays alive for as long as any holder does.
type Shared[T any] struct {
	ref *sharedRef[T]
}

// Share creates the first handle to v.
func Share[T any](v T) Shared[T] {
	return Shared[T]{ref: &sharedRef[T]{v: v, refs: 1}}
}

// Get returns the referent, or the zero value for an empty handle.
func (s Shared[T]) Get() T {
	if s.ref == nil {
		var zero T
		return zero
	}
	return s.ref.v
}

// Valid returns true if the handle references something.
func (s Shared[T]) Valid() bool {
	return s.ref != nil
}

// Copy returns another handle to the same referent.
func (s Shared[T]) Copy() Shared[T] {
	if s.ref != nil {
		s.ref.refs++
	}
	return s
}

// Release drops this handle. The handle is empty afterwards.
func (s *Shared[T]) Release() {
	if s.ref == nil {
		return
	}
	s.ref.refs--
	s.ref = nil
}

// Refs returns the number of live handles to the referent.
func (s Shared[T]) Refs() int {
	if s.ref == nil {
		return 0
	}
	return s.ref.refs
}

// Same returns true if both handles reference the same referent.
func (s Shared[T]) Same(o Shared[T]) bool {
	return s.ref != nil && s.ref == o.ref
}

// Interface returns the referent, or nil for an empty handle.
func (s Shared[T]) Interface() any {
	if s.ref == nil {
		return nil
	}
	return s.ref.v
}
