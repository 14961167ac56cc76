package value

// Defaultable holds either an explicit value or "inherit the default".
// The zero value inherits.
type Defaultable[T comparable] struct {
	v   T
	set bool
}

// Explicit returns a Defaultable holding v.
func Explicit[T comparable](v T) Defaultable[T] {
	return Defaultable[T]{v: v, set: true}
}

// IsDefault returns true if the value inherits the default.
func (d Defaultable[T]) IsDefault() bool {
	return !d.set
}

// Get returns the explicit value and whether one is set.
func (d Defaultable[T]) Get() (T, bool) {
	return d.v, d.set
}

// Effective resolves the value against an externally supplied default.
func (d Defaultable[T]) Effective(def T) T {
	if d.set {
		return d.v
	}
	return def
}

// Set stores an explicit value.
func (d *Defaultable[T]) Set(v T) {
	d.v = v
	d.set = true
}

// Reset returns to the inherit state.
func (d *Defaultable[T]) Reset() {
	var zero T
	d.v = zero
	d.set = false
}

// Equal reports whether both hold the same explicit value or both inherit.
// Two inheriting values are equal whatever the default resolves to.
func (d Defaultable[T]) Equal(o Defaultable[T]) bool {
	if d.set != o.set {
		return false
	}
	return !d.set || d.v == o.v
}

// Or merges two values: d if it is explicit, otherwise o.
func (d Defaultable[T]) Or(o Defaultable[T]) Defaultable[T] {
	if d.set {
		return d
	}
	return o
}

// Interface returns the explicit value, or nil when inheriting.
func (d Defaultable[T]) Interface() any {
	if !d.set {
		return nil
	}
	return d.v
}
