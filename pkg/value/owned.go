package value

// Cloner is implemented by pointer types that can deep-copy themselves.
type Cloner[P any] interface {
	Clone() P
}

// Owned is an exclusively owned child. The child is destroyed with its
// owner: copying an owner must Clone its Owned fields.
type Owned[P Cloner[P]] struct {
	v   P
	set bool
}

// Own wraps v as an exclusively owned child.
func Own[P Cloner[P]](v P) Owned[P] {
	return Owned[P]{v: v, set: true}
}

// Get returns the owned child, or the zero value if empty.
func (o Owned[P]) Get() P {
	return o.v
}

// IsEmpty returns true if nothing is owned.
func (o Owned[P]) IsEmpty() bool {
	return !o.set
}

// Set replaces the owned child.
func (o *Owned[P]) Set(v P) {
	o.v = v
	o.set = true
}

// Take releases ownership and returns the child.
func (o *Owned[P]) Take() P {
	v := o.v
	var zero P
	o.v = zero
	o.set = false
	return v
}

// Clone returns a new Owned holding a deep copy of the child.
func (o Owned[P]) Clone() Owned[P] {
	if !o.set {
		return Owned[P]{}
	}
	return Owned[P]{v: o.v.Clone(), set: true}
}

// Interface returns the held value, or nil when empty.
func (o Owned[P]) Interface() any {
	if !o.set {
		return nil
	}
	return o.v
}
