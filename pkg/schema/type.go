package schema

import (
	"fmt"
	"reflect"

	"github.com/leapstack-labs/cardfile/pkg/core"
)

// Type is the immutable declaration of one reflected type.
type Type struct {
	tag     string
	rtype   reflect.Type
	newFn   func() Object
	fields  []*FieldEntry
	aliases []Alias
	hooks   []func(obj any, v core.Version) error

	byName map[string][]*FieldEntry
}

// Tag returns the type tag, empty for embeddable bases.
func (t *Type) Tag() string {
	return t.tag
}

// GoType returns the declared Go struct type.
func (t *Type) GoType() reflect.Type {
	return t.rtype
}

// New returns a default-constructed instance, or nil for embeddable bases.
func (t *Type) New() Object {
	if t.newFn == nil {
		return nil
	}
	return t.newFn()
}

// Fields returns the field entries in declaration order.
func (t *Type) Fields() []*FieldEntry {
	out := make([]*FieldEntry, len(t.fields))
	copy(out, t.fields)
	return out
}

// Aliases returns the compatibility aliases of the type.
func (t *Type) Aliases() []Alias {
	out := make([]Alias, len(t.aliases))
	copy(out, t.aliases)
	return out
}

// Field returns the current (non-legacy) entry with the given name.
func (t *Type) Field(name string) (*FieldEntry, bool) {
	for _, f := range t.byName[name] {
		if !f.Legacy() {
			return f, true
		}
	}
	return nil, false
}

// AfterRead runs the post-read hooks of the type on obj.
func (t *Type) AfterRead(obj any, v core.Version) error {
	for _, h := range t.hooks {
		if err := h(obj, v); err != nil {
			return err
		}
	}
	return nil
}

// index validates the declaration and builds the name index.
func (t *Type) index() []error {
	var errs []error
	t.byName = make(map[string][]*FieldEntry, len(t.fields))

	for _, f := range t.fields {
		if f.Name == "" {
			errs = append(errs, fmt.Errorf("field with empty name"))
			continue
		}
		if f.Until != 0 && f.Until <= f.Since {
			errs = append(errs, fmt.Errorf("field %q: empty version range [%s, %s)", f.Name, f.Since, f.Until))
		}
		for _, o := range t.byName[f.Name] {
			if overlaps(f.Since, f.Until, o.Since, o.Until) {
				errs = append(errs, fmt.Errorf("field %q declared twice for overlapping versions", f.Name))
			}
		}
		t.byName[f.Name] = append(t.byName[f.Name], f)
	}

	for i := range t.aliases {
		a := &t.aliases[i]
		if a.Legacy == "" {
			errs = append(errs, fmt.Errorf("alias of %q with empty legacy name", a.Target))
			continue
		}
		target, ok := t.Field(a.Target)
		if !ok || target.Flags.Has(FlagScriptOnly) {
			errs = append(errs, fmt.Errorf("alias %q targets unknown field %q", a.Legacy, a.Target))
			continue
		}
		a.entry = target
		for _, o := range t.byName[a.Legacy] {
			if overlaps(0, a.Until, o.Since, o.Until) {
				errs = append(errs, fmt.Errorf("alias %q collides with field of the same name", a.Legacy))
			}
		}
		for _, o := range t.aliases[:i] {
			if o.Legacy == a.Legacy {
				errs = append(errs, fmt.Errorf("alias %q declared twice", a.Legacy))
			}
		}
	}
	return errs
}

// overlaps reports whether [s1, u1) and [s2, u2) intersect. Zero upper
// bounds are unbounded.
func overlaps(s1, u1, s2, u2 core.Version) bool {
	if u1 == 0 {
		u1 = core.MaxVersion
	}
	if u2 == 0 {
		u2 = core.MaxVersion
	}
	return s1 < u2 && s2 < u1
}
