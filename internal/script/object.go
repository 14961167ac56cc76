package script

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"

	"github.com/leapstack-labs/cardfile/pkg/schema"
)

// Object is a read-only Starlark view of a reflected object. Its
// attributes are the scripted fields of the object's type.
type Object struct {
	obj   schema.Object
	typ   *schema.Type
	types *schema.Registry
}

var _ starlark.HasAttrs = (*Object)(nil)

func newObject(types *schema.Registry, obj schema.Object) (*Object, error) {
	typ, err := types.TypeOf(obj)
	if err != nil {
		return nil, err
	}
	return &Object{obj: obj, typ: typ, types: types}, nil
}

// Unwrap returns the underlying object.
func (o *Object) Unwrap() schema.Object { return o.obj }

func (o *Object) String() string {
	if n, ok := o.obj.(schema.Named); ok {
		return fmt.Sprintf("<%s %q>", o.typ.Tag(), n.UniqueName())
	}
	return fmt.Sprintf("<%s>", o.typ.Tag())
}

func (o *Object) Type() string { return o.typ.Tag() }

func (o *Object) Freeze() {}

func (o *Object) Truth() starlark.Bool { return starlark.True }

func (o *Object) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: %s", o.typ.Tag())
}

// Attr returns the named field. Fields hidden from scripts read as
// missing attributes.
func (o *Object) Attr(name string) (starlark.Value, error) {
	fe, ok := o.typ.Field(name)
	if !ok || !fe.Scripted() {
		return nil, nil
	}
	v, err := ToStarlark(o.types, fe.Value(o.obj))
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", o.typ.Tag(), name, err)
	}
	return v, nil
}

func (o *Object) AttrNames() []string {
	var names []string
	for _, fe := range o.typ.Fields() {
		if fe.Scripted() {
			names = append(names, fe.Name)
		}
	}
	sort.Strings(names)
	return names
}
