package persist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/document"
	"github.com/leapstack-labs/cardfile/pkg/schema"
)

// decoder holds the state of one read. It implements schema.Decoder.
type decoder struct {
	types    *schema.Registry
	opts     *options
	version  core.Version
	warnings []core.Warning

	// shared maps a referent to the handle its first holder received.
	shared map[any]any

	// stack holds the nodes from the document root down to the node
	// being decoded. It drives error and warning paths.
	stack []*document.Node
}

var _ schema.Decoder = (*decoder)(nil)

// Version returns the version of the document, fixed for the whole read.
func (d *decoder) Version() core.Version {
	return d.version
}

// DecodeObject constructs the object of a tagged block.
func (d *decoder) DecodeObject(n *document.Node) (schema.Object, error) {
	if len(d.stack) == 0 || d.stack[len(d.stack)-1] != n {
		d.push(n)
		defer d.pop()
	}

	typ, ok := d.types.Lookup(n.Tag)
	if !ok {
		w := core.Warning{Kind: core.UnknownType, Path: d.path(), Tag: n.Tag, Pos: n.Pos, Version: d.version}
		if err := d.warn(w); err != nil {
			return nil, err
		}
		return nil, schema.ErrSkipped
	}

	obj := typ.New()
	if err := d.decodeFields(typ, obj, n.Children); err != nil {
		return nil, err
	}
	if err := d.afterRead(typ, obj); err != nil {
		return nil, &located{path: d.path(), pos: n.Pos, err: err}
	}
	return obj, nil
}

// Resolve looks up a named reference through the configured resolver.
func (d *decoder) Resolve(typeName, name string) (schema.Object, error) {
	if d.opts.refs == nil {
		return nil, &core.ReferenceNotFoundError{Type: typeName, Name: name, Cause: errors.New("no reference resolver configured")}
	}
	obj, err := d.opts.refs.Resolve(typeName, name)
	if err != nil {
		var nf *core.ReferenceNotFoundError
		if errors.As(err, &nf) {
			return nil, err
		}
		return nil, &core.ReferenceNotFoundError{Type: typeName, Name: name, Cause: err}
	}
	if obj == nil {
		return nil, &core.ReferenceNotFoundError{Type: typeName, Name: name}
	}
	return obj, nil
}

// SharedHandle returns the handle already given out for referent, or records
// a new one.
func (d *decoder) SharedHandle(referent any, create func() any) (any, bool) {
	if h, ok := d.shared[referent]; ok {
		return h, true
	}
	if d.shared == nil {
		d.shared = make(map[any]any)
	}
	h := create()
	d.shared[referent] = h
	return h, false
}

// decodeFields consumes the keys of an object block.
func (d *decoder) decodeFields(typ *schema.Type, obj schema.Object, nodes []*document.Node) error {
	seen := make(map[*schema.FieldEntry]string, len(nodes))

	for _, n := range nodes {
		if n.Item {
			return &located{path: d.path(), pos: n.Pos, err: &core.ParseError{
				Pos:     n.Pos,
				Message: "unexpected sequence element in object block",
			}}
		}

		res := typ.Resolve(d.version, n.Key)
		if res.Kind == schema.ResolveUnknown {
			w := core.Warning{Kind: core.UnknownKey, Path: d.join(n.Key), Key: n.Key, Pos: n.Pos, Version: d.version}
			if err := d.warn(w); err != nil {
				return err
			}
			continue
		}

		if prev, dup := seen[res.Entry]; dup {
			msg := fmt.Sprintf("duplicate key %q", n.Key)
			if prev != n.Key {
				msg = fmt.Sprintf("key %q duplicates %q", n.Key, prev)
			}
			return &located{path: d.join(n.Key), pos: n.Pos, err: &core.ParseError{Pos: n.Pos, Message: msg}}
		}
		seen[res.Entry] = n.Key

		if err := d.decodeField(res.Entry, obj, n); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) decodeField(f *schema.FieldEntry, obj schema.Object, n *document.Node) error {
	d.push(n)
	defer d.pop()

	err := f.Decode(d, obj, n)
	if err == nil || errors.Is(err, schema.ErrSkipped) {
		return nil
	}

	var loc *located
	if errors.As(err, &loc) {
		return loc
	}
	path, pos := d.path(), n.Pos
	for {
		var ee *schema.ElementError
		if !errors.As(err, &ee) {
			break
		}
		path += ee.Segment()
		if ee.Pos.IsValid() {
			pos = ee.Pos
		}
		err = ee.Err
	}
	return &located{path: path, pos: pos, err: err}
}

func (d *decoder) afterRead(typ *schema.Type, obj schema.Object) error {
	if err := typ.AfterRead(obj, d.version); err != nil {
		return fmt.Errorf("after reading %s: %w", obj.TypeName(), err)
	}
	return nil
}

// warn records a recoverable condition. In strict mode it is fatal.
func (d *decoder) warn(w core.Warning) error {
	if d.opts.strict {
		return &located{path: w.Path, pos: w.Pos, err: &StrictError{Warning: w}}
	}
	d.warnings = append(d.warnings, w)
	return nil
}

func (d *decoder) push(n *document.Node) {
	d.stack = append(d.stack, n)
}

func (d *decoder) pop() {
	d.stack = d.stack[:len(d.stack)-1]
}

// path renders the stack as "key.key[index].key".
func (d *decoder) path() string {
	var b strings.Builder
	for i, n := range d.stack {
		if n.Item {
			fmt.Fprintf(&b, "[%d]", indexOf(d.stack, i))
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(n.Key)
	}
	return b.String()
}

func (d *decoder) join(key string) string {
	if p := d.path(); p != "" {
		return p + "." + key
	}
	return key
}

// indexOf returns the position of stack[i] among its parent's children.
func indexOf(stack []*document.Node, i int) int {
	if i == 0 {
		return -1
	}
	for j, c := range stack[i-1].Children {
		if c == stack[i] {
			return j
		}
	}
	return -1
}
