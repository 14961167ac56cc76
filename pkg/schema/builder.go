package schema

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/document"
)

// Builder collects the declaration of type T.
type Builder[T any] struct {
	t    *Type
	errs []error
}

// Declare starts the declaration of a tagged type. The pointer type *T
// must implement Object and report tag as its TypeName.
func Declare[T any, P interface {
	*T
	Object
}](tag string) *Builder[T] {
	b := newBuilder[T](tag)
	b.t.newFn = func() Object { return P(new(T)) }
	if tag == "" {
		b.errs = append(b.errs, errors.New("empty type tag"))
	} else if got := P(new(T)).TypeName(); got != tag {
		b.errs = append(b.errs, fmt.Errorf("TypeName %q does not match tag %q", got, tag))
	}
	return b
}

// Struct starts an untagged declaration that other types embed.
func Struct[T any]() *Builder[T] {
	return newBuilder[T]("")
}

func newBuilder[T any](tag string) *Builder[T] {
	return &Builder[T]{t: &Type{tag: tag, rtype: reflect.TypeFor[T]()}}
}

// Spec is a field-level declaration item: a field or an embedded base.
type Spec[T any] interface {
	apply(b *Builder[T])
}

// Fields appends declaration items in order.
func (b *Builder[T]) Fields(specs ...Spec[T]) *Builder[T] {
	for _, s := range specs {
		s.apply(b)
	}
	return b
}

// Compat reads legacyName as currentName in documents older than until.
func (b *Builder[T]) Compat(until core.Version, legacyName, currentName string) *Builder[T] {
	b.t.aliases = append(b.t.aliases, Alias{Legacy: legacyName, Until: until, Target: currentName})
	return b
}

// AfterRead registers a post-read hook. Hooks run in registration order,
// embedded bases first, once all fields of the object are populated.
func (b *Builder[T]) AfterRead(fn func(obj *T, v core.Version) error) *Builder[T] {
	b.t.hooks = append(b.t.hooks, func(obj any, v core.Version) error {
		return fn(obj.(*T), v)
	})
	return b
}

// Build validates the declaration and returns the immutable Type.
// It panics on an invalid declaration.
func (b *Builder[T]) Build() *Type {
	t := b.t
	errs := append([]error(nil), b.errs...)
	errs = append(errs, t.index()...)
	if len(errs) > 0 {
		name := t.tag
		if name == "" {
			name = t.rtype.String()
		}
		panic(fmt.Sprintf("schema: invalid declaration of %s: %v", name, errors.Join(errs...)))
	}
	b.t = &Type{tag: t.tag, rtype: t.rtype, newFn: t.newFn}
	return t
}

type fieldSpec[T any] struct {
	entry *FieldEntry
}

func (s fieldSpec[T]) apply(b *Builder[T]) {
	b.t.fields = append(b.t.fields, s.entry)
}

// Field declares a persisted field. The accessor returns the storage of
// the field within an instance.
func Field[T, F any](name string, accessor func(*T) *F, c Codec[F], opts ...FieldOption) Spec[T] {
	fe := &FieldEntry{
		Name: name,
		Kind: c.Kind(),
		decode: func(d Decoder, obj any, n *document.Node) error {
			return c.Decode(d, n, accessor(obj.(*T)))
		},
		encode: func(e Encoder, obj any) (*document.Node, error) {
			return c.Encode(e, accessor(obj.(*T)))
		},
		get: func(obj any) any {
			return *accessor(obj.(*T))
		},
	}
	for _, opt := range opts {
		opt(fe)
	}
	return fieldSpec[T]{entry: fe}
}

type embedSpec[T, B any] struct {
	accessor func(*T) *B
	base     *Type
}

// Embed splices the fields, aliases and hooks of a base declaration into
// the declaration of T at this position.
func Embed[T, B any](accessor func(*T) *B, base *Type) Spec[T] {
	return embedSpec[T, B]{accessor: accessor, base: base}
}

func (s embedSpec[T, B]) apply(b *Builder[T]) {
	if s.base == nil || s.base.rtype != reflect.TypeFor[B]() {
		b.errs = append(b.errs, fmt.Errorf("embedded declaration is not for %s", reflect.TypeFor[B]()))
		return
	}
	conv := func(obj any) any { return s.accessor(obj.(*T)) }

	for _, f := range s.base.fields {
		c := *f
		c.decode = func(d Decoder, obj any, n *document.Node) error { return f.decode(d, conv(obj), n) }
		c.encode = func(e Encoder, obj any) (*document.Node, error) { return f.encode(e, conv(obj)) }
		c.get = func(obj any) any { return f.get(conv(obj)) }
		b.t.fields = append(b.t.fields, &c)
	}
	for _, a := range s.base.aliases {
		b.t.aliases = append(b.t.aliases, Alias{Legacy: a.Legacy, Until: a.Until, Target: a.Target})
	}
	for _, h := range s.base.hooks {
		b.t.hooks = append(b.t.hooks, func(obj any, v core.Version) error { return h(conv(obj), v) })
	}
}
