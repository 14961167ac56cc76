package schema

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/document"
	"github.com/leapstack-labs/cardfile/pkg/token"
	"github.com/leapstack-labs/cardfile/pkg/value"
)

// isEmpty returns true for a node that carries neither payload nor block.
func isEmpty(n *document.Node) bool {
	return n.Value == "" && !n.IsBlock()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return rv.IsNil()
	}
	return false
}

type childCodec[I Object] struct{}

// Child returns a codec for an exclusively owned nested object. The block
// tag selects the concrete type, which must implement I.
func Child[I Object]() Codec[I] {
	return childCodec[I]{}
}

func (childCodec[I]) Kind() string { return "object" }

func (c childCodec[I]) Decode(d Decoder, n *document.Node, dst *I) error {
	if isEmpty(n) {
		var zero I
		*dst = zero
		return nil
	}
	if n.Tag == "" {
		return &core.TypeMismatchError{Want: c.Kind(), Value: n.Value}
	}
	obj, err := d.DecodeObject(n)
	if err != nil {
		return err
	}
	v, ok := obj.(I)
	if !ok {
		return &core.TypeMismatchError{
			Want:  fmt.Sprintf("%s implementing %s", c.Kind(), reflect.TypeFor[I]()),
			Value: "!" + n.Tag,
		}
	}
	*dst = v
	return nil
}

func (childCodec[I]) Encode(e Encoder, src *I) (*document.Node, error) {
	if isNil(*src) {
		return nil, nil
	}
	return e.EncodeObject(*src)
}

type ownedCodec[P interface {
	Object
	value.Cloner[P]
}] struct {
	child childCodec[P]
}

// OwnedOf returns a codec for a value.Owned child.
func OwnedOf[P interface {
	Object
	value.Cloner[P]
}]() Codec[value.Owned[P]] {
	return ownedCodec[P]{}
}

func (c ownedCodec[P]) Kind() string { return c.child.Kind() }

func (c ownedCodec[P]) Decode(d Decoder, n *document.Node, dst *value.Owned[P]) error {
	var p P
	if err := c.child.Decode(d, n, &p); err != nil {
		return err
	}
	if isNil(p) {
		*dst = value.Owned[P]{}
		return nil
	}
	*dst = value.Own(p)
	return nil
}

func (c ownedCodec[P]) Encode(e Encoder, src *value.Owned[P]) (*document.Node, error) {
	if src.IsEmpty() {
		return nil, nil
	}
	p := src.Get()
	return c.child.Encode(e, &p)
}

type sharedCodec[T any] struct {
	inner Codec[T]
}

// SharedOf returns a codec for a value.Shared field. Within one read, every
// field that decodes to the same comparable value holds a copy of a single
// handle, so Same reports true between them and Refs counts the holders.
func SharedOf[T any](inner Codec[T]) Codec[value.Shared[T]] {
	return sharedCodec[T]{inner: inner}
}

func (c sharedCodec[T]) Kind() string { return c.inner.Kind() }

func (c sharedCodec[T]) Decode(d Decoder, n *document.Node, dst *value.Shared[T]) error {
	var v T
	if err := c.inner.Decode(d, n, &v); err != nil {
		return err
	}
	dst.Release()
	if isNil(v) {
		return nil
	}
	if !reflect.TypeOf(v).Comparable() {
		*dst = value.Share(v)
		return nil
	}
	h, found := d.SharedHandle(v, func() any { return value.Share(v) })
	handle := h.(value.Shared[T])
	if found {
		handle = handle.Copy()
	}
	*dst = handle
	return nil
}

func (c sharedCodec[T]) Encode(e Encoder, src *value.Shared[T]) (*document.Node, error) {
	if !src.Valid() {
		return nil, nil
	}
	v := src.Get()
	return c.inner.Encode(e, &v)
}

type defaultableCodec[T comparable] struct {
	inner Codec[T]
}

// DefaultableOf returns a codec for a value.Defaultable field. Inheriting
// values are omitted on write and stay inheriting when the key is absent.
func DefaultableOf[T comparable](inner Codec[T]) Codec[value.Defaultable[T]] {
	return defaultableCodec[T]{inner: inner}
}

func (c defaultableCodec[T]) Kind() string { return c.inner.Kind() }

func (c defaultableCodec[T]) Decode(d Decoder, n *document.Node, dst *value.Defaultable[T]) error {
	var v T
	if err := c.inner.Decode(d, n, &v); err != nil {
		return err
	}
	dst.Set(v)
	return nil
}

func (c defaultableCodec[T]) Encode(e Encoder, src *value.Defaultable[T]) (*document.Node, error) {
	v, ok := src.Get()
	if !ok {
		return nil, nil
	}
	return c.inner.Encode(e, &v)
}

type listCodec[E any] struct {
	inner Codec[E]
}

// List returns a codec for an ordered sequence. Document order is kept.
func List[E any](inner Codec[E]) Codec[[]E] {
	return listCodec[E]{inner: inner}
}

func (c listCodec[E]) Kind() string { return "sequence" }

func (c listCodec[E]) Decode(d Decoder, n *document.Node, dst *[]E) error {
	if n.Tag != "" || n.Value != "" {
		return &core.TypeMismatchError{Want: c.Kind(), Value: payload(n)}
	}
	out := make([]E, 0, len(n.Children))
	for i, item := range n.Children {
		if !item.Item {
			return &core.TypeMismatchError{Want: c.Kind(), Value: item.Key}
		}
		var v E
		err := c.inner.Decode(d, item, &v)
		if errors.Is(err, ErrSkipped) {
			continue
		}
		if err != nil {
			return &ElementError{Index: i, Pos: item.Pos, Err: err}
		}
		out = append(out, v)
	}
	*dst = out
	return nil
}

func (c listCodec[E]) Encode(e Encoder, src *[]E) (*document.Node, error) {
	block := document.NewBlock("", "")
	for i := range *src {
		n, err := c.inner.Encode(e, &(*src)[i])
		if err != nil {
			return nil, &ElementError{Index: i, Err: err}
		}
		if n == nil {
			n = &document.Node{}
		}
		block.Children = append(block.Children, document.NewItem(n))
	}
	return block, nil
}

type mapCodec[E any] struct {
	inner Codec[E]
}

// Map returns a codec for a name-keyed mapping. On read the last of
// duplicate keys wins; on write keys are sorted.
func Map[E any](inner Codec[E]) Codec[map[string]E] {
	return mapCodec[E]{inner: inner}
}

func (c mapCodec[E]) Kind() string { return "mapping" }

func (c mapCodec[E]) Decode(d Decoder, n *document.Node, dst *map[string]E) error {
	if n.Tag != "" || n.Value != "" {
		return &core.TypeMismatchError{Want: c.Kind(), Value: payload(n)}
	}
	out := make(map[string]E, len(n.Children))
	for _, child := range n.Children {
		if child.Item {
			return &core.TypeMismatchError{Want: c.Kind(), Value: "-"}
		}
		var v E
		err := c.inner.Decode(d, child, &v)
		if errors.Is(err, ErrSkipped) {
			continue
		}
		if err != nil {
			return &ElementError{Key: child.Key, Pos: child.Pos, Err: err}
		}
		out[child.Key] = v
	}
	*dst = out
	return nil
}

func (c mapCodec[E]) Encode(e Encoder, src *map[string]E) (*document.Node, error) {
	keys := make([]string, 0, len(*src))
	for k := range *src {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	block := document.NewBlock("", "")
	for _, k := range keys {
		v := (*src)[k]
		n, err := c.inner.Encode(e, &v)
		if err != nil {
			return nil, &ElementError{Key: k, Err: err}
		}
		if n == nil {
			n = &document.Node{}
		}
		n.Key = k
		block.Children = append(block.Children, n)
	}
	return block, nil
}

type refCodec[T Named] struct {
	typeName string
}

// Ref returns a codec for a named reference. Only the unique name of the
// referenced object is persisted; reads resolve it through the Decoder.
func Ref[T Named](typeName string) Codec[T] {
	return refCodec[T]{typeName: typeName}
}

func (c refCodec[T]) Kind() string { return "reference" }

func (c refCodec[T]) Decode(d Decoder, n *document.Node, dst *T) error {
	name, err := scalar(n, c.Kind())
	if err != nil {
		return err
	}
	var zero T
	if name == "" {
		*dst = zero
		return nil
	}
	obj, err := d.Resolve(c.typeName, name)
	if err != nil {
		return err
	}
	v, ok := obj.(T)
	if !ok {
		return &core.TypeMismatchError{Want: c.typeName, Value: name}
	}
	*dst = v
	return nil
}

func (c refCodec[T]) Encode(_ Encoder, src *T) (*document.Node, error) {
	if isNil(*src) {
		return nil, nil
	}
	return document.NewValue("", (*src).UniqueName()), nil
}

func payload(n *document.Node) string {
	if n.Tag != "" {
		return "!" + n.Tag
	}
	return n.Value
}

// ElementError locates a failure inside a sequence or mapping.
type ElementError struct {
	Index int
	Key   string
	Pos   token.Position
	Err   error
}

func (e *ElementError) Error() string {
	return e.Err.Error()
}

func (e *ElementError) Unwrap() error {
	return e.Err
}

// Segment returns the path segment of the element, "[i]" or ".key".
func (e *ElementError) Segment() string {
	if e.Key != "" {
		return "." + e.Key
	}
	return fmt.Sprintf("[%d]", e.Index)
}
