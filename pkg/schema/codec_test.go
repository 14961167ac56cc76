package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/document"
	"github.com/leapstack-labs/cardfile/pkg/value"
)

// fakeCoder is a minimal Decoder and Encoder over a registry.
type fakeCoder struct {
	reg     *Registry
	refs    map[string]Object
	shared  map[any]any
	version core.Version
}

func newFakeDecoder(t *testing.T) *fakeCoder {
	t.Helper()
	reg, err := NewRegistry(fontType, derivedType, packType)
	require.NoError(t, err)
	return &fakeCoder{reg: reg, refs: map[string]Object{}, version: 3}
}

func (c *fakeCoder) Version() core.Version { return c.version }

func (c *fakeCoder) DecodeObject(n *document.Node) (Object, error) {
	typ, ok := c.reg.Lookup(n.Tag)
	if !ok {
		return nil, ErrSkipped
	}
	obj := typ.New()
	for _, child := range n.Children {
		res := typ.Resolve(c.version, child.Key)
		if res.Kind == ResolveUnknown {
			continue
		}
		if err := res.Entry.Decode(c, obj, child); err != nil && !errors.Is(err, ErrSkipped) {
			return nil, err
		}
	}
	return obj, typ.AfterRead(obj, c.version)
}

func (c *fakeCoder) Resolve(typeName, name string) (Object, error) {
	obj, ok := c.refs[typeName+"/"+name]
	if !ok {
		return nil, &core.ReferenceNotFoundError{Type: typeName, Name: name}
	}
	return obj, nil
}

func (c *fakeCoder) SharedHandle(referent any, create func() any) (any, bool) {
	if h, ok := c.shared[referent]; ok {
		return h, true
	}
	if c.shared == nil {
		c.shared = map[any]any{}
	}
	h := create()
	c.shared[referent] = h
	return h, false
}

func (c *fakeCoder) EncodeObject(obj Object) (*document.Node, error) {
	typ, err := c.reg.TypeOf(obj)
	if err != nil {
		return nil, err
	}
	block := document.NewBlock("", typ.Tag())
	for _, f := range typ.Fields() {
		if !f.Written() {
			continue
		}
		n, err := f.Encode(c, obj)
		if err != nil {
			return nil, err
		}
		if n != nil {
			block.Children = append(block.Children, n)
		}
	}
	return block, nil
}

type selectMode int

const (
	selectReplace selectMode = iota
	selectNoReplace
	selectCyclic
)

type pack struct {
	Name    string
	Select  selectMode
	Amount  value.Defaultable[int]
	Items   []*pack
	Weights map[string]float64
	Font    *font
	Game    *game
}

func (*pack) TypeName() string { return "pack" }

func (p *pack) Clone() *pack {
	c := *p
	c.Items = nil
	for _, it := range p.Items {
		c.Items = append(c.Items, it.Clone())
	}
	return &c
}

type game struct{ Name string }

func (*game) TypeName() string     { return "game" }
func (g *game) UniqueName() string { return g.Name }

var packType = Declare[pack]("pack").
	Fields(
		Field("name", func(p *pack) *string { return &p.Name }, String),
		Field("select", func(p *pack) *selectMode { return &p.Select }, Enum[selectMode]("replace", "no replace", "cyclic")),
		Field("amount", func(p *pack) *value.Defaultable[int] { return &p.Amount }, DefaultableOf(Int)),
		Field("items", func(p *pack) *[]*pack { return &p.Items }, List(Child[*pack]())),
		Field("weights", func(p *pack) *map[string]float64 { return &p.Weights }, Map(Float)),
		Field("font", func(p *pack) **font { return &p.Font }, Child[*font]()),
		Field("game", func(p *pack) **game { return &p.Game }, Ref[*game]("game")),
	).
	Build()

func parseNode(t *testing.T, src string) *document.Node {
	t.Helper()
	doc, err := document.Parse(src)
	require.NoError(t, err)
	require.Len(t, doc.Nodes, 1)
	return doc.Nodes[0]
}

func TestScalarCodecs(t *testing.T) {
	dec := newFakeDecoder(t)

	var i int
	require.NoError(t, Int.Decode(dec, document.NewValue("k", " 42"), &i))
	assert.Equal(t, 42, i)

	var f float64
	require.NoError(t, Float.Decode(dec, document.NewValue("k", "2.5"), &f))
	assert.Equal(t, 2.5, f)

	var b bool
	require.NoError(t, Bool.Decode(dec, document.NewValue("k", "yes"), &b))
	assert.True(t, b)

	var v core.Version
	require.NoError(t, Version.Decode(dec, document.NewValue("k", "0.3.8"), &v))
	assert.Equal(t, core.Version(308), v)

	var m selectMode
	enum := Enum[selectMode]("replace", "no replace", "cyclic")
	require.NoError(t, enum.Decode(dec, document.NewValue("k", "no replace"), &m))
	assert.Equal(t, selectNoReplace, m)

	n, err := enum.Encode(dec, &m)
	require.NoError(t, err)
	assert.Equal(t, "no replace", n.Value)

	m = selectMode(7)
	_, err = enum.Encode(dec, &m)
	assert.Error(t, err)

	f = 0.1
	n, err = Float.Encode(dec, &f)
	require.NoError(t, err)
	assert.Equal(t, "0.1", n.Value)
}

func TestScalarCodecs_Mismatch(t *testing.T) {
	dec := newFakeDecoder(t)
	block := document.NewBlock("k", "font")

	tests := []struct {
		name   string
		decode func() error
		want   string
		value  string
	}{
		{name: "int text", want: "integer", value: "ten", decode: func() error {
			var v int
			return Int.Decode(dec, document.NewValue("k", "ten"), &v)
		}},
		{name: "int empty", want: "integer", value: "", decode: func() error {
			var v int
			return Int.Decode(dec, document.NewValue("k", ""), &v)
		}},
		{name: "float", want: "float", value: "1.2.3", decode: func() error {
			var v float64
			return Float.Decode(dec, document.NewValue("k", "1.2.3"), &v)
		}},
		{name: "bool", want: "boolean", value: "maybe", decode: func() error {
			var v bool
			return Bool.Decode(dec, document.NewValue("k", "maybe"), &v)
		}},
		{name: "enum", want: "enum(replace|no replace|cyclic)", value: "random", decode: func() error {
			var v selectMode
			return Enum[selectMode]("replace", "no replace", "cyclic").Decode(dec, document.NewValue("k", "random"), &v)
		}},
		{name: "string from block", want: "string", value: "!font", decode: func() error {
			var v string
			return String.Decode(dec, block, &v)
		}},
		{name: "list from scalar", want: "sequence", value: "x", decode: func() error {
			var v []string
			return List(String).Decode(dec, document.NewValue("k", "x"), &v)
		}},
		{name: "child without tag", want: "object", value: "x", decode: func() error {
			var v *font
			return Child[*font]().Decode(dec, document.NewValue("k", "x"), &v)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decode()
			var mismatch *core.TypeMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Equal(t, tt.want, mismatch.Want)
			assert.Equal(t, tt.value, mismatch.Value)
		})
	}
}

func TestContainerCodecs_Decode(t *testing.T) {
	dec := newFakeDecoder(t)
	g := &game{Name: "magic"}
	dec.refs["game/magic"] = g

	n := parseNode(t, `pack: !pack
	name: booster
	select: cyclic
	items:
		- !pack
			name: rare
		- !mystery
			x: 1
		- !pack
			name: common
	weights:
		rare: 1
		common: 10
		rare: 2
	font: !font
		name: Beleren
	game: magic
`)
	var p *pack
	require.NoError(t, Child[*pack]().Decode(dec, n, &p))
	require.NotNil(t, p)

	assert.Equal(t, "booster", p.Name)
	assert.Equal(t, selectCyclic, p.Select)
	assert.True(t, p.Amount.IsDefault())
	require.Len(t, p.Items, 2, "unknown element type is skipped")
	assert.Equal(t, "rare", p.Items[0].Name)
	assert.Equal(t, "common", p.Items[1].Name)
	assert.Equal(t, map[string]float64{"rare": 2, "common": 10}, p.Weights)
	require.NotNil(t, p.Font)
	assert.Equal(t, "Beleren", p.Font.Name)
	assert.Same(t, g, p.Game)
}

func TestContainerCodecs_Errors(t *testing.T) {
	dec := newFakeDecoder(t)

	n := parseNode(t, "game: nowhere\n")
	var g *game
	err := Ref[*game]("game").Decode(dec, n, &g)
	var notFound *core.ReferenceNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nowhere", notFound.Name)

	n = parseNode(t, "items:\n\t- one\n\t- two\n\t- x\n")
	var ints []int
	err = List(Int).Decode(dec, n, &ints)
	var elem *ElementError
	require.ErrorAs(t, err, &elem)
	assert.Equal(t, 0, elem.Index)
	assert.Equal(t, "[0]", elem.Segment())
	assert.Equal(t, 2, elem.Pos.Line)

	n = parseNode(t, "font: !pack\n")
	var f *font
	err = Child[*font]().Decode(dec, n, &f)
	var mismatch *core.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "!pack", mismatch.Value)

	n = parseNode(t, "font: !mystery\n")
	err = Child[*font]().Decode(dec, n, &f)
	assert.ErrorIs(t, err, ErrSkipped)

	n = parseNode(t, "weights:\n\t- 1\n")
	var w map[string]float64
	err = Map(Float).Decode(dec, n, &w)
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "mapping", mismatch.Want)
}

func TestContainerCodecs_Encode(t *testing.T) {
	enc := newFakeDecoder(t)
	p := &pack{
		Name:    "booster",
		Select:  selectNoReplace,
		Amount:  value.Explicit(15),
		Items:   []*pack{{Name: "rare"}},
		Weights: map[string]float64{"b": 2, "a": 1},
		Game:    &game{Name: "magic"},
	}

	n, err := Child[*pack]().Encode(enc, &p)
	require.NoError(t, err)
	n.Key = "pack"
	out := document.Print(&document.Document{Nodes: []*document.Node{n}})

	assert.Equal(t, `pack: !pack
	name: booster
	select: no replace
	amount: 15
	items:
		- !pack
			name: rare
			select: replace
			items:
			weights:
	weights:
		a: 1
		b: 2
	game: magic
`, out)
}

func TestOwnedAndShared(t *testing.T) {
	dec := newFakeDecoder(t)
	n := parseNode(t, "pack: !pack\n\tname: solo\n")

	var owned value.Owned[*pack]
	require.NoError(t, OwnedOf[*pack]().Decode(dec, n, &owned))
	require.False(t, owned.IsEmpty())
	assert.Equal(t, "solo", owned.Get().Name)

	var shared value.Shared[*pack]
	require.NoError(t, SharedOf(Child[*pack]()).Decode(dec, n, &shared))
	assert.Equal(t, 1, shared.Refs())
	assert.Equal(t, "solo", shared.Get().Name)

	var empty value.Owned[*pack]
	out, err := OwnedOf[*pack]().Encode(dec, &empty)
	require.NoError(t, err)
	assert.Nil(t, out)

	var none value.Shared[*pack]
	out, err = SharedOf(Child[*pack]()).Encode(dec, &none)
	require.NoError(t, err)
	assert.Nil(t, out)

	out, err = OwnedOf[*pack]().Encode(dec, &owned)
	require.NoError(t, err)
	assert.Equal(t, "pack", out.Tag)
}

func TestDefaultableOf(t *testing.T) {
	dec := newFakeDecoder(t)
	c := DefaultableOf(Int)

	var d value.Defaultable[int]
	out, err := c.Encode(dec, &d)
	require.NoError(t, err)
	assert.Nil(t, out, "inherited values are omitted")

	require.NoError(t, c.Decode(dec, document.NewValue("k", "0"), &d))
	assert.False(t, d.IsDefault())
	assert.Equal(t, 0, d.Effective(9))

	out, err = c.Encode(dec, &d)
	require.NoError(t, err)
	assert.Equal(t, "0", out.Value)
}
