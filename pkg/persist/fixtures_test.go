package persist

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/schema"
	"github.com/leapstack-labs/cardfile/pkg/value"
)

type fontFile struct {
	Name string
	Path string
}

func (*fontFile) TypeName() string { return "font_file" }

var fontFileType = schema.Declare[fontFile]("font_file").
	Fields(
		schema.Field("name", func(f *fontFile) *string { return &f.Name }, schema.String),
		schema.Field("font_path", func(f *fontFile) *string { return &f.Path }, schema.String),
	).
	Compat(2, "path", "font_path").
	AfterRead(func(f *fontFile, _ core.Version) error {
		if f.Name == "" {
			f.Name = strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path))
		}
		return nil
	}).
	Build()

type game struct {
	Name  string
	Title string
}

func (*game) TypeName() string     { return "game" }
func (g *game) UniqueName() string { return g.Name }

var gameType = schema.Declare[game]("game").
	Fields(
		schema.Field("name", func(g *game) *string { return &g.Name }, schema.String),
		schema.Field("title", func(g *game) *string { return &g.Title }, schema.String),
	).
	Build()

type rarity int

const (
	common rarity = iota
	uncommon
	rare
)

type card struct {
	Name     string
	Amount   int
	Rarity   rarity
	Notes    value.Defaultable[string]
	Scripted  string
	Imported  string
	Publisher value.Shared[*game]
}

func (*card) TypeName() string { return "card" }

var cardType = schema.Declare[card]("card").
	Fields(
		schema.Field("name", func(c *card) *string { return &c.Name }, schema.String),
		schema.Field("amount", func(c *card) *int { return &c.Amount }, schema.Int),
		schema.Field("rarity", func(c *card) *rarity { return &c.Rarity }, schema.Enum[rarity]("common", "uncommon", "rare")),
		schema.Field("notes", func(c *card) *value.Defaultable[string] { return &c.Notes }, schema.DefaultableOf(schema.String)),
		schema.Field("scripted", func(c *card) *string { return &c.Scripted }, schema.String, schema.ScriptOnly()),
		schema.Field("imported", func(c *card) *string { return &c.Imported }, schema.String, schema.ReadingOnly()),
		schema.Field("publisher", func(c *card) *value.Shared[*game] { return &c.Publisher }, schema.SharedOf(schema.Ref[*game]("game"))),
	).
	AfterRead(func(c *card, _ core.Version) error {
		if c.Amount < 0 {
			return errors.New("amount must not be negative")
		}
		return nil
	}).
	Build()

type set struct {
	Game      *game
	Title     string
	Cards     []*card
	Fonts     map[string]*fontFile
	Publisher value.Shared[*game]
}

func (*set) TypeName() string { return "set" }

var setType = schema.Declare[set]("set").
	Fields(
		schema.Field("game", func(s *set) **game { return &s.Game }, schema.Ref[*game]("game")),
		schema.Field("title", func(s *set) *string { return &s.Title }, schema.String),
		schema.Field("cards", func(s *set) *[]*card { return &s.Cards }, schema.List(schema.Child[*card]())),
		schema.Field("fonts", func(s *set) *map[string]*fontFile { return &s.Fonts }, schema.Map(schema.Child[*fontFile]())),
		schema.Field("publisher", func(s *set) *value.Shared[*game] { return &s.Publisher }, schema.SharedOf(schema.Ref[*game]("game"))),
	).
	Build()

func newTypes(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := schema.NewRegistry(fontFileType, gameType, cardType, setType)
	require.NoError(t, err)
	return reg
}

// gameShelf resolves games by name, always handing out the same instance.
type gameShelf map[string]*game

func (s gameShelf) Resolve(typeName, name string) (schema.Object, error) {
	if typeName != "game" {
		return nil, errors.New("unsupported reference type " + typeName)
	}
	g, ok := s[name]
	if !ok {
		return nil, &core.ReferenceNotFoundError{Type: typeName, Name: name}
	}
	return g, nil
}
