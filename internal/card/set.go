package card

import (
	"github.com/leapstack-labs/cardfile/pkg/schema"
	"github.com/leapstack-labs/cardfile/pkg/value"
)

// Set is a collection of cards designed for a game.
type Set struct {
	Game       *Game
	StyleSheet value.Shared[*StyleSheet]
	SetInfo    map[string]string
	Cards      []*Card
	Keywords   []*Keyword
	// ApprenticeCode is only present in sets exported for Apprentice.
	ApprenticeCode string
}

func (*Set) TypeName() string { return "set" }

// StyleFor returns the stylesheet used for c.
func (s *Set) StyleFor(c *Card) *StyleSheet {
	if c.StyleSheet.Valid() {
		return c.StyleSheet.Get()
	}
	return s.StyleSheet.Get()
}

var setType = schema.Declare[Set]("set").
	Fields(
		schema.Field("game", func(s *Set) **Game { return &s.Game }, schema.Ref[*Game]("game")),
		schema.Field("stylesheet", func(s *Set) *value.Shared[*StyleSheet] { return &s.StyleSheet },
			schema.SharedOf(schema.Ref[*StyleSheet]("stylesheet"))),
		schema.Field("set_info", func(s *Set) *map[string]string { return &s.SetInfo }, schema.Map(schema.String)),
		schema.Field("cards", func(s *Set) *[]*Card { return &s.Cards }, schema.List(schema.Child[*Card]())),
		schema.Field("keywords", func(s *Set) *[]*Keyword { return &s.Keywords }, schema.List(schema.Child[*Keyword]())),
		schema.Field("apprentice_code", func(s *Set) *string { return &s.ApprenticeCode }, schema.String, schema.ReadingOnly()),
		schema.Field("card_count", func(s *Set) *int {
			n := len(s.Cards)
			return &n
		}, schema.Int, schema.ScriptOnly()),
	).
	Build()

// Card is one card of a set. Data maps card field names to values.
type Card struct {
	StyleSheet value.Shared[*StyleSheet]
	Notes      string
	Data       map[string]string
}

func (*Card) TypeName() string { return "card" }

// Value returns the value of the named card field.
func (c *Card) Value(field string) string {
	return c.Data[field]
}

var cardType = schema.Declare[Card]("card").
	Fields(
		schema.Field("stylesheet", func(c *Card) *value.Shared[*StyleSheet] { return &c.StyleSheet },
			schema.SharedOf(schema.Ref[*StyleSheet]("stylesheet"))),
		schema.Field("notes", func(c *Card) *string { return &c.Notes }, schema.String),
		schema.Field("data", func(c *Card) *map[string]string { return &c.Data }, schema.Map(schema.String)),
	).
	Build()
