package card

import (
	"fmt"

	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/schema"
)

// AnyCardPack is the name of the pack added to games that declare none.
const AnyCardPack = "Any card"

// Game defines the fields and rules of a kind of card game.
type Game struct {
	Packaged
	InitScript           string
	SetFields            []Field
	CardFields           []Field
	StatisticsDimensions []*StatsDimension
	StatisticsCategories []*StatsCategory
	PackTypes            []*PackType
	HasKeywords          bool
	Keywords             []*Keyword
	WordLists            []*WordList

	autoDimensions []*StatsDimension
	autoCategories []*StatsCategory
}

func (*Game) TypeName() string { return "game" }

// IsMagic reports whether this is the Magic game, which some features special-case.
func (g *Game) IsMagic() bool {
	return g.UniqueName() == "magic"
}

// CardField returns the card field with the given name.
func (g *Game) CardField(name string) (Field, bool) {
	for _, f := range g.CardFields {
		if f.Base().Name == name {
			return f, true
		}
	}
	return nil, false
}

// Dimensions returns the statistics dimensions: one per card field shown
// in statistics, followed by the declared ones.
func (g *Game) Dimensions() []*StatsDimension {
	out := make([]*StatsDimension, 0, len(g.autoDimensions)+len(g.StatisticsDimensions))
	out = append(out, g.autoDimensions...)
	return append(out, g.StatisticsDimensions...)
}

// Categories returns the statistics categories: one per dimension,
// followed by the declared ones.
func (g *Game) Categories() []*StatsCategory {
	out := make([]*StatsCategory, 0, len(g.autoCategories)+len(g.StatisticsCategories))
	out = append(out, g.autoCategories...)
	return append(out, g.StatisticsCategories...)
}

// validate derives automatic statistics and the default pack.
func (g *Game) validate(core.Version) error {
	seen := make(map[string]bool, len(g.CardFields))
	g.autoDimensions = g.autoDimensions[:0]
	for _, f := range g.CardFields {
		b := f.Base()
		if b.Name == "" {
			return fmt.Errorf("card field without a name")
		}
		if seen[b.Name] {
			return fmt.Errorf("card field %q declared twice", b.Name)
		}
		seen[b.Name] = true
		if b.ShowStatistics {
			g.autoDimensions = append(g.autoDimensions, dimensionFor(f))
		}
	}

	g.autoCategories = g.autoCategories[:0]
	for _, d := range g.Dimensions() {
		g.autoCategories = append(g.autoCategories, &StatsCategory{
			Name:        d.Name,
			Description: d.Description,
			Dimension:   d.Name,
		})
	}

	if len(g.PackTypes) == 0 {
		g.PackTypes = append(g.PackTypes, &PackType{
			Name:       AnyCardPack,
			Enabled:    true,
			Selectable: true,
			Summary:    true,
			Filter:     "True",
			Select:     SelectNoReplace,
		})
	}
	return nil
}

var gameType = schema.Declare[Game]("game").
	Fields(
		schema.Embed(func(g *Game) *Packaged { return &g.Packaged }, packagedType),
		schema.Field("init_script", func(g *Game) *string { return &g.InitScript }, schema.String, schema.NoScript()),
		schema.Field("set_fields", func(g *Game) *[]Field { return &g.SetFields }, schema.List(schema.Child[Field]()), schema.NoScript()),
		schema.Field("card_fields", func(g *Game) *[]Field { return &g.CardFields }, schema.List(schema.Child[Field]()), schema.NoScript()),
		schema.Field("statistics_dimensions", func(g *Game) *[]*StatsDimension { return &g.StatisticsDimensions },
			schema.List(schema.Child[*StatsDimension]()), schema.NoScript()),
		schema.Field("statistics_categories", func(g *Game) *[]*StatsCategory { return &g.StatisticsCategories },
			schema.List(schema.Child[*StatsCategory]()), schema.NoScript()),
		schema.Field("pack_types", func(g *Game) *[]*PackType { return &g.PackTypes },
			schema.List(schema.Child[*PackType]()), schema.NoScript()),
		schema.Field("has_keywords", func(g *Game) *bool { return &g.HasKeywords }, schema.Bool),
		schema.Field("keywords", func(g *Game) *[]*Keyword { return &g.Keywords }, schema.List(schema.Child[*Keyword]()), schema.NoScript()),
		schema.Field("word_lists", func(g *Game) *[]*WordList { return &g.WordLists }, schema.List(schema.Child[*WordList]()), schema.NoScript()),
	).
	Compat(VersionPackTypes, "pack_item", "pack_types").
	AfterRead((*Game).validate).
	Build()

// StatsDimension is an axis cards can be grouped by in statistics.
type StatsDimension struct {
	Name         string
	Description  string
	PositionHint int
	// Script computes the value of a card along the dimension.
	Script  string
	Numeric bool
}

func (*StatsDimension) TypeName() string { return "statistics_dimension" }

func dimensionFor(f Field) *StatsDimension {
	b := f.Base()
	return &StatsDimension{
		Name:         b.Name,
		Description:  b.Description,
		PositionHint: b.PositionHint,
		Script:       fmt.Sprintf("card.data.get(%q, \"\")", b.Name),
	}
}

var statsDimensionType = schema.Declare[StatsDimension]("statistics_dimension").
	Fields(
		schema.Field("name", func(d *StatsDimension) *string { return &d.Name }, schema.String),
		schema.Field("description", func(d *StatsDimension) *string { return &d.Description }, schema.String),
		schema.Field("position_hint", func(d *StatsDimension) *int { return &d.PositionHint }, schema.Int),
		schema.Field("script", func(d *StatsDimension) *string { return &d.Script }, schema.String),
		schema.Field("numeric", func(d *StatsDimension) *bool { return &d.Numeric }, schema.Bool),
	).
	Build()

// StatsCategory is a named view over one dimension.
type StatsCategory struct {
	Name        string
	Description string
	Dimension   string
}

func (*StatsCategory) TypeName() string { return "statistics_category" }

var statsCategoryType = schema.Declare[StatsCategory]("statistics_category").
	Fields(
		schema.Field("name", func(c *StatsCategory) *string { return &c.Name }, schema.String),
		schema.Field("description", func(c *StatsCategory) *string { return &c.Description }, schema.String),
		schema.Field("dimension", func(c *StatsCategory) *string { return &c.Dimension }, schema.String),
	).
	Build()

// Keyword is an ability word with reminder text.
type Keyword struct {
	Keyword  string
	Match    string
	Reminder string
	Mode     string
}

func (*Keyword) TypeName() string { return "keyword" }

var keywordType = schema.Declare[Keyword]("keyword").
	Fields(
		schema.Field("keyword", func(k *Keyword) *string { return &k.Keyword }, schema.String),
		schema.Field("match", func(k *Keyword) *string { return &k.Match }, schema.String),
		schema.Field("reminder", func(k *Keyword) *string { return &k.Reminder }, schema.String),
		schema.Field("mode", func(k *Keyword) *string { return &k.Mode }, schema.String),
	).
	Build()
