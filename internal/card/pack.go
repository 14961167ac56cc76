package card

import "github.com/leapstack-labs/cardfile/pkg/schema"

// SelectMode controls how a pack draws from its items.
type SelectMode int

// Select modes.
const (
	SelectAuto SelectMode = iota
	SelectAll
	SelectReplace
	SelectNoReplace
	SelectCyclic
	SelectProportional
	SelectNonEmpty
	SelectEqual
	SelectEqualProportional
	SelectEqualNonEmpty
)

var selectModeNames = []string{
	"auto",
	"all",
	"replace",
	"no replace",
	"cyclic",
	"proportional",
	"nonempty",
	"equal",
	"equal proportional",
	"equal nonempty",
}

// String returns the name the mode is written as.
func (m SelectMode) String() string {
	if m < 0 || int(m) >= len(selectModeNames) {
		return "unknown"
	}
	return selectModeNames[m]
}

// PackType describes a booster or other randomized selection of cards.
type PackType struct {
	Name       string
	Enabled    bool
	Selectable bool
	Summary    bool
	// Filter is a script expression evaluated per card.
	Filter string
	Select SelectMode
	Items  []*PackItem
}

func (*PackType) TypeName() string { return "pack_type" }

var packTypeType = schema.Declare[PackType]("pack_type").
	Fields(
		schema.Field("name", func(p *PackType) *string { return &p.Name }, schema.String),
		schema.Field("enabled", func(p *PackType) *bool { return &p.Enabled }, schema.Bool),
		schema.Field("selectable", func(p *PackType) *bool { return &p.Selectable }, schema.Bool),
		schema.Field("summary", func(p *PackType) *bool { return &p.Summary }, schema.Bool),
		schema.Field("filter", func(p *PackType) *string { return &p.Filter }, schema.String),
		schema.Field("select", func(p *PackType) *SelectMode { return &p.Select }, schema.Enum[SelectMode](selectModeNames...)),
		schema.Field("items", func(p *PackType) *[]*PackItem { return &p.Items }, schema.List(schema.Child[*PackItem]())),
	).
	Build()

// PackItem draws an amount of cards from another pack type.
type PackItem struct {
	Name   string
	Amount int
	Weight float64
}

func (*PackItem) TypeName() string { return "pack_item" }

var packItemType = schema.Declare[PackItem]("pack_item").
	Fields(
		schema.Field("name", func(p *PackItem) *string { return &p.Name }, schema.String),
		schema.Field("amount", func(p *PackItem) *int { return &p.Amount }, schema.Int),
		schema.Field("weight", func(p *PackItem) *float64 { return &p.Weight }, schema.Float),
	).
	Build()
