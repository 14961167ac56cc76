package card

import (
	"github.com/leapstack-labs/cardfile/pkg/schema"
	"github.com/leapstack-labs/cardfile/pkg/value"
)

// Field describes one editable value of a card or set.
// Concrete fields are TextField, ChoiceField and BooleanField.
type Field interface {
	schema.Object
	Base() *FieldBase
}

// FieldBase holds what all field kinds share.
type FieldBase struct {
	Name           string
	Description    string
	Editable       value.Defaultable[bool]
	ShowStatistics bool
	PositionHint   int
}

// IsEditable resolves Editable, which defaults to true.
func (f *FieldBase) IsEditable() bool {
	return f.Editable.Effective(true)
}

var fieldBaseType = schema.Struct[FieldBase]().
	Fields(
		schema.Field("name", func(f *FieldBase) *string { return &f.Name }, schema.String),
		schema.Field("description", func(f *FieldBase) *string { return &f.Description }, schema.String),
		schema.Field("editable", func(f *FieldBase) *value.Defaultable[bool] { return &f.Editable }, schema.DefaultableOf(schema.Bool)),
		schema.Field("show_statistics", func(f *FieldBase) *bool { return &f.ShowStatistics }, schema.Bool),
		schema.Field("position_hint", func(f *FieldBase) *int { return &f.PositionHint }, schema.Int),
	).
	Build()

// TextField is a free text field.
type TextField struct {
	FieldBase
	MultiLine bool
	Default   value.Defaultable[string]
	Script    string
}

func (*TextField) TypeName() string { return "text" }

// Base returns the shared field properties.
func (f *TextField) Base() *FieldBase { return &f.FieldBase }

var textFieldType = schema.Declare[TextField]("text").
	Fields(
		schema.Embed(func(f *TextField) *FieldBase { return &f.FieldBase }, fieldBaseType),
		schema.Field("multi_line", func(f *TextField) *bool { return &f.MultiLine }, schema.Bool),
		schema.Field("default", func(f *TextField) *value.Defaultable[string] { return &f.Default }, schema.DefaultableOf(schema.String)),
		schema.Field("script", func(f *TextField) *string { return &f.Script }, schema.String),
	).
	Build()

// ChoiceField selects one of a tree of named choices.
type ChoiceField struct {
	FieldBase
	Choices              []*Choice
	Initial              value.Defaultable[string]
	ChoiceColors         map[string]string
	ChoiceColorsCardlist map[string]string
}

func (*ChoiceField) TypeName() string { return "choice" }

// Base returns the shared field properties.
func (f *ChoiceField) Base() *FieldBase { return &f.FieldBase }

// ChoiceNames returns the names of all leaf choices, depth first. Nested
// choices are named "group parent child".
func (f *ChoiceField) ChoiceNames() []string {
	var out []string
	var walk func(prefix string, cs []*Choice)
	walk = func(prefix string, cs []*Choice) {
		for _, c := range cs {
			name := c.Name
			if prefix != "" {
				name = prefix + " " + c.Name
			}
			if len(c.Choices) == 0 {
				out = append(out, name)
				continue
			}
			walk(name, c.Choices)
		}
	}
	walk("", f.Choices)
	return out
}

var choiceFieldType = schema.Declare[ChoiceField]("choice").
	Fields(
		schema.Embed(func(f *ChoiceField) *FieldBase { return &f.FieldBase }, fieldBaseType),
		schema.Field("choices", func(f *ChoiceField) *[]*Choice { return &f.Choices }, schema.List(schema.Child[*Choice]())),
		schema.Field("initial", func(f *ChoiceField) *value.Defaultable[string] { return &f.Initial }, schema.DefaultableOf(schema.String)),
		schema.Field("choice_colors", func(f *ChoiceField) *map[string]string { return &f.ChoiceColors }, schema.Map(schema.String)),
		schema.Field("choice_colors_cardlist", func(f *ChoiceField) *map[string]string { return &f.ChoiceColorsCardlist },
			schema.Map(schema.String), schema.NoScript()),
	).
	Build()

// Choice is one option of a ChoiceField, possibly with sub choices.
type Choice struct {
	Name      string
	LineBelow bool
	Choices   []*Choice
}

func (*Choice) TypeName() string { return "choice_option" }

var choiceType = schema.Declare[Choice]("choice_option").
	Fields(
		schema.Field("name", func(c *Choice) *string { return &c.Name }, schema.String),
		schema.Field("line_below", func(c *Choice) *bool { return &c.LineBelow }, schema.Bool),
		schema.Field("choices", func(c *Choice) *[]*Choice { return &c.Choices }, schema.List(schema.Child[*Choice]())),
	).
	Build()

// BooleanField is a yes/no field.
type BooleanField struct {
	FieldBase
	Initial value.Defaultable[bool]
}

func (*BooleanField) TypeName() string { return "boolean" }

// Base returns the shared field properties.
func (f *BooleanField) Base() *FieldBase { return &f.FieldBase }

var booleanFieldType = schema.Declare[BooleanField]("boolean").
	Fields(
		schema.Embed(func(f *BooleanField) *FieldBase { return &f.FieldBase }, fieldBaseType),
		schema.Field("initial", func(f *BooleanField) *value.Defaultable[bool] { return &f.Initial }, schema.DefaultableOf(schema.Bool)),
	).
	Build()
