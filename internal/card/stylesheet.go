package card

import (
	"math"

	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/document"
	"github.com/leapstack-labs/cardfile/pkg/schema"
)

// DefaultDPI is the resolution of stylesheets that do not declare one.
const DefaultDPI = 150

// StyleSheet describes how the cards of a game are drawn.
type StyleSheet struct {
	Packaged
	Game           *Game
	CardWidth      int
	CardHeight     int
	DPI            int
	CardBackground string
	InitScript     string
	Fonts          []*FontFile
}

func (*StyleSheet) TypeName() string { return "stylesheet" }

var styleSheetType = schema.Declare[StyleSheet]("stylesheet").
	Fields(
		schema.Embed(func(s *StyleSheet) *Packaged { return &s.Packaged }, packagedType),
		schema.Field("game", func(s *StyleSheet) **Game { return &s.Game }, schema.Ref[*Game]("game")),
		schema.Field("card_width", func(s *StyleSheet) *int { return &s.CardWidth }, schema.Int),
		schema.Field("card_height", func(s *StyleSheet) *int { return &s.CardHeight }, schema.Int),
		schema.Field("card_dpi", func(s *StyleSheet) *int { return &s.DPI }, schema.Codec[int](fractionalDPI{}), schema.Until(VersionIntegerDPI)),
		schema.Field("card_dpi", func(s *StyleSheet) *int { return &s.DPI }, schema.Int, schema.Since(VersionIntegerDPI)),
		schema.Field("card_background", func(s *StyleSheet) *string { return &s.CardBackground }, schema.String),
		schema.Field("init_script", func(s *StyleSheet) *string { return &s.InitScript }, schema.String, schema.NoScript()),
		schema.Field("fonts", func(s *StyleSheet) *[]*FontFile { return &s.Fonts }, schema.List(schema.Child[*FontFile]()), schema.NoScript()),
	).
	AfterRead(func(s *StyleSheet, _ core.Version) error {
		if s.DPI == 0 {
			s.DPI = DefaultDPI
		}
		return nil
	}).
	Build()

// fractionalDPI reads the fractional resolution of old stylesheets.
type fractionalDPI struct{}

func (fractionalDPI) Kind() string { return "float" }

func (fractionalDPI) Decode(d schema.Decoder, n *document.Node, dst *int) error {
	var f float64
	if err := schema.Float.Decode(d, n, &f); err != nil {
		return err
	}
	*dst = int(math.Round(f))
	return nil
}

func (fractionalDPI) Encode(e schema.Encoder, src *int) (*document.Node, error) {
	f := float64(*src)
	return schema.Float.Encode(e, &f)
}
