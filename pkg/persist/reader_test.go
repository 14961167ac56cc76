package persist

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cardfile/internal/testutil"
	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/document"
)

func TestRead_RenamedFontPath(t *testing.T) {
	types := newTypes(t)
	r := NewReader(types, WithLogger(testutil.NewTestLogger(t)))

	f := &fontFile{}
	res, err := r.ReadBytes([]byte(testutil.Lines(
		"mse_version: 1",
		"name: X",
		"path: a.ttf",
	)), f)
	require.NoError(t, err)
	assert.Equal(t, core.Version(1), res.Version)
	assert.False(t, res.HasWarnings())
	assert.Equal(t, "X", f.Name)
	assert.Equal(t, "a.ttf", f.Path)

	out, err := NewWriter(types, WithVersion(2)).Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, testutil.Lines(
		"mse_version: 2",
		"name: X",
		"font_path: a.ttf",
	), string(out))
}

func TestRead_AliasDeterminism(t *testing.T) {
	types := newTypes(t)
	r := NewReader(types)

	old := &fontFile{}
	_, err := r.ReadBytes([]byte("mse_version: 1\nname: X\npath: fonts/a.ttf\n"), old)
	require.NoError(t, err)

	cur := &fontFile{}
	_, err = r.ReadBytes([]byte("mse_version: 2\nname: X\nfont_path: fonts/a.ttf\n"), cur)
	require.NoError(t, err)

	assert.Equal(t, old, cur)

	// At the rename boundary the legacy key is no longer consumed.
	late := &fontFile{}
	res, err := r.ReadBytes([]byte("mse_version: 2\nname: X\npath: fonts/a.ttf\n"), late)
	require.NoError(t, err)
	assert.Empty(t, late.Path)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "path", res.Warnings[0].Key)
}

func TestRead_DottedVersion(t *testing.T) {
	f := &fontFile{}
	res, err := NewReader(newTypes(t)).ReadBytes([]byte("mse_version: 0.0.1\npath: a.ttf\n"), f)
	require.NoError(t, err)
	assert.Equal(t, core.Version(1), res.Version)
	assert.Equal(t, "a.ttf", f.Path)
}

func TestRead_PostReadHookBackfillsName(t *testing.T) {
	f := &fontFile{}
	_, err := NewReader(newTypes(t)).ReadBytes([]byte("mse_version: 1\npath: fonts/Beleren Bold.ttf\n"), f)
	require.NoError(t, err)
	assert.Equal(t, "Beleren Bold", f.Name)
}

func TestRead_VersionMonotonicity(t *testing.T) {
	types := newTypes(t)
	for w := core.Version(0); w <= 5; w++ {
		for v := core.Version(0); v <= 5; v++ {
			t.Run(fmt.Sprintf("doc %d reader %d", v, w), func(t *testing.T) {
				r := NewReader(types, WithMaxVersion(w))
				_, err := r.ReadBytes([]byte(fmt.Sprintf("mse_version: %d\nname: n\n", v)), &game{})
				if v <= w {
					assert.NoError(t, err)
					return
				}
				var unsupported *core.UnsupportedVersionError
				require.ErrorAs(t, err, &unsupported)
				assert.Equal(t, v, unsupported.Version)
				assert.Equal(t, w, unsupported.Max)
			})
		}
	}
}

func TestRead_UnknownKeyTolerance(t *testing.T) {
	src := testutil.Lines(
		"mse_version: 3",
		"title: Alpha",
		"colour: red",
		"cards:",
		"\t- !card",
		"\t\tname: Lotus",
		"\t\tfoil:",
		"\t\t\tdepth: 2",
	)

	logger, logs := testutil.NewCaptureLogger(slog.LevelWarn)
	s := &set{}
	res, err := NewReader(newTypes(t), WithLogger(logger)).ReadBytes([]byte(src), s)
	require.NoError(t, err)

	assert.Equal(t, "Alpha", s.Title)
	require.Len(t, s.Cards, 1)
	assert.Equal(t, "Lotus", s.Cards[0].Name)

	require.Len(t, res.Warnings, 2)
	assert.Equal(t, core.UnknownKey, res.Warnings[0].Kind)
	assert.Equal(t, "colour", res.Warnings[0].Path)
	assert.Equal(t, 3, res.Warnings[0].Pos.Line)
	assert.Equal(t, "cards[0].foil", res.Warnings[1].Path)
	assert.Equal(t, core.Version(3), res.Warnings[1].Version)

	assert.Contains(t, logs.String(), "colour")
	assert.Contains(t, logs.String(), "level=WARN")
}

func TestRead_UnknownTypeSkipped(t *testing.T) {
	src := testutil.Lines(
		"mse_version: 3",
		"cards:",
		"\t- !card",
		"\t\tname: a",
		"\t- !token",
		"\t\tname: b",
		"\t- !card",
		"\t\tname: c",
		"fonts:",
		"\tbody: !typeface",
	)
	s := &set{}
	res, err := NewReader(newTypes(t)).ReadBytes([]byte(src), s)
	require.NoError(t, err)

	require.Len(t, s.Cards, 2)
	assert.Equal(t, "a", s.Cards[0].Name)
	assert.Equal(t, "c", s.Cards[1].Name)
	assert.Empty(t, s.Fonts)

	require.Len(t, res.Warnings, 2)
	assert.Equal(t, core.UnknownType, res.Warnings[0].Kind)
	assert.Equal(t, "token", res.Warnings[0].Tag)
	assert.Equal(t, "cards[1]", res.Warnings[0].Path)
	assert.Equal(t, "fonts.body", res.Warnings[1].Path)
}

func TestRead_Strict(t *testing.T) {
	r := NewReader(newTypes(t), WithStrict(true))
	_, err := r.ReadBytes([]byte("mse_version: 3\nname: n\ncolour: red\n"), &game{})

	var strict *StrictError
	require.ErrorAs(t, err, &strict)
	assert.Equal(t, "colour", strict.Warning.Key)

	var de *core.DocumentError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "colour", de.Path)
	assert.Equal(t, 3, de.Pos.Line)
}

func TestRead_SharedIdentity(t *testing.T) {
	magic := &game{Name: "magic", Title: "Magic"}
	r := NewReader(newTypes(t), WithRefs(gameShelf{"magic": magic}))

	a, b := &set{}, &set{}
	_, err := r.ReadBytes([]byte("mse_version: 3\ngame: magic\ntitle: A\n"), a)
	require.NoError(t, err)
	_, err = r.ReadBytes([]byte("mse_version: 3\ngame: magic\ntitle: B\n"), b)
	require.NoError(t, err)

	require.NotNil(t, a.Game)
	assert.Same(t, a.Game, b.Game)

	a.Game.Title = "Magic: The Gathering"
	assert.Equal(t, "Magic: The Gathering", b.Game.Title)
}

func TestRead_SharedHandles(t *testing.T) {
	magic := &game{Name: "magic"}
	vs := &game{Name: "vs"}
	r := NewReader(newTypes(t), WithRefs(gameShelf{"magic": magic, "vs": vs}))

	src := `mse_version: 3
title: A
publisher: magic
cards:
	- !card
		name: one
		publisher: magic
	- !card
		name: two
		publisher: magic
	- !card
		name: three
		publisher: vs
`
	a := &set{}
	_, err := r.ReadBytes([]byte(src), a)
	require.NoError(t, err)
	require.Len(t, a.Cards, 3)

	require.True(t, a.Publisher.Valid())
	assert.Same(t, magic, a.Publisher.Get())
	assert.True(t, a.Publisher.Same(a.Cards[0].Publisher))
	assert.True(t, a.Publisher.Same(a.Cards[1].Publisher))
	assert.Equal(t, 3, a.Publisher.Refs())

	assert.False(t, a.Publisher.Same(a.Cards[2].Publisher))
	assert.Equal(t, 1, a.Cards[2].Publisher.Refs())

	a.Cards[1].Publisher.Release()
	assert.Equal(t, 2, a.Publisher.Refs())

	// A second read hands out its own handle.
	b := &set{}
	_, err = r.ReadBytes([]byte("mse_version: 3\npublisher: magic\n"), b)
	require.NoError(t, err)
	assert.False(t, a.Publisher.Same(b.Publisher))
	assert.Equal(t, 1, b.Publisher.Refs())
	assert.Same(t, a.Publisher.Get(), b.Publisher.Get())
}

func TestRead_Errors(t *testing.T) {
	shelf := gameShelf{"magic": &game{Name: "magic"}}

	tests := []struct {
		name  string
		src   string
		check func(t *testing.T, err error)
		path  string
		line  int
	}{
		{
			name: "missing version",
			src:  "title: x\n",
			line: 1,
			check: func(t *testing.T, err error) {
				var pe *core.ParseError
				require.ErrorAs(t, err, &pe)
				assert.Contains(t, pe.Message, "mse_version")
			},
		},
		{
			name: "invalid version",
			src:  "mse_version: soon\n",
			path: "mse_version",
			line: 1,
			check: func(t *testing.T, err error) {
				var tm *core.TypeMismatchError
				require.ErrorAs(t, err, &tm)
				assert.Equal(t, "version", tm.Want)
			},
		},
		{
			name: "malformed structure",
			src:  "mse_version: 3\ncards:\n\t\t- !card\n",
			line: 3,
			check: func(t *testing.T, err error) {
				var pe *core.ParseError
				require.ErrorAs(t, err, &pe)
			},
		},
		{
			name: "nested type mismatch",
			src:  testutil.Lines("mse_version: 3", "cards:", "\t- !card", "\t\tname: a", "\t- !card", "\t\tamount: lots"),
			path: "cards[1].amount",
			line: 6,
			check: func(t *testing.T, err error) {
				var tm *core.TypeMismatchError
				require.ErrorAs(t, err, &tm)
				assert.Equal(t, "integer", tm.Want)
				assert.Equal(t, "lots", tm.Value)
			},
		},
		{
			name: "enum mismatch",
			src:  testutil.Lines("mse_version: 3", "cards:", "\t- !card", "\t\trarity: mythic"),
			path: "cards[0].rarity",
			line: 4,
			check: func(t *testing.T, err error) {
				var tm *core.TypeMismatchError
				require.ErrorAs(t, err, &tm)
			},
		},
		{
			name: "duplicate key",
			src:  "mse_version: 3\ntitle: a\ntitle: b\n",
			path: "title",
			line: 3,
			check: func(t *testing.T, err error) {
				var pe *core.ParseError
				require.ErrorAs(t, err, &pe)
				assert.Contains(t, pe.Message, "duplicate key")
			},
		},
		{
			name: "reference not found",
			src:  "mse_version: 3\ngame: pokemon\n",
			path: "game",
			line: 2,
			check: func(t *testing.T, err error) {
				var nf *core.ReferenceNotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, "pokemon", nf.Name)
			},
		},
		{
			name: "post-read hook failure",
			src:  testutil.Lines("mse_version: 3", "cards:", "\t- !card", "\t\tamount: -1"),
			path: "cards[0]",
			line: 3,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "after reading card: amount must not be negative")
			},
		},
		{
			name: "element in object block",
			src:  "mse_version: 3\n- x\n",
			line: 2,
			check: func(t *testing.T, err error) {
				var pe *core.ParseError
				require.ErrorAs(t, err, &pe)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(newTypes(t), WithRefs(shelf))
			_, err := r.ReadBytes([]byte(tt.src), &set{})
			require.Error(t, err)

			var de *core.DocumentError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.path, de.Path)
			assert.Equal(t, tt.line, de.Pos.Line)
			tt.check(t, err)
		})
	}
}

func TestRead_AliasDuplicatesCurrentName(t *testing.T) {
	_, err := NewReader(newTypes(t)).ReadBytes([]byte("mse_version: 1\npath: a\nfont_path: b\n"), &fontFile{})
	var pe *core.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, `key "font_path" duplicates "path"`, pe.Message)
}

func TestRead_NoResolver(t *testing.T) {
	_, err := NewReader(newTypes(t)).ReadBytes([]byte("mse_version: 3\ngame: magic\n"), &set{})
	var nf *core.ReferenceNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Error(t, errors.Unwrap(nf))
}

func TestRead_ByTag(t *testing.T) {
	doc, err := document.Parse("mse_version: 3\nname: magic\n")
	require.NoError(t, err)

	r := NewReader(newTypes(t))
	obj, res, err := r.Read(doc, "game")
	require.NoError(t, err)
	assert.Equal(t, core.Version(3), res.Version)
	require.IsType(t, &game{}, obj)
	assert.Equal(t, "magic", obj.(*game).Name)

	_, _, err = r.Read(doc, "stylesheet")
	var unknown *core.UnknownTypeError
	require.ErrorAs(t, err, &unknown)
}

func TestRead_ReadingOnlyField(t *testing.T) {
	src := testutil.Lines("mse_version: 3", "cards:", "\t- !card", "\t\timported: legacy.csv", "\t\tscripted: x")
	s := &set{}
	res, err := NewReader(newTypes(t)).ReadBytes([]byte(src), s)
	require.NoError(t, err)
	require.Len(t, s.Cards, 1)
	assert.Equal(t, "legacy.csv", s.Cards[0].Imported)
	assert.Empty(t, s.Cards[0].Scripted, "script-only fields are never read")
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "scripted", res.Warnings[0].Key)
}
