package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cardfile/internal/testutil"
	"github.com/leapstack-labs/cardfile/pkg/schema"
)

func setShelf() (shelf, *Game, *StyleSheet, *StyleSheet) {
	refs, magic := magicShelf()
	modern := &StyleSheet{Packaged: Packaged{ShortName: "Modern"}, Game: magic}
	modern.SetPackageName("magic-modern")
	old := &StyleSheet{Packaged: Packaged{ShortName: "Old"}, Game: magic}
	old.SetPackageName("magic-old")
	refs["stylesheet/magic-modern"] = modern
	refs["stylesheet/magic-old"] = old
	return refs, magic, modern, old
}

var alphaSet = testutil.Lines(
	"mse_version: 20100",
	"game: magic",
	"stylesheet: magic-modern",
	"set_info:",
	"\ttitle: Alpha",
	"\tcopyright: 1993",
	"cards:",
	"\t- !card",
	"\t\tdata:",
	"\t\t\tname: Black Lotus",
	"\t\t\trarity: special timeshifted",
	"\t- !card",
	"\t\tstylesheet: magic-old",
	"\t\tnotes: printed with the old frame",
	"\t\tdata:",
	"\t\t\tname: Mox Pearl",
	"keywords:",
	"\t- !keyword",
	"\t\tkeyword: Flying",
	"\t\treminder: This creature can't be blocked except by creatures with flying.",
	"apprentice_code: LEA",
)

func TestSet_Read(t *testing.T) {
	refs, magic, modern, old := setShelf()
	s := &Set{}
	res := readDoc(t, alphaSet, s, refs)
	assert.Empty(t, res.Warnings)

	assert.Same(t, magic, s.Game)
	assert.Same(t, modern, s.StyleSheet.Get())
	assert.Equal(t, "Alpha", s.SetInfo["title"])
	assert.Equal(t, "LEA", s.ApprenticeCode)

	require.Len(t, s.Cards, 2)
	assert.Equal(t, "Black Lotus", s.Cards[0].Value("name"))
	assert.Same(t, modern, s.StyleFor(s.Cards[0]))
	assert.Same(t, old, s.StyleFor(s.Cards[1]))
	assert.Equal(t, "printed with the old frame", s.Cards[1].Notes)

	require.Len(t, s.Keywords, 1)
	assert.Equal(t, "Flying", s.Keywords[0].Keyword)
}

func TestSet_SharedGame(t *testing.T) {
	refs, _, modern, _ := setShelf()

	a, b := &Set{}, &Set{}
	readDoc(t, alphaSet, a, refs)
	readDoc(t, alphaSet, b, refs)

	require.Same(t, a.Game, b.Game)
	a.Game.HasKeywords = true
	assert.True(t, b.Game.HasKeywords)

	assert.Same(t, a.StyleSheet.Get(), b.StyleSheet.Get())
	assert.Same(t, modern.Game, a.Game)
}

func TestSet_StyleSheetHandles(t *testing.T) {
	refs, _, modern, _ := setShelf()
	s := &Set{}
	readDoc(t, testutil.Lines(
		"mse_version: 20100",
		"game: magic",
		"stylesheet: magic-modern",
		"cards:",
		"\t- !card",
		"\t\tstylesheet: magic-modern",
		"\t- !card",
		"\t\tstylesheet: magic-old",
	), s, refs)
	require.Len(t, s.Cards, 2)

	assert.Same(t, modern, s.StyleSheet.Get())
	assert.True(t, s.StyleSheet.Same(s.Cards[0].StyleSheet))
	assert.Equal(t, 2, s.StyleSheet.Refs())
	assert.False(t, s.StyleSheet.Same(s.Cards[1].StyleSheet))
	assert.Equal(t, 1, s.Cards[1].StyleSheet.Refs())
}

func TestSet_Write(t *testing.T) {
	refs, _, _, _ := setShelf()
	s := &Set{}
	readDoc(t, alphaSet, s, refs)

	out := assertStable(t, s, func() schema.Object { return &Set{} }, refs)
	assert.NotContains(t, out, "apprentice_code", "reading-only fields are not written")
	assert.NotContains(t, out, "card_count", "script-only fields are not written")
	assert.Contains(t, out, "set_info:\n\tcopyright: 1993\n\ttitle: Alpha\n")
	assert.Contains(t, out, "\t\tstylesheet: magic-old\n")
}

func TestSet_ScriptOnlyValue(t *testing.T) {
	f, ok := setType.Field("card_count")
	require.True(t, ok)
	assert.False(t, f.Written())
	assert.Equal(t, 2, f.Value(&Set{Cards: []*Card{{}, {}}}))
}
