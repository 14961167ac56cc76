package export

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cardfile/internal/testutil"
	"github.com/leapstack-labs/cardfile/pkg/document"
)

var setSrc = testutil.Lines(
	"mse_version: 20100",
	"game: magic",
	"set_info:",
	"\ttitle: Alpha",
	"cards:",
	"\t- !card",
	"\t\tdata:",
	"\t\t\tname: Black Lotus",
	"\t- !card",
	"\t\tnotes: \" padded \"",
	"keywords:",
	"\t- flying",
	"\t- trample",
)

func parse(t *testing.T, src string) *document.Document {
	t.Helper()
	doc, err := document.Parse(src)
	require.NoError(t, err)
	return doc
}

func TestMarshal_YAML(t *testing.T) {
	out, err := Marshal(parse(t, setSrc), FormatYAML)
	require.NoError(t, err)

	want := testutil.Lines(
		`mse_version: "20100"`,
		"game: magic",
		"set_info:",
		"  title: Alpha",
		"cards:",
		"  - _type: card",
		"    data:",
		"      name: Black Lotus",
		"  - _type: card",
		`    notes: ' padded '`,
		"keywords:",
		"  - flying",
		"  - trample",
	)
	assert.Equal(t, want, string(out))
}

func TestMarshal_JSON(t *testing.T) {
	out, err := Marshal(parse(t, setSrc), FormatJSON)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "20100", got["mse_version"])
	assert.Equal(t, map[string]any{"title": "Alpha"}, got["set_info"])
	assert.Equal(t, []any{"flying", "trample"}, got["keywords"])

	cards := got["cards"].([]any)
	require.Len(t, cards, 2)
	assert.Equal(t, map[string]any{
		TypeKey: "card",
		"data":  map[string]any{"name": "Black Lotus"},
	}, cards[0])
}

func TestYAML_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "set", src: setSrc},
		{name: "empty values", src: testutil.Lines("mse_version: 1", "notes:", "flag: yes")},
		{name: "items inside tagged block", src: testutil.Lines(
			"mse_version: 1",
			"word_lists:",
			"\t- !word_list",
			"\t\tname: types",
			"\t\t- creature",
		)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, tt.src)
			out, err := Marshal(doc, FormatYAML)
			require.NoError(t, err)

			back, err := FromYAML(out)
			require.NoError(t, err)
			assert.Equal(t, document.Print(doc), document.Print(back))
		})
	}
}

func TestFromYAML_Errors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		errMsg string
	}{
		{name: "not a mapping", src: "- a\n", errMsg: "must be a mapping"},
		{name: "top-level type", src: "_type: set\n", errMsg: "must not have _type"},
		{name: "bad type", src: "a:\n  _type: [x]\n", errMsg: "_type must be a non-empty string"},
		{name: "bad items", src: "a:\n  _items: x\n", errMsg: "_items must be a sequence"},
		{name: "invalid yaml", src: "a: [\n", errMsg: "failed to parse yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromYAML([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("toml")
	assert.ErrorContains(t, err, "unknown export format")
}
