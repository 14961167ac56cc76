package document

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer_Tokens(t *testing.T) {
	input := "mse_version: 2\nfield: !text\n\tname: \"  padded \"\n\t- item\n"
	toks := NewLexer(input).Tokens()

	var types []token.TokenType
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []token.TokenType{
		token.INDENT, token.KEY, token.VALUE, token.NEWLINE,
		token.INDENT, token.KEY, token.TAG, token.NEWLINE,
		token.INDENT, token.KEY, token.VALUE, token.NEWLINE,
		token.INDENT, token.ITEM, token.VALUE, token.NEWLINE,
		token.EOF,
	}, types)

	assert.Equal(t, "mse_version", toks[1].Literal)
	assert.Equal(t, "text", toks[6].Literal)
	assert.Equal(t, "  padded ", toks[10].Literal)
	assert.True(t, toks[10].Quoted)
	assert.Equal(t, 1, toks[8].Depth)
	assert.Equal(t, token.Position{Line: 3, Column: 2, Offset: 29}, toks[9].Pos)
}

func TestParse_Structure(t *testing.T) {
	input := `# a comment
mse_version: 3
name: Basic game

pack_types:
	- !pack_type
		name: Any card
		enabled: true
	- !pack_type
		name: Rares
tags:
	- one
	- "two words "
	-
empty:
`
	doc, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, doc.Nodes, 5)

	version, ok := doc.Lookup("mse_version")
	require.True(t, ok)
	assert.Equal(t, "3", version.Value)
	assert.Equal(t, 2, version.Pos.Line)

	packs, ok := doc.Lookup("pack_types")
	require.True(t, ok)
	require.Len(t, packs.Children, 2)
	assert.True(t, packs.Children[0].Item)
	assert.Equal(t, "pack_type", packs.Children[0].Tag)
	name, ok := packs.Children[1].Lookup("name")
	require.True(t, ok)
	assert.Equal(t, "Rares", name.Value)

	tags, _ := doc.Lookup("tags")
	require.Len(t, tags.Children, 3)
	assert.Equal(t, "two words ", tags.Children[1].Value)
	assert.Equal(t, "", tags.Children[2].Value)

	empty, _ := doc.Lookup("empty")
	assert.False(t, empty.IsBlock())
	assert.Equal(t, "", empty.Value)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
		line    int
	}{
		{
			name:    "space indentation",
			input:   "a:\n  b: 1\n",
			wantMsg: "indentation must use tabs",
			line:    2,
		},
		{
			name:    "indentation jump",
			input:   "a:\n\t\tb: 1\n",
			wantMsg: "unexpected indentation",
			line:    2,
		},
		{
			name:    "block under value",
			input:   "a: 1\n\tb: 2\n",
			wantMsg: "already has a value",
			line:    2,
		},
		{
			name:    "missing colon",
			input:   "just words\n",
			wantMsg: "expected ':' after key",
			line:    1,
		},
		{
			name:    "unterminated string",
			input:   "a: \"open\n",
			wantMsg: "unterminated quoted string",
			line:    1,
		},
		{
			name:    "text after quote",
			input:   "a: \"x\" y\n",
			wantMsg: "unexpected text after quoted value",
			line:    1,
		},
		{
			name:    "bad tag",
			input:   "a: !two words\n",
			wantMsg: "invalid type tag",
			line:    1,
		},
		{
			name:    "indented first line",
			input:   "\ta: 1\n",
			wantMsg: "unexpected indentation",
			line:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			var pe *core.ParseError
			require.True(t, errors.As(err, &pe), "expected ParseError, got %T", err)
			assert.Contains(t, pe.Message, tt.wantMsg)
			assert.Equal(t, tt.line, pe.Pos.Line)
		})
	}
}

func TestParse_CRLF(t *testing.T) {
	doc, err := Parse("a: 1\r\nb:\r\n\tc: 2\r\n")
	require.NoError(t, err)
	b, _ := doc.Lookup("b")
	c, _ := b.Lookup("c")
	assert.Equal(t, "2", c.Value)
}

func TestParse_QuotedEmptyValueCannotOpenBlock(t *testing.T) {
	_, err := Parse("a: \"\"\n\tb: 1\n")
	var pe *core.ParseError
	assert.ErrorAs(t, err, &pe)
}
