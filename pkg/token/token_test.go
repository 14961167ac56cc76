package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenTypeString(t *testing.T) {
	tests := []struct {
		typ  TokenType
		want string
	}{
		{EOF, "EOF"},
		{KEY, "KEY"},
		{ITEM, "ITEM"},
		{TAG, "TAG"},
		{TokenType(42), "TOKEN(42)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.typ.String())
	}
}

func TestTokenClassification(t *testing.T) {
	assert.True(t, IsHead(KEY))
	assert.True(t, IsHead(ITEM))
	assert.False(t, IsHead(VALUE))
	assert.True(t, IsPayload(VALUE))
	assert.True(t, IsPayload(TAG))
	assert.False(t, IsPayload(NEWLINE))
}

func TestPosition(t *testing.T) {
	assert.Equal(t, "-", Position{}.String())
	assert.Equal(t, "3:7", Position{Line: 3, Column: 7}.String())

	span := Span{Start: Position{Line: 1, Offset: 2}, End: Position{Line: 1, Offset: 6}}
	assert.True(t, span.IsValid())
	assert.True(t, span.Contains(2))
	assert.False(t, span.Contains(6))
}

func TestTokenString(t *testing.T) {
	assert.Equal(t, "NEWLINE", Token{Type: NEWLINE}.String())
	assert.Equal(t, `KEY("name")`, Token{Type: KEY, Literal: "name"}.String())
}
