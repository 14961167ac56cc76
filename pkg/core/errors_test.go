package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/leapstack-labs/cardfile/pkg/token"
	"github.com/stretchr/testify/assert"
)

func TestDocumentErrorUnwrap(t *testing.T) {
	inner := &TypeMismatchError{Want: "integer", Value: "abc"}
	err := &DocumentError{
		File:    "set",
		Path:    "cards[0].id",
		Version: 3,
		Pos:     token.Position{Line: 4, Column: 2},
		Err:     inner,
	}

	var tm *TypeMismatchError
	assert.True(t, errors.As(err, &tm))
	assert.Same(t, inner, tm)

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "set:4:2: cards[0].id: type mismatch"), msg)
	assert.Contains(t, msg, "format version 3")
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "parse error with position",
			err:  &ParseError{Pos: token.Position{Line: 2, Column: 1}, Message: "bad indent"},
			want: "parse error at line 2, column 1: bad indent",
		},
		{
			name: "parse error without position",
			err:  &ParseError{Message: "empty document"},
			want: "parse error: empty document",
		},
		{
			name: "unknown type",
			err:  &UnknownTypeError{Tag: "slider", Known: []string{"choice", "text"}},
			want: `unknown type "slider" (known: choice, text)`,
		},
		{
			name: "unsupported version",
			err:  &UnsupportedVersionError{Version: 9, Max: 3},
			want: "unsupported format version 9 (this build understands up to 3)",
		},
		{
			name: "reference not found",
			err:  &ReferenceNotFoundError{Type: "game", Name: "magic"},
			want: `game "magic" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWarningString(t *testing.T) {
	w := Warning{Kind: UnknownKey, Path: "game", Key: "colour", Pos: token.Position{Line: 3, Column: 1}, Version: 2}
	assert.Equal(t, `3:1: game: ignored unknown key "colour" for format version 2`, w.String())
	assert.Equal(t, "unknown-type", UnknownType.String())
}
