// Package token defines the lexical vocabulary of the card file format.
//
// The format is line oriented: every significant line produces an INDENT
// token, a head (KEY or ITEM), an optional payload (VALUE or TAG) and a
// NEWLINE. Comment and blank lines produce no tokens.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Line structure
	INDENT  // leading tabs, Literal holds the depth as text
	NEWLINE // end of a significant line

	// Heads
	KEY  // key before ':'
	ITEM // '-' sequence element marker

	// Payloads
	VALUE // raw or unquoted scalar value
	TAG   // '!tag' block discriminator
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",
	INDENT:  "INDENT",
	NEWLINE: "NEWLINE",
	KEY:     "KEY",
	ITEM:    "ITEM",
	VALUE:   "VALUE",
	TAG:     "TAG",
}

// IsHead returns true if the token starts the content of a line.
func IsHead(t TokenType) bool {
	return t == KEY || t == ITEM
}

// IsPayload returns true if the token carries the value part of a line.
func IsPayload(t TokenType) bool {
	return t == VALUE || t == TAG
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Depth   int  // indentation depth, set on INDENT and head tokens
	Quoted  bool // literal was written as a quoted string
	Pos     Position
}

// String renders the token for diagnostics.
func (t Token) String() string {
	if t.Literal == "" {
		return t.Type.String()
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}
