package core

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/cardfile/pkg/token"
)

// ParseError represents malformed document structure.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	if !e.Pos.IsValid() {
		return fmt.Sprintf("parse error: %s", e.Message)
	}
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// TypeMismatchError is returned when a value cannot be coerced to the
// semantic type of its field.
type TypeMismatchError struct {
	Want  string // semantic type: integer, string, enum, object, sequence, ...
	Value string // offending text, possibly empty
	Cause error
}

func (e *TypeMismatchError) Error() string {
	msg := fmt.Sprintf("type mismatch: expected %s, got %q", e.Want, e.Value)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *TypeMismatchError) Unwrap() error {
	return e.Cause
}

// UnknownTypeError is returned when a block carries a type tag that no
// registered type answers to. Readers treat it as recoverable.
type UnknownTypeError struct {
	Tag   string
	Known []string
}

func (e *UnknownTypeError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown type %q", e.Tag)
	}
	return fmt.Sprintf("unknown type %q (known: %s)", e.Tag, strings.Join(e.Known, ", "))
}

// UnsupportedVersionError is returned for documents written by a newer format.
type UnsupportedVersionError struct {
	Version Version
	Max     Version
}

func (e *UnsupportedVersionError) Error() string {
	if e.Version < 0 {
		return fmt.Sprintf("unsupported format version %s", e.Version)
	}
	return fmt.Sprintf("unsupported format version %s (this build understands up to %s)", e.Version, e.Max)
}

// ReferenceNotFoundError is returned when a named reference cannot be resolved.
type ReferenceNotFoundError struct {
	Type  string
	Name  string
	Cause error
}

func (e *ReferenceNotFoundError) Error() string {
	msg := fmt.Sprintf("%s %q not found", e.Type, e.Name)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ReferenceNotFoundError) Unwrap() error {
	return e.Cause
}

// DocumentError reports a fatal failure together with where it happened.
// The specific kind is available through errors.As on Err.
type DocumentError struct {
	File    string
	Path    string // nesting path of the offending key, e.g. "card_fields[2].name"
	Version Version
	Pos     token.Position
	Err     error
}

func (e *DocumentError) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		if e.Pos.IsValid() {
			b.WriteString(":")
			b.WriteString(e.Pos.String())
		}
		b.WriteString(": ")
	} else if e.Pos.IsValid() {
		fmt.Fprintf(&b, "line %d: ", e.Pos.Line)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, "%s: ", e.Path)
	}
	b.WriteString(e.Err.Error())
	fmt.Fprintf(&b, " (format version %s)", e.Version)
	return b.String()
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
