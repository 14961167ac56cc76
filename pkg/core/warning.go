package core

import (
	"fmt"

	"github.com/leapstack-labs/cardfile/pkg/token"
)

// WarningKind classifies recoverable read conditions.
type WarningKind int

const (
	// UnknownKey means a key matched no field or alias for the active version.
	UnknownKey WarningKind = iota
	// UnknownType means a block tag matched no registered type; the block was skipped.
	UnknownType
)

// String returns the string representation of WarningKind.
func (k WarningKind) String() string {
	switch k {
	case UnknownKey:
		return "unknown-key"
	case UnknownType:
		return "unknown-type"
	default:
		return "unknown"
	}
}

// Warning is a recoverable condition reported alongside a successful read.
type Warning struct {
	Kind    WarningKind
	Path    string
	Key     string
	Tag     string // set for UnknownType
	Pos     token.Position
	Version Version
}

// String renders the warning as a single line.
func (w Warning) String() string {
	switch w.Kind {
	case UnknownType:
		return fmt.Sprintf("%s: %s: skipped block of unknown type %q", w.Pos, w.Path, w.Tag)
	default:
		return fmt.Sprintf("%s: %s: ignored unknown key %q for format version %s", w.Pos, w.Path, w.Key, w.Version)
	}
}
