package persist

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/token"
)

// Result describes a successful read.
type Result struct {
	Version  core.Version
	Warnings []core.Warning
}

// HasWarnings returns true if any recoverable condition was reported.
func (r *Result) HasWarnings() bool {
	return r != nil && len(r.Warnings) > 0
}

// StrictError is returned in strict mode for the first warning.
type StrictError struct {
	Warning core.Warning
}

func (e *StrictError) Error() string {
	switch e.Warning.Kind {
	case core.UnknownType:
		return fmt.Sprintf("strict mode: unknown type %q", e.Warning.Tag)
	default:
		return fmt.Sprintf("strict mode: unknown key %q", e.Warning.Key)
	}
}

// located carries the innermost position of a failure until it is turned
// into a core.DocumentError at the top of the call.
type located struct {
	path string
	pos  token.Position
	err  error
}

func (e *located) Error() string {
	return e.err.Error()
}

func (e *located) Unwrap() error {
	return e.err
}

func toDocumentError(file string, v core.Version, err error) error {
	var loc *located
	if errors.As(err, &loc) {
		return &core.DocumentError{File: file, Path: loc.path, Version: v, Pos: loc.pos, Err: loc.err}
	}
	if de, ok := err.(*core.DocumentError); ok {
		if de.File == "" {
			de.File = file
		}
		return de
	}
	var pe *core.ParseError
	if errors.As(err, &pe) {
		return &core.DocumentError{File: file, Version: v, Pos: pe.Pos, Err: err}
	}
	return &core.DocumentError{File: file, Version: v, Err: err}
}
