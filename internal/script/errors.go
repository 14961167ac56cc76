package script

import "fmt"

// Error is a failed script evaluation.
type Error struct {
	Script string // what was evaluated, e.g. "cards[3] (Mox Pearl)"
	Expr   string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("script %s: %v", e.Script, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
