package schema

import (
	"strings"

	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/document"
)

// Flags control where a field participates.
type Flags uint8

const (
	// FlagNoScript hides the field from scripts.
	FlagNoScript Flags = 1 << iota
	// FlagScriptOnly exposes the field to scripts only; it is never read or written.
	FlagScriptOnly
	// FlagReadingOnly marks a field that is read but never written.
	FlagReadingOnly
)

// Has returns true if all bits of o are set.
func (f Flags) Has(o Flags) bool {
	return f&o == o
}

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagNoScript, "no-script"},
	{FlagScriptOnly, "script-only"},
	{FlagReadingOnly, "reading-only"},
}

// String lists the set flags, comma separated.
func (f Flags) String() string {
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, ",")
}

// FieldEntry is one persisted field of a type.
type FieldEntry struct {
	Name  string
	Kind  string // semantic type, e.g. "string" or "sequence"
	Flags Flags
	// Since and Until bound the versions in which the entry is active.
	// A zero Until means no upper bound.
	Since core.Version
	Until core.Version

	decode func(d Decoder, obj any, n *document.Node) error
	encode func(e Encoder, obj any) (*document.Node, error)
	get    func(obj any) any
}

// ActiveAt returns true if the entry consumes its key at version v.
func (f *FieldEntry) ActiveAt(v core.Version) bool {
	if v < f.Since {
		return false
	}
	return f.Until == 0 || v < f.Until
}

// Legacy returns true for entries that only exist to read old documents.
func (f *FieldEntry) Legacy() bool {
	return f.Until != 0
}

// Written returns true if the writer emits this entry.
func (f *FieldEntry) Written() bool {
	return !f.Legacy() && !f.Flags.Has(FlagScriptOnly) && !f.Flags.Has(FlagReadingOnly)
}

// Scripted returns true if scripts can see this entry.
func (f *FieldEntry) Scripted() bool {
	return !f.Flags.Has(FlagNoScript) && !f.Legacy()
}

// Decode populates the field of obj from n.
func (f *FieldEntry) Decode(d Decoder, obj any, n *document.Node) error {
	return f.decode(d, obj, n)
}

// Encode returns the node for the field of obj, or nil to omit it.
func (f *FieldEntry) Encode(e Encoder, obj any) (*document.Node, error) {
	n, err := f.encode(e, obj)
	if err != nil || n == nil {
		return n, err
	}
	n.Key = f.Name
	return n, nil
}

// Value returns the current value of the field of obj.
func (f *FieldEntry) Value(obj any) any {
	return f.get(obj)
}

// FieldOption adjusts a FieldEntry.
type FieldOption func(*FieldEntry)

// Since makes the field active from version v on.
func Since(v core.Version) FieldOption {
	return func(f *FieldEntry) { f.Since = v }
}

// Until makes the field active only before version v. Such a field is a
// legacy entry: it is read from old documents but never written.
func Until(v core.Version) FieldOption {
	return func(f *FieldEntry) { f.Until = v }
}

// NoScript hides the field from scripts.
func NoScript() FieldOption {
	return func(f *FieldEntry) { f.Flags |= FlagNoScript }
}

// ScriptOnly exposes the field to scripts only.
func ScriptOnly() FieldOption {
	return func(f *FieldEntry) { f.Flags |= FlagScriptOnly }
}

// ReadingOnly reads the field but never writes it.
func ReadingOnly() FieldOption {
	return func(f *FieldEntry) { f.Flags |= FlagReadingOnly }
}

// Alias maps a legacy key onto a current field for versions before Until.
type Alias struct {
	Legacy string
	Until  core.Version
	Target string

	entry *FieldEntry
}

// Entry returns the field the alias resolves to.
func (a Alias) Entry() *FieldEntry {
	return a.entry
}
