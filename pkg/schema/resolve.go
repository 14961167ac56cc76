package schema

import "github.com/leapstack-labs/cardfile/pkg/core"

// ResolutionKind is the outcome of resolving a key.
type ResolutionKind int

const (
	// ResolveUnknown means no field or alias consumes the key.
	ResolveUnknown ResolutionKind = iota
	// ResolveField means the key is the name of an active field.
	ResolveField
	// ResolveAlias means the key is a legacy name of a current field.
	ResolveAlias
)

// String returns the string representation of ResolutionKind.
func (k ResolutionKind) String() string {
	switch k {
	case ResolveField:
		return "field"
	case ResolveAlias:
		return "alias"
	default:
		return "unknown"
	}
}

// Resolution is the result of Type.Resolve.
type Resolution struct {
	Kind  ResolutionKind
	Entry *FieldEntry // nil for ResolveUnknown
	Alias *Alias      // set for ResolveAlias
}

// Resolve maps a key found in a document of version v onto the entry that
// consumes it. An active field of that name wins over an alias. Script-only
// entries never resolve.
//
// Resolve depends only on the declaration, so every document of the same
// version resolves identically.
func (t *Type) Resolve(v core.Version, name string) Resolution {
	for _, f := range t.byName[name] {
		if f.ActiveAt(v) && !f.Flags.Has(FlagScriptOnly) {
			return Resolution{Kind: ResolveField, Entry: f}
		}
	}
	for i := range t.aliases {
		a := &t.aliases[i]
		if a.Legacy == name && v < a.Until {
			return Resolution{Kind: ResolveAlias, Entry: a.entry, Alias: a}
		}
	}
	return Resolution{Kind: ResolveUnknown}
}
