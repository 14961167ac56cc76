package schema

import (
	"errors"

	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/document"
)

// Object is implemented by every reflected type. TypeName returns the tag
// the type was declared under.
type Object interface {
	TypeName() string
}

// Named is an Object that can be persisted as a named reference.
type Named interface {
	Object
	UniqueName() string
}

// ErrSkipped is returned by codecs when a block was skipped because its
// type is unknown. Containers drop the element; fields keep their value.
var ErrSkipped = errors.New("block skipped")

// Decoder is the reader state handed to codecs.
type Decoder interface {
	// Version returns the format version of the document being read.
	Version() core.Version
	// DecodeObject constructs and populates the object of a tagged block.
	// It returns ErrSkipped when the tag is not registered.
	DecodeObject(n *document.Node) (Object, error)
	// Resolve looks up a named reference.
	Resolve(typeName, name string) (Object, error)
	// SharedHandle returns the shared handle recorded for referent during
	// this read. When none is recorded it stores the result of create and
	// returns it with found false.
	SharedHandle(referent any, create func() any) (handle any, found bool)
}

// Encoder is the writer state handed to codecs.
type Encoder interface {
	// Version returns the format version being written.
	Version() core.Version
	// EncodeObject returns the tagged block for obj.
	EncodeObject(obj Object) (*document.Node, error)
}
