package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/document"
)

// Codec converts between a field of type F and its document node.
type Codec[F any] interface {
	// Kind names the semantic type for error messages.
	Kind() string
	// Decode stores the value of n in dst.
	Decode(d Decoder, n *document.Node, dst *F) error
	// Encode returns the keyless node for src, or nil to omit the field.
	Encode(e Encoder, src *F) (*document.Node, error)
}

// Scalar codecs.
var (
	String  Codec[string]       = stringCodec{}
	Int     Codec[int]          = intCodec{}
	Float   Codec[float64]      = floatCodec{}
	Bool    Codec[bool]         = boolCodec{}
	Version Codec[core.Version] = versionCodec{}
)

func scalar(n *document.Node, want string) (string, error) {
	if n.IsBlock() {
		got := "block"
		if n.Tag != "" {
			got = "!" + n.Tag
		}
		return "", &core.TypeMismatchError{Want: want, Value: got}
	}
	return n.Value, nil
}

type stringCodec struct{}

func (stringCodec) Kind() string { return "string" }

func (c stringCodec) Decode(_ Decoder, n *document.Node, dst *string) error {
	s, err := scalar(n, c.Kind())
	if err != nil {
		return err
	}
	*dst = s
	return nil
}

func (stringCodec) Encode(_ Encoder, src *string) (*document.Node, error) {
	return document.NewValue("", *src), nil
}

type intCodec struct{}

func (intCodec) Kind() string { return "integer" }

func (c intCodec) Decode(_ Decoder, n *document.Node, dst *int) error {
	s, err := scalar(n, c.Kind())
	if err != nil {
		return err
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return &core.TypeMismatchError{Want: c.Kind(), Value: s, Cause: unwrapNum(err)}
	}
	*dst = v
	return nil
}

func (intCodec) Encode(_ Encoder, src *int) (*document.Node, error) {
	return document.NewValue("", strconv.Itoa(*src)), nil
}

type floatCodec struct{}

func (floatCodec) Kind() string { return "float" }

func (c floatCodec) Decode(_ Decoder, n *document.Node, dst *float64) error {
	s, err := scalar(n, c.Kind())
	if err != nil {
		return err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return &core.TypeMismatchError{Want: c.Kind(), Value: s, Cause: unwrapNum(err)}
	}
	*dst = v
	return nil
}

func (floatCodec) Encode(_ Encoder, src *float64) (*document.Node, error) {
	return document.NewValue("", strconv.FormatFloat(*src, 'g', -1, 64)), nil
}

type boolCodec struct{}

func (boolCodec) Kind() string { return "boolean" }

func (c boolCodec) Decode(_ Decoder, n *document.Node, dst *bool) error {
	s, err := scalar(n, c.Kind())
	if err != nil {
		return err
	}
	switch strings.TrimSpace(s) {
	case "true", "yes":
		*dst = true
	case "false", "no":
		*dst = false
	default:
		return &core.TypeMismatchError{Want: c.Kind(), Value: s}
	}
	return nil
}

func (boolCodec) Encode(_ Encoder, src *bool) (*document.Node, error) {
	return document.NewValue("", strconv.FormatBool(*src)), nil
}

type versionCodec struct{}

func (versionCodec) Kind() string { return "version" }

func (c versionCodec) Decode(_ Decoder, n *document.Node, dst *core.Version) error {
	s, err := scalar(n, c.Kind())
	if err != nil {
		return err
	}
	v, err := core.ParseVersion(s)
	if err != nil {
		return &core.TypeMismatchError{Want: c.Kind(), Value: s, Cause: err}
	}
	*dst = v
	return nil
}

func (versionCodec) Encode(_ Encoder, src *core.Version) (*document.Node, error) {
	return document.NewValue("", src.String()), nil
}

type enumCodec[E ~int] struct {
	names []string
}

// Enum returns a codec for an integer enumeration whose values are
// written by name. names[i] is the name of E(i).
func Enum[E ~int](names ...string) Codec[E] {
	return enumCodec[E]{names: names}
}

func (c enumCodec[E]) Kind() string {
	return "enum(" + strings.Join(c.names, "|") + ")"
}

func (c enumCodec[E]) Decode(_ Decoder, n *document.Node, dst *E) error {
	s, err := scalar(n, c.Kind())
	if err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	for i, name := range c.names {
		if name == s {
			*dst = E(i)
			return nil
		}
	}
	return &core.TypeMismatchError{Want: c.Kind(), Value: s}
}

func (c enumCodec[E]) Encode(_ Encoder, src *E) (*document.Node, error) {
	i := int(*src)
	if i < 0 || i >= len(c.names) {
		return nil, fmt.Errorf("enum value %d out of range for %s", i, c.Kind())
	}
	return document.NewValue("", c.names[i]), nil
}

// unwrapNum strips the strconv wrapper that repeats the input text.
func unwrapNum(err error) error {
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err
	}
	return err
}
