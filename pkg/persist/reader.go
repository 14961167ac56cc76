package persist

import (
	"fmt"
	"io"
	"os"

	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/document"
	"github.com/leapstack-labs/cardfile/pkg/schema"
)

// Reader deserializes documents into reflected objects.
type Reader struct {
	types *schema.Registry
	opts  options
}

// NewReader creates a Reader over the given type registry.
func NewReader(types *schema.Registry, opts ...Option) *Reader {
	return &Reader{types: types, opts: newOptions(opts)}
}

// Read constructs an object of the type registered under tag and
// populates it from doc.
func (r *Reader) Read(doc *document.Document, tag string) (schema.Object, *Result, error) {
	typ, ok := r.types.Lookup(tag)
	if !ok {
		return nil, nil, &core.DocumentError{Err: &core.UnknownTypeError{Tag: tag, Known: r.types.Tags()}}
	}
	obj := typ.New()
	res, err := r.read("", doc, typ, obj)
	if err != nil {
		return nil, nil, err
	}
	return obj, res, nil
}

// ReadInto populates the existing root object obj from doc. On error obj
// is left partially populated and must be discarded.
func (r *Reader) ReadInto(doc *document.Document, obj schema.Object) (*Result, error) {
	typ, err := r.types.TypeOf(obj)
	if err != nil {
		return nil, &core.DocumentError{Err: err}
	}
	return r.read("", doc, typ, obj)
}

// ReadBytes parses data and populates obj.
func (r *Reader) ReadBytes(data []byte, obj schema.Object) (*Result, error) {
	return r.readBytes("", data, obj)
}

// ReadStream reads the whole of src and populates obj.
func (r *Reader) ReadStream(src io.Reader, obj schema.Object) (*Result, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return r.readBytes("", data, obj)
}

// ReadFile reads the document at path into obj.
func (r *Reader) ReadFile(path string, obj schema.Object) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return r.readBytes(path, data, obj)
}

func (r *Reader) readBytes(file string, data []byte, obj schema.Object) (*Result, error) {
	typ, err := r.types.TypeOf(obj)
	if err != nil {
		return nil, &core.DocumentError{File: file, Err: err}
	}
	doc, err := document.Parse(string(data))
	if err != nil {
		return nil, toDocumentError(file, 0, err)
	}
	return r.read(file, doc, typ, obj)
}

func (r *Reader) read(file string, doc *document.Document, typ *schema.Type, obj schema.Object) (*Result, error) {
	version, err := r.readVersion(doc)
	if err != nil {
		return nil, toDocumentError(file, version, err)
	}

	d := &decoder{
		types:   r.types,
		opts:    &r.opts,
		version: version,
	}
	logger := r.opts.logger.With("file", file, "type", typ.Tag(), "version", int64(version))
	logger.Debug("reading document")

	if err := d.decodeFields(typ, obj, doc.Nodes[1:]); err != nil {
		return nil, toDocumentError(file, version, err)
	}
	if err := d.afterRead(typ, obj); err != nil {
		return nil, toDocumentError(file, version, err)
	}

	for _, w := range d.warnings {
		logger.Warn(w.String())
	}
	return &Result{Version: version, Warnings: d.warnings}, nil
}

// readVersion consumes the version key, which must come first.
func (r *Reader) readVersion(doc *document.Document) (core.Version, error) {
	if doc == nil || len(doc.Nodes) == 0 {
		return 0, &core.ParseError{Message: fmt.Sprintf("missing %q", r.opts.versionKey)}
	}
	first := doc.Nodes[0]
	if first.Item || first.Key != r.opts.versionKey {
		return 0, &core.ParseError{
			Pos:     first.Pos,
			Message: fmt.Sprintf("document must start with %q", r.opts.versionKey),
		}
	}

	var v core.Version
	if err := schema.Version.Decode(nil, first, &v); err != nil {
		return 0, &located{path: first.Key, pos: first.Pos, err: err}
	}
	if err := core.CheckVersion(v, r.opts.maxVersion); err != nil {
		return v, &located{path: first.Key, pos: first.Pos, err: err}
	}

	for _, n := range doc.Nodes[1:] {
		if !n.Item && n.Key == r.opts.versionKey {
			return v, &core.ParseError{Pos: n.Pos, Message: fmt.Sprintf("duplicate key %q", n.Key)}
		}
	}
	return v, nil
}
