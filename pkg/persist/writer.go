package persist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/document"
	"github.com/leapstack-labs/cardfile/pkg/schema"
)

// Writer serializes reflected objects. Output is canonical: fields in
// declaration order under their current names, version key first.
type Writer struct {
	types *schema.Registry
	opts  options
}

// NewWriter creates a Writer over the given type registry.
func NewWriter(types *schema.Registry, opts ...Option) *Writer {
	return &Writer{types: types, opts: newOptions(opts)}
}

// Version returns the format version the Writer emits.
func (w *Writer) Version() core.Version {
	return w.opts.version
}

// Encode converts the root object into a document.
func (w *Writer) Encode(obj schema.Object) (*document.Document, error) {
	typ, err := w.types.TypeOf(obj)
	if err != nil {
		return nil, &core.DocumentError{Version: w.opts.version, Err: err}
	}

	e := &encoder{types: w.types, version: w.opts.version}
	nodes, err := e.encodeFields(typ, obj)
	if err != nil {
		return nil, toDocumentError("", w.opts.version, err)
	}

	doc := &document.Document{Nodes: make([]*document.Node, 0, len(nodes)+1)}
	doc.Nodes = append(doc.Nodes, document.NewValue(w.opts.versionKey, w.opts.version.String()))
	doc.Nodes = append(doc.Nodes, nodes...)

	w.opts.logger.Debug("encoded document", "type", typ.Tag(), "version", int64(w.opts.version), "fields", len(nodes))
	return doc, nil
}

// Marshal returns the text of obj.
func (w *Writer) Marshal(obj schema.Object) ([]byte, error) {
	doc, err := w.Encode(obj)
	if err != nil {
		return nil, err
	}
	return []byte(document.Print(doc)), nil
}

// Write writes the text of obj to dst.
func (w *Writer) Write(dst io.Writer, obj schema.Object) error {
	doc, err := w.Encode(obj)
	if err != nil {
		return err
	}
	_, err = doc.WriteTo(dst)
	return err
}

// WriteFile writes obj to path. The file is replaced atomically: the text
// goes to a temporary file in the same directory which is then renamed.
func (w *Writer) WriteFile(path string, obj schema.Object) (err error) {
	data, err := w.Marshal(obj)
	if err != nil {
		var de *core.DocumentError
		if errors.As(err, &de) {
			de.File = path
		}
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	w.opts.logger.Debug("wrote document", "path", path, "bytes", len(data))
	return nil
}

// encoder holds the state of one write. It implements schema.Encoder.
type encoder struct {
	types   *schema.Registry
	version core.Version
}

var _ schema.Encoder = (*encoder)(nil)

// Version returns the version being written.
func (e *encoder) Version() core.Version {
	return e.version
}

// EncodeObject returns the tagged block of obj.
func (e *encoder) EncodeObject(obj schema.Object) (*document.Node, error) {
	typ, err := e.types.TypeOf(obj)
	if err != nil {
		return nil, err
	}
	children, err := e.encodeFields(typ, obj)
	if err != nil {
		return nil, err
	}
	return document.NewBlock("", typ.Tag(), children...), nil
}

// encodeFields emits the written fields of obj in declaration order.
func (e *encoder) encodeFields(typ *schema.Type, obj schema.Object) ([]*document.Node, error) {
	var nodes []*document.Node
	for _, f := range typ.Fields() {
		if !f.Written() {
			continue
		}
		n, err := f.Encode(e, obj)
		if err != nil {
			return nil, locate(f.Name, err)
		}
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

// locate prefixes the path of err, which is relative to the object
// owning the field key.
func locate(key string, err error) error {
	path := key
	for {
		switch e := err.(type) {
		case *schema.ElementError:
			path += e.Segment()
			err = e.Err
			continue
		case *located:
			if e.path != "" {
				path += "." + e.path
			}
			return &located{path: path, pos: e.pos, err: e.err}
		}
		return &located{path: path, err: err}
	}
}
