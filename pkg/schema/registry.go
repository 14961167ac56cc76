package schema

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/leapstack-labs/cardfile/pkg/core"
)

// ErrDuplicateType is returned when a tag is registered twice.
var ErrDuplicateType = errors.New("type already registered")

// Registry maps type tags to declarations. It is safe for concurrent use,
// so one registry can serve several readers.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Type
}

// NewRegistry returns a registry holding the given types.
func NewRegistry(types ...*Type) (*Registry, error) {
	r := &Registry{types: make(map[string]*Type, len(types))}
	for _, t := range types {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tagged type.
func (r *Registry) Register(t *Type) error {
	if t.Tag() == "" {
		return fmt.Errorf("register %s: embeddable declarations have no tag", t.GoType())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[t.Tag()]; exists {
		return fmt.Errorf("register %q: %w", t.Tag(), ErrDuplicateType)
	}
	r.types[t.Tag()] = t
	return nil
}

// Lookup returns the type registered under tag.
func (r *Registry) Lookup(tag string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[tag]
	return t, ok
}

// TypeOf returns the declaration of obj's concrete type.
func (r *Registry) TypeOf(obj Object) (*Type, error) {
	t, ok := r.Lookup(obj.TypeName())
	if !ok {
		return nil, &core.UnknownTypeError{Tag: obj.TypeName(), Known: r.Tags()}
	}
	return t, nil
}

// New returns a default-constructed instance of the type registered under tag.
func (r *Registry) New(tag string) (Object, error) {
	t, ok := r.Lookup(tag)
	if !ok {
		return nil, &core.UnknownTypeError{Tag: tag, Known: r.Tags()}
	}
	return t.New(), nil
}

// Tags returns all registered tags (sorted).
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.types))
	for tag := range r.types {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
