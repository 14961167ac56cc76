// Package packages locates, loads and caches card file packages.
// A Manager resolves the named references inside documents (a set's game,
// a card's stylesheet) so that every reference to one package yields the
// same loaded object.
package packages

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/leapstack-labs/cardfile/internal/card"
	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/persist"
	"github.com/leapstack-labs/cardfile/pkg/schema"
)

// Index answers where a package was last seen. The state store implements it.
type Index interface {
	Lookup(kind, name string) (path string, ok bool, err error)
}

// Package is a package directory found on disk.
type Package struct {
	Kind card.Kind
	Name string
	Path string // root file inside the package directory
}

// Manager loads packages from a list of root directories.
type Manager struct {
	roots  []string
	types  *schema.Registry
	reader *persist.Reader
	index  Index
	logger *slog.Logger

	mu sync.RWMutex

	// loaded maps "kind/foldedname" to the root object: "game/magic" → *card.Game
	loaded map[string]schema.Object
}

// Option configures a Manager.
type Option func(*managerConfig)

type managerConfig struct {
	index   Index
	logger  *slog.Logger
	persist []persist.Option
}

// WithIndex consults idx for packages not found under the roots.
func WithIndex(idx Index) Option {
	return func(c *managerConfig) { c.index = idx }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *managerConfig) { c.logger = logger }
}

// WithReaderOptions passes options to the underlying document reader.
func WithReaderOptions(opts ...persist.Option) Option {
	return func(c *managerConfig) { c.persist = append(c.persist, opts...) }
}

// NewManager creates a Manager searching roots in order.
func NewManager(types *schema.Registry, roots []string, opts ...Option) *Manager {
	var cfg managerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}

	m := &Manager{
		roots:  roots,
		types:  types,
		index:  cfg.index,
		logger: cfg.logger,
		loaded: make(map[string]schema.Object),
	}
	readerOpts := append([]persist.Option{persist.WithLogger(cfg.logger)}, cfg.persist...)
	readerOpts = append(readerOpts, persist.WithRefs(m))
	m.reader = persist.NewReader(types, readerOpts...)
	return m
}

// Roots returns the search roots.
func (m *Manager) Roots() []string {
	return m.roots
}

// Resolve implements persist.RefResolver.
func (m *Manager) Resolve(typeName, name string) (schema.Object, error) {
	kind, ok := card.KindForTag(typeName)
	if !ok {
		return nil, &core.ReferenceNotFoundError{
			Type:  typeName,
			Name:  name,
			Cause: fmt.Errorf("%s is not a package type", typeName),
		}
	}
	return m.Load(kind, name)
}

// Load returns the package of the given kind and name, reading it on
// first use. Names match case-insensitively.
func (m *Manager) Load(kind card.Kind, name string) (schema.Object, error) {
	key := cacheKey(kind, name)

	m.mu.RLock()
	obj, ok := m.loaded[key]
	m.mu.RUnlock()
	if ok {
		return obj, nil
	}

	path, err := m.locate(kind, name)
	if err != nil {
		return nil, err
	}
	obj, _, err = m.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s %q: %w", kind.Name, name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.loaded[key]; ok {
		return existing, nil
	}
	m.loaded[key] = obj
	m.logger.Debug("loaded package", "kind", kind.Name, "name", name, "path", path)
	return obj, nil
}

// OpenFile reads the document at path. The path may name a package
// directory or the root file inside one. The result is not cached.
func (m *Manager) OpenFile(path string) (schema.Object, *persist.Result, error) {
	kind, file, ok := card.KindForPath(path)
	if !ok {
		return nil, nil, fmt.Errorf("cannot determine package type of %s", path)
	}
	obj, err := m.types.New(kind.Tag)
	if err != nil {
		return nil, nil, err
	}
	res, err := m.reader.ReadFile(file, obj)
	if err != nil {
		return nil, nil, err
	}
	if p, ok := obj.(interface{ SetPackageName(string) }); ok {
		p.SetPackageName(card.PackageName(file))
	}
	return obj, res, nil
}

// Loaded returns the cache keys of every loaded package, sorted.
func (m *Manager) Loaded() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.loaded))
	for k := range m.loaded {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reset drops every cached package. Objects already handed out stay valid.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = make(map[string]schema.Object)
}

// Discover lists the package directories directly under each root.
// Missing roots are skipped.
func (m *Manager) Discover() ([]Package, error) {
	var found []Package
	for _, root := range m.roots {
		entries, err := os.ReadDir(root)
		if errors.Is(err, fs.ErrNotExist) {
			m.logger.Debug("package root does not exist", "root", root)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", root, err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			kind, file, ok := card.KindForPath(filepath.Join(root, e.Name()))
			if !ok {
				continue
			}
			found = append(found, Package{
				Kind: kind,
				Name: strings.TrimSuffix(e.Name(), kind.Ext()),
				Path: file,
			})
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Kind.Name != found[j].Kind.Name {
			return found[i].Kind.Name < found[j].Kind.Name
		}
		return found[i].Name < found[j].Name
	})
	return found, nil
}

// locate finds the root file of a package: an exact directory match under
// a root first, then a case-insensitive one, then the index.
func (m *Manager) locate(kind card.Kind, name string) (string, error) {
	dir := kind.PackageDir(name)
	for _, root := range m.roots {
		file := filepath.Join(root, dir, kind.File)
		if isFile(file) {
			return file, nil
		}
	}

	want := fold(dir)
	for _, root := range m.roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() && fold(e.Name()) == want {
				file := filepath.Join(root, e.Name(), kind.File)
				if isFile(file) {
					return file, nil
				}
			}
		}
	}

	if m.index != nil {
		path, ok, err := m.index.Lookup(kind.Name, name)
		if err != nil {
			m.logger.Warn("package index lookup failed", "kind", kind.Name, "name", name, "error", err)
		} else if ok && isFile(path) {
			return path, nil
		}
	}

	return "", &core.ReferenceNotFoundError{
		Type:  kind.Tag,
		Name:  name,
		Cause: fmt.Errorf("no %s under %s", dir, strings.Join(m.roots, ", ")),
	}
}

func cacheKey(kind card.Kind, name string) string {
	return kind.Name + "/" + fold(name)
}

// fold returns the case-folded form of s. A Caser carries state, so each
// call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
