package card

import (
	"path/filepath"
	"strings"
)

// Kind is a type of package and the file that holds its root object.
type Kind struct {
	Name string // package type, e.g. "game"
	Tag  string // type tag of the root object
	File string // root file inside the package directory
}

// Ext returns the package directory extension, e.g. ".mse-game".
func (k Kind) Ext() string {
	return ".mse-" + k.Name
}

// Kinds lists every package kind.
var Kinds = []Kind{
	{Name: "game", Tag: "game", File: "game"},
	{Name: "style", Tag: "stylesheet", File: "style"},
	{Name: "set", Tag: "set", File: "set"},
	{Name: "font", Tag: "font_file", File: "font"},
}

// KindForTag returns the kind whose root object has the given tag.
func KindForTag(tag string) (Kind, bool) {
	for _, k := range Kinds {
		if k.Tag == tag {
			return k, true
		}
	}
	return Kind{}, false
}

// KindForPath determines the kind of a document path. It accepts the root
// file of a package ("magic.mse-game/game"), a package directory
// ("magic.mse-game") and bare root files ("game"). For package directories
// the returned path points at the root file.
func KindForPath(path string) (Kind, string, bool) {
	base := filepath.Base(path)
	for _, k := range Kinds {
		if strings.HasSuffix(base, k.Ext()) {
			return k, filepath.Join(path, k.File), true
		}
	}
	for _, k := range Kinds {
		if base == k.File {
			return k, path, true
		}
	}
	return Kind{}, "", false
}

// PackageDir returns the directory name of a package, e.g. "magic.mse-game".
func (k Kind) PackageDir(name string) string {
	return name + k.Ext()
}

// PackageName returns the package name of a path inside or naming a
// package directory, or "" if there is none.
func PackageName(path string) string {
	for dir := filepath.Clean(path); ; dir = filepath.Dir(dir) {
		base := filepath.Base(dir)
		if i := strings.LastIndex(base, ".mse-"); i > 0 {
			return base[:i]
		}
		if parent := filepath.Dir(dir); parent == dir {
			return ""
		}
	}
}
