package card

import (
	"path"
	"strings"

	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/schema"
)

// FontFile registers a font shipped inside a package.
type FontFile struct {
	Name string
	Path string
}

func (*FontFile) TypeName() string { return "font_file" }

// Clone returns a copy of the registration.
func (f *FontFile) Clone() *FontFile {
	c := *f
	return &c
}

var fontFileType = schema.Declare[FontFile]("font_file").
	Fields(
		schema.Field("name", func(f *FontFile) *string { return &f.Name }, schema.String, schema.NoScript()),
		schema.Field("font_path", func(f *FontFile) *string { return &f.Path }, schema.String, schema.NoScript()),
	).
	Compat(VersionFontPath, "path", "font_path").
	AfterRead(func(f *FontFile, _ core.Version) error {
		if f.Name == "" {
			f.Name = fontNameFromPath(f.Path)
		}
		return nil
	}).
	Build()

// fontNameFromPath derives a font name from its file: "fonts/Beleren Bold.ttf"
// becomes "Beleren Bold". Package paths always use forward slashes.
func fontNameFromPath(p string) string {
	base := path.Base(strings.ReplaceAll(p, `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
