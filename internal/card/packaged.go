package card

import (
	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/schema"
)

// Packaged holds the metadata shared by everything distributed as a package.
type Packaged struct {
	ShortName    string
	FullName     string
	Icon         string
	PositionHint int
	Version      core.Version
	Dependencies []*Dependency

	packageName string
}

// PackageName returns the name the package was loaded under.
func (p *Packaged) PackageName() string {
	return p.packageName
}

// SetPackageName records the name the package was loaded under.
func (p *Packaged) SetPackageName(name string) {
	p.packageName = name
}

// UniqueName identifies the package in named references.
func (p *Packaged) UniqueName() string {
	if p.packageName != "" {
		return p.packageName
	}
	return p.ShortName
}

var packagedType = schema.Struct[Packaged]().
	Fields(
		schema.Field("short_name", func(p *Packaged) *string { return &p.ShortName }, schema.String),
		schema.Field("full_name", func(p *Packaged) *string { return &p.FullName }, schema.String),
		schema.Field("icon", func(p *Packaged) *string { return &p.Icon }, schema.String),
		schema.Field("position_hint", func(p *Packaged) *int { return &p.PositionHint }, schema.Int),
		schema.Field("version", func(p *Packaged) *core.Version { return &p.Version }, schema.Version),
		schema.Field("depends_on", func(p *Packaged) *[]*Dependency { return &p.Dependencies },
			schema.List(schema.Child[*Dependency]())),
	).
	AfterRead(func(p *Packaged, _ core.Version) error {
		if p.FullName == "" {
			p.FullName = p.ShortName
		}
		return nil
	}).
	Build()

// Dependency names a package and the minimum version required.
type Dependency struct {
	Package string
	Version core.Version
}

func (*Dependency) TypeName() string { return "dependency" }

var dependencyType = schema.Declare[Dependency]("dependency").
	Fields(
		schema.Field("package", func(d *Dependency) *string { return &d.Package }, schema.String),
		schema.Field("version", func(d *Dependency) *core.Version { return &d.Version }, schema.Version),
	).
	Build()
