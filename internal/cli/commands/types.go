package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/cardfile/pkg/schema"
)

// TypeInfo describes a registered type.
type TypeInfo struct {
	Tag     string      `json:"tag" yaml:"tag"`
	GoType  string      `json:"go_type" yaml:"go_type"`
	Fields  []FieldInfo `json:"fields" yaml:"fields"`
	Aliases []AliasInfo `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// FieldInfo describes one field entry.
type FieldInfo struct {
	Name  string `json:"name" yaml:"name"`
	Kind  string `json:"kind" yaml:"kind"`
	Since int64  `json:"since,omitempty" yaml:"since,omitempty"`
	Until int64  `json:"until,omitempty" yaml:"until,omitempty"`
	Flags string `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// AliasInfo describes a compatibility alias.
type AliasInfo struct {
	Legacy string `json:"legacy" yaml:"legacy"`
	Target string `json:"target" yaml:"target"`
	Until  int64  `json:"until" yaml:"until"`
}

// NewTypesCommand creates the types command.
func NewTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types [tag]",
		Short: "List reflected types and their fields",
		Long: `List every registered type, or the fields, version ranges and
compatibility aliases of one type.`,
		Example: `  cardfile types
  cardfile types stylesheet`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := NewCommandContext(cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			if len(args) == 0 {
				return listTypes(c)
			}
			typ, ok := c.Types.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown type %q", args[0])
			}
			return showType(c, typ)
		},
	}
}

func describeType(typ *schema.Type) TypeInfo {
	info := TypeInfo{Tag: typ.Tag(), GoType: typ.GoType().String()}
	for _, f := range typ.Fields() {
		info.Fields = append(info.Fields, FieldInfo{
			Name:  f.Name,
			Kind:  f.Kind,
			Since: int64(f.Since),
			Until: int64(f.Until),
			Flags: f.Flags.String(),
		})
	}
	for _, a := range typ.Aliases() {
		info.Aliases = append(info.Aliases, AliasInfo{Legacy: a.Legacy, Target: a.Target, Until: int64(a.Until)})
	}
	return info
}

func listTypes(c *CommandContext) error {
	var infos []TypeInfo
	for _, tag := range c.Types.Tags() {
		typ, _ := c.Types.Lookup(tag)
		infos = append(infos, describeType(typ))
	}
	if ok, err := renderStructured(c.Out, c.Cfg.Output, infos); ok {
		return err
	}

	t := newTable(c.Out)
	t.AppendHeader(table.Row{"Tag", "Go type", "Fields", "Aliases"})
	for _, info := range infos {
		t.AppendRow(table.Row{info.Tag, info.GoType, len(info.Fields), len(info.Aliases)})
	}
	t.Render()
	return nil
}

func showType(c *CommandContext, typ *schema.Type) error {
	info := describeType(typ)
	if ok, err := renderStructured(c.Out, c.Cfg.Output, info); ok {
		return err
	}

	_, _ = fmt.Fprintf(c.Out, "%s (%s)\n", info.Tag, info.GoType)
	t := newTable(c.Out)
	t.AppendHeader(table.Row{"Field", "Kind", "Since", "Until", "Flags"})
	for _, f := range info.Fields {
		t.AppendRow(table.Row{f.Name, f.Kind, versionCell(f.Since), versionCell(f.Until), f.Flags})
	}
	t.Render()

	if len(info.Aliases) > 0 {
		a := newTable(c.Out)
		a.AppendHeader(table.Row{"Legacy key", "Current key", "Until"})
		for _, al := range info.Aliases {
			a.AppendRow(table.Row{al.Legacy, al.Target, versionCell(al.Until)})
		}
		a.Render()
	}
	return nil
}

func versionCell(v int64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprint(v)
}
