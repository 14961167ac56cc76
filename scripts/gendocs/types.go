package main

import (
	"fmt"
	"log"

	"github.com/leapstack-labs/cardfile/internal/card"
	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/schema"
)

// generateTypeDocs documents every reflected type of the card registry.
func generateTypeDocs(outDir string) error {
	log.Printf("Generating type docs to %s", outDir)
	return writePage(outDir, "types.md", typesPage(card.NewRegistry()))
}

func typesPage(types *schema.Registry) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter("Document Types", "Reflected types and their keys")
	w.GeneratedMarker()

	w.Header(1, "Document Types")
	w.Paragraph(fmt.Sprintf("Documents are written at format version %s (%s). "+
		"Keys outside their version range are reported as unknown.",
		InlineCode(card.CurrentVersion.Dotted()), InlineCode(card.CurrentVersion.String())))

	for _, tag := range types.Tags() {
		typ, _ := types.Lookup(tag)
		w.Header(2, InlineCode(tag))

		var rows [][]string
		for _, f := range typ.Fields() {
			rows = append(rows, []string{InlineCode(f.Name), f.Kind, versionRange(f.Since, f.Until), f.Flags.String()})
		}
		w.Table([]string{"Key", "Kind", "Versions", "Flags"}, rows)

		if aliases := typ.Aliases(); len(aliases) > 0 {
			var items []string
			for _, a := range aliases {
				items = append(items, fmt.Sprintf("%s reads as %s before %s",
					InlineCode(a.Legacy), InlineCode(a.Target), a.Until.Dotted()))
			}
			w.BulletList(items)
		}
	}
	return w
}

func versionRange(since, until core.Version) string {
	switch {
	case since == 0 && until == 0:
		return "all"
	case until == 0:
		return "from " + since.Dotted()
	case since == 0:
		return "before " + until.Dotted()
	}
	return since.Dotted() + " to " + until.Dotted()
}
