package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/cardfile/internal/card"
	"github.com/leapstack-labs/cardfile/internal/config"
	"github.com/leapstack-labs/cardfile/internal/export"
	"github.com/leapstack-labs/cardfile/pkg/document"
	"github.com/leapstack-labs/cardfile/pkg/persist"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var (
		format string
		typed  bool
	)

	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Convert a document to YAML or JSON",
		Long: `Convert a card file document to YAML or JSON.

By default the document is converted as written. With --typed it is first
read into its object model, so legacy keys are migrated and unknown keys
dropped, and the canonical form is exported.`,
		Example: `  cardfile export magic.mse-game
  cardfile export --typed --format json sets/alpha.mse-set`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := NewCommandContext(cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			if format == "" {
				format = string(export.FormatYAML)
				if c.Cfg.Output == config.OutputJSON {
					format = string(export.FormatJSON)
				}
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			doc, err := exportDocument(c, args[0], typed)
			if err != nil {
				return err
			}
			return export.Write(c.Out, doc, f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (yaml|json)")
	cmd.Flags().BoolVar(&typed, "typed", false, "Export the canonical form of the read object")
	return cmd
}

func exportDocument(c *CommandContext, path string, typed bool) (*document.Document, error) {
	if typed {
		obj, _, err := c.Packages.OpenFile(path)
		if err != nil {
			return nil, err
		}
		w := persist.NewWriter(c.Types, c.Cfg.WriterOptions()...)
		return w.Encode(obj)
	}

	file := path
	if _, f, ok := card.KindForPath(path); ok {
		file = f
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	doc, err := document.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return doc, nil
}
