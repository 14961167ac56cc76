package commands

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/cardfile/internal/card"
	"github.com/leapstack-labs/cardfile/pkg/persist"
)

// NewFmtCommand creates the fmt command.
func NewFmtCommand() *cobra.Command {
	var (
		check bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "fmt [path...]",
		Short: "Rewrite documents in canonical form at the current format version",
		Long: `Read each document and write it back in canonical form.

Legacy keys are migrated to their current names and the version key is set
to the current format version. Documents with unknown keys or blocks are
left alone unless --force is given, since rewriting would drop them.`,
		Example: `  # Report documents that are not canonical
  cardfile fmt --check

  # Upgrade an old stylesheet in place
  cardfile fmt old.mse-style`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := NewCommandContext(cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()
			return runFmt(c, args, check, force)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Only report documents that would change")
	cmd.Flags().BoolVar(&force, "force", false, "Rewrite documents even if unknown entries would be dropped")
	return cmd
}

func runFmt(c *CommandContext, args []string, check, force bool) error {
	paths, err := c.targets(args)
	if err != nil {
		return err
	}
	w := persist.NewWriter(c.Types, append(c.Cfg.WriterOptions(), persist.WithLogger(c.Logger))...)

	var changed, failed int
	for _, path := range paths {
		status, err := fmtOne(c, w, path, check, force)
		if err != nil {
			failed++
			_, _ = fmt.Fprintf(c.ErrOut, "%s: %v\n", path, err)
			continue
		}
		if status != "" {
			changed++
			_, _ = fmt.Fprintf(c.Out, "%s: %s\n", path, status)
		}
	}

	switch {
	case failed > 0:
		return fmt.Errorf("%d of %d documents failed", failed, len(paths))
	case check && changed > 0:
		return fmt.Errorf("%d of %d documents are not canonical", changed, len(paths))
	}
	return nil
}

// fmtOne returns a status for changed documents and "" for unchanged ones.
func fmtOne(c *CommandContext, w *persist.Writer, path string, check, force bool) (string, error) {
	_, file, ok := card.KindForPath(path)
	if !ok {
		return "", fmt.Errorf("cannot determine package type")
	}
	obj, res, err := c.Packages.OpenFile(path)
	if err != nil {
		return "", err
	}
	if res.HasWarnings() && !force {
		return "", fmt.Errorf("%d unknown entries would be dropped (use --force)", len(res.Warnings))
	}

	out, err := w.Marshal(obj)
	if err != nil {
		return "", err
	}
	orig, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file, err)
	}
	if bytes.Equal(orig, out) {
		return "", nil
	}
	if check {
		return "would reformat", nil
	}
	if err := w.WriteFile(file, obj); err != nil {
		return "", err
	}
	if res.Version != w.Version() {
		return fmt.Sprintf("upgraded from %s", res.Version.Dotted()), nil
	}
	return "reformatted", nil
}
