package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/cardfile/internal/card"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display cardfile version and the newest document format version it reads and writes.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "cardfile v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "document format %s (%s)\n", card.CurrentVersion.Dotted(), card.CurrentVersion)
		},
	}
}
