package commands

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"runtime"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/cardfile/internal/packages"
	"github.com/leapstack-labs/cardfile/internal/state"
)

// Index statuses.
const (
	indexUpdated   = "indexed"
	indexUnchanged = "unchanged"
)

// IndexEntry is the outcome of indexing one package.
type IndexEntry struct {
	Kind    string `json:"kind" yaml:"kind"`
	Name    string `json:"name" yaml:"name"`
	Path    string `json:"path" yaml:"path"`
	Version int64  `json:"version" yaml:"version"`
	Status  string `json:"status" yaml:"status"`
}

// NewIndexCommand creates the index command.
func NewIndexCommand() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Record the packages under the package paths in the state database",
		Long: `Scan the package paths and record every package's type, name, location,
format version and content hash. References to indexed packages resolve
even when the package is outside the package paths. Packages that are no
longer found are removed from the index.`,
		Example: `  cardfile index
  cardfile index --list`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, cleanup, err := NewCommandContext(cmd, true)
			if err != nil {
				return err
			}
			defer cleanup()
			if c.Store == nil {
				return fmt.Errorf("no state database configured")
			}

			if list {
				return listIndex(c)
			}
			return runIndex(cmd, c)
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List the index instead of rebuilding it")
	return cmd
}

func runIndex(cmd *cobra.Command, c *CommandContext) error {
	found, err := c.Packages.Discover()
	if err != nil {
		return err
	}
	scan, err := c.Store.BeginScan()
	if err != nil {
		return err
	}

	entries := make([]IndexEntry, len(found))
	records := make([]*state.Package, len(found))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range found {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, status, err := indexOne(c, scan.ID, p)
			if err != nil {
				return fmt.Errorf("%s: %w", p.Path, err)
			}
			records[i] = rec
			entries[i] = IndexEntry{Kind: rec.Kind, Name: rec.Name, Path: rec.Path, Version: int64(rec.Version), Status: status}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// the store has a single writer
	for _, rec := range records {
		if err := c.Store.Upsert(rec); err != nil {
			return err
		}
	}

	removed, err := c.Store.CompleteScan(scan)
	if err != nil {
		return err
	}
	c.Logger.Info("index updated", "scan", scan.ID, "packages", scan.Found, "removed", removed)

	if ok, err := renderStructured(c.Out, c.Cfg.Output, entries); ok {
		return err
	}
	renderIndex(c, entries)
	_, _ = fmt.Fprintf(c.Out, "(%d packages, %d removed)\n", len(entries), removed)
	return nil
}

// indexOne builds the index record of a package, reading the package only
// when its content changed since the last scan.
func indexOne(c *CommandContext, scanID string, p packages.Package) (*state.Package, string, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read package: %w", err)
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	rec := &state.Package{Kind: p.Kind.Name, Name: p.Name, Path: p.Path, Hash: hash, ScanID: scanID}
	prev, err := c.Store.Get(p.Kind.Name, p.Name)
	if err != nil {
		return nil, "", err
	}
	if prev != nil && prev.Hash == hash && prev.Path == p.Path {
		rec.Version = prev.Version
		return rec, indexUnchanged, nil
	}

	_, res, err := c.Packages.OpenFile(p.Path)
	if err != nil {
		return nil, "", err
	}
	rec.Version = res.Version
	return rec, indexUpdated, nil
}

func listIndex(c *CommandContext) error {
	pkgs, err := c.Store.List("")
	if err != nil {
		return err
	}
	entries := make([]IndexEntry, len(pkgs))
	for i, p := range pkgs {
		entries[i] = IndexEntry{Kind: p.Kind, Name: p.Name, Path: p.Path, Version: int64(p.Version), Status: p.UpdatedAt.Format("2006-01-02 15:04:05")}
	}
	if ok, err := renderStructured(c.Out, c.Cfg.Output, entries); ok {
		return err
	}
	renderIndex(c, entries)
	return nil
}

func renderIndex(c *CommandContext, entries []IndexEntry) {
	t := newTable(c.Out)
	t.AppendHeader(table.Row{"Type", "Name", "Version", "Path", "Status"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.Kind, e.Name, e.Version, e.Path, e.Status})
	}
	t.Render()
}
