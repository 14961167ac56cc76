package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/cardfile/internal/card"
	"github.com/leapstack-labs/cardfile/internal/packages"
)

// CheckResult is the outcome of reading one document.
type CheckResult struct {
	Path     string   `json:"path" yaml:"path"`
	Type     string   `json:"type,omitempty" yaml:"type,omitempty"`
	Version  int64    `json:"version,omitempty" yaml:"version,omitempty"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the document was read without error.
func (r CheckResult) OK() bool { return r.Error == "" }

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Read documents and report errors and warnings",
		Long: `Read card file documents and report whether they load.

Each path may be a package directory (magic.mse-game) or the root file
inside one. Without paths, every package under the package paths is checked.
Referenced packages (a set's game and stylesheets) are loaded as well.`,
		Example: `  # Check every package under the package paths
  cardfile check

  # Check one set, treating warnings as errors
  cardfile check --strict sets/alpha.mse-set

  # Re-check whenever a file changes
  cardfile check --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := NewCommandContext(cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			if watch {
				return watchCheck(cmd.Context(), c, args)
			}
			return runCheck(cmd.Context(), c, args)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-check when files change")
	return cmd
}

func runCheck(ctx context.Context, c *CommandContext, args []string) error {
	paths, err := c.targets(args)
	if err != nil {
		return err
	}
	results, err := checkAll(ctx, c.Packages, paths)
	if err != nil {
		return err
	}
	if err := renderCheck(c.Out, c.Cfg.Output, results); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

// checkAll reads every path concurrently. Results are in path order.
func checkAll(ctx context.Context, m *packages.Manager, paths []string) ([]CheckResult, error) {
	results := make([]CheckResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = checkOne(m, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkOne(m *packages.Manager, path string) CheckResult {
	r := CheckResult{Path: path}
	if kind, _, ok := card.KindForPath(path); ok {
		r.Type = kind.Name
	}

	_, res, err := m.OpenFile(path)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Version = int64(res.Version)
	for _, w := range res.Warnings {
		r.Warnings = append(r.Warnings, w.String())
	}
	return r
}

func renderCheck(w io.Writer, format string, results []CheckResult) error {
	if ok, err := renderStructured(w, format, results); ok {
		return err
	}
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "(no documents)")
		return nil
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Document", "Type", "Version", "Warnings", "Status"})
	for _, r := range results {
		status := "ok"
		if !r.OK() {
			status = r.Error
		}
		version := ""
		if r.Version != 0 {
			version = fmt.Sprint(r.Version)
		}
		t.AppendRow(table.Row{r.Path, r.Type, version, len(r.Warnings), status})
	}
	t.Render()

	for _, r := range results {
		for _, warning := range r.Warnings {
			_, _ = fmt.Fprintf(w, "%s: warning: %s\n", r.Path, warning)
		}
	}
	return nil
}

// watchCheck checks once, then again after every change under the
// watched directories, until ctx is cancelled.
func watchCheck(ctx context.Context, c *CommandContext, args []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dirs := watchDirs(c, args)
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			c.Logger.Warn("cannot watch directory", "dir", dir, "error", err)
		}
	}

	var mu sync.Mutex
	rerun := func() {
		mu.Lock()
		defer mu.Unlock()
		c.Packages.Reset()
		if err := runCheck(ctx, c, args); err != nil {
			_, _ = fmt.Fprintln(c.ErrOut, err)
		}
	}
	rerun()

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				_ = watcher.Add(event.Name)
			}
			c.Logger.Debug("file changed", "file", event.Name)
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(100*time.Millisecond, rerun)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.Logger.Error("watcher error", "error", err)
		}
	}
}

// watchDirs returns the package directories to watch, plus the package
// roots so that new packages are noticed.
func watchDirs(c *CommandContext, args []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	if len(args) == 0 {
		for _, root := range c.Packages.Roots() {
			add(root)
		}
	}
	paths, err := c.targets(args)
	if err != nil {
		c.Logger.Warn("cannot list packages", "error", err)
	}
	for _, p := range paths {
		if _, file, ok := card.KindForPath(p); ok {
			add(filepath.Dir(file))
		}
	}
	return dirs
}
