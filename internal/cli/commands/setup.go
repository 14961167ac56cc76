// Package commands implements the cardfile subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/cardfile/internal/card"
	"github.com/leapstack-labs/cardfile/internal/config"
	"github.com/leapstack-labs/cardfile/internal/packages"
	"github.com/leapstack-labs/cardfile/internal/state"
	"github.com/leapstack-labs/cardfile/pkg/persist"
	"github.com/leapstack-labs/cardfile/pkg/schema"
)

// CommandContext holds the dependencies shared by commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Types    *schema.Registry
	Packages *packages.Manager
	Store    *state.Store // nil unless an index exists or was requested
	Out      io.Writer
	ErrOut   io.Writer
}

// NewCommandContext creates a CommandContext from the config and logger
// stored on the command's context. With openIndex set the state store is
// created if missing; otherwise it is only used when it already exists.
func NewCommandContext(cmd *cobra.Command, openIndex bool) (*CommandContext, func(), error) {
	cfg := getConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	types := card.NewRegistry()

	store, err := openStore(cfg, openIndex)
	if err != nil {
		return nil, nil, err
	}

	opts := []packages.Option{
		packages.WithLogger(logger),
		packages.WithReaderOptions(cfg.ReaderOptions()...),
	}
	if store != nil {
		opts = append(opts, packages.WithIndex(store))
	}

	cleanup := func() {
		if store != nil {
			_ = store.Close()
		}
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Types:    types,
		Packages: packages.NewManager(types, cfg.PackagePaths, opts...),
		Store:    store,
		Out:      cmd.OutOrStdout(),
		ErrOut:   cmd.ErrOrStderr(),
	}, cleanup, nil
}

// getConfig returns the loaded configuration, or one loaded from the
// environment and defaults if the root command did not run.
func getConfig(ctx context.Context) *config.Config {
	if cfg := config.FromContext(ctx); cfg != nil {
		return cfg
	}
	cfg, err := config.Load("", nil)
	if err != nil {
		return &config.Config{VersionKey: persist.DefaultVersionKey, Output: config.OutputText, PackagePaths: []string{"."}}
	}
	return cfg
}

func openStore(cfg *config.Config, create bool) (*state.Store, error) {
	if cfg.StatePath == "" {
		return nil, nil
	}
	if cfg.StatePath != ":memory:" {
		_, err := os.Stat(cfg.StatePath)
		if errors.Is(err, fs.ErrNotExist) && !create {
			return nil, nil
		}
		if create {
			if err := os.MkdirAll(filepath.Dir(cfg.StatePath), 0o750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	store := state.NewStore()
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// targets expands command arguments into document paths. Without
// arguments every package under the package paths is used.
func (c *CommandContext) targets(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	found, err := c.Packages.Discover()
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(found))
	for i, p := range found {
		paths[i] = p.Path
	}
	return paths, nil
}
