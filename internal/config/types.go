// Package config loads cardfile configuration from defaults, a cardfile.yaml
// file, CARDFILE_ environment variables and command-line flags.
package config

import (
	"fmt"

	"github.com/leapstack-labs/cardfile/internal/card"
	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/persist"
)

// Config holds all configuration options.
type Config struct {
	VersionKey   string   `koanf:"version_key"`
	MaxVersion   int64    `koanf:"max_version"`
	Strict       bool     `koanf:"strict"`
	PackagePaths []string `koanf:"package_paths"`
	StatePath    string   `koanf:"state_path"`
	Verbose      bool     `koanf:"verbose"`
	Output       string   `koanf:"output"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
	// ConfigFile is the config file that was loaded, if any.
	ConfigFile string `koanf:"-"`
}

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Validate checks option values.
func (c *Config) Validate() error {
	if c.VersionKey == "" {
		return fmt.Errorf("version_key must not be empty")
	}
	if c.MaxVersion < 0 {
		return fmt.Errorf("max_version must not be negative, got %d", c.MaxVersion)
	}
	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("unknown output format %q (expected text, json or yaml)", c.Output)
	}
	return nil
}

// ReaderOptions returns the document reader options the config selects.
// Documents newer than the current format are rejected unless MaxVersion
// says otherwise.
func (c *Config) ReaderOptions() []persist.Option {
	maxVersion := card.CurrentVersion
	if c.MaxVersion > 0 {
		maxVersion = core.Version(c.MaxVersion)
	}
	return []persist.Option{
		persist.WithVersionKey(c.VersionKey),
		persist.WithStrict(c.Strict),
		persist.WithMaxVersion(maxVersion),
	}
}

// WriterOptions returns the document writer options the config selects.
func (c *Config) WriterOptions() []persist.Option {
	return []persist.Option{
		persist.WithVersionKey(c.VersionKey),
		persist.WithVersion(card.CurrentVersion),
	}
}
