package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/cardfile/pkg/persist"
)

// Config file names, in lookup order.
const (
	ConfigFileName    = "cardfile.yaml"
	ConfigFileNameAlt = "cardfile.yml"
)

// EnvPrefix prefixes environment variables: CARDFILE_STRICT → strict.
const EnvPrefix = "CARDFILE_"

// Default configuration values.
const (
	DefaultStateFile = ".cardfile/index.db"
	DefaultOutput    = OutputText
)

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// flagKeys maps flag names that differ from their config keys.
var flagKeys = map[string]string{
	"state":        "state_path",
	"package-path": "package_paths",
}

// Load loads configuration. Precedence (highest to lowest): flags > env
// vars > config file > defaults. An empty cfgFile searches upward from the
// working directory. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"version_key":   persist.DefaultVersionKey,
		"max_version":   0,
		"strict":        false,
		"package_paths": []string{"."},
		"state_path":    DefaultStateFile,
		"verbose":       false,
		"output":        DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	if cfgFile == "" {
		cfgFile = findConfigUpward(root)
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		if abs, err := filepath.Abs(cfgFile); err == nil {
			root = filepath.Dir(abs)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}
	// CARDFILE_PACKAGE_PATHS holds a list
	if v := os.Getenv(EnvPrefix + "PACKAGE_PATHS"); v != "" {
		if err := k.Set("package_paths", filepath.SplitList(v)); err != nil {
			return nil, fmt.Errorf("failed to load env vars: %w", err)
		}
	}

	// flag values are relative to the working directory, not the project root
	var flagPaths, flagState bool
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if mapped, ok := flagKeys[f.Name]; ok {
				key = mapped
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
		flagPaths = changed(flags, "package-path")
		flagState = changed(flags, "state")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ProjectRoot = root
	cfg.ConfigFile = cfgFile

	cwd, _ := os.Getwd()
	pathBase := root
	if flagPaths {
		pathBase = cwd
	}
	for i, p := range cfg.PackagePaths {
		cfg.PackagePaths[i] = resolvePathRelativeTo(p, pathBase)
	}
	stateBase := root
	if flagState {
		stateBase = cwd
	}
	if cfg.StatePath != ":memory:" {
		cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, stateBase)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// findConfigUpward searches upward from startDir for a config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findConfigUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func changed(flags *pflag.FlagSet, name string) bool {
	f := flags.Lookup(name)
	return f != nil && f.Changed
}
