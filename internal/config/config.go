// Package config holds the nush session configuration: the completion
// settings read from the user's config file, overlaid by assignments the
// interpreter evaluates at runtime.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"
)

// SupportedConfigNames contains supported configuration file names, in order
// of preference
var SupportedConfigNames = []string{
	"config.yaml",
	"config.yml",
	"config.toml",
	"config.json",
}

// ExternalConfig configures the user-supplied external completer
type ExternalConfig struct {
	Enable     bool `koanf:"enable"`
	MaxResults int  `koanf:"max_results"`

	// Completer holds the closure assigned at runtime via
	// $env.config.completions.external.completer. It is an
	// *interpreter.ClosureValue; typed as any to keep this package free of
	// interpreter imports.
	Completer any `koanf:"-"`
}

// CompletionsConfig configures matching and ranking
type CompletionsConfig struct {
	Algorithm     string         `koanf:"algorithm"` // prefix, fuzzy or substring
	CaseSensitive bool           `koanf:"case_sensitive"`
	Sort          string         `koanf:"sort"` // smart, alphabetical or none
	External      ExternalConfig `koanf:"external"`
}

// Config represents a nush session configuration
type Config struct {
	Completions CompletionsConfig `koanf:"completions"`
	LibDirs     []string          `koanf:"lib_dirs"`

	// constLibDirs holds directories declared with `const NU_LIB_DIRS = […]`.
	// They take precedence over the environment and the config file.
	constLibDirs []string
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Completions: CompletionsConfig{
			Algorithm: "prefix",
			Sort:      "smart",
			External: ExternalConfig{
				MaxResults: 100,
			},
		},
	}
}

// Load parses the config file at path into a Config layered over the
// defaults. The format follows the file extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".toml":
		parser = toml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDir looks for a supported config file in dir and loads the first one
// found. A missing file is not an error; the defaults are returned.
func LoadDir(dir string) (*Config, error) {
	for _, name := range SupportedConfigNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Default(), nil
}

// SetConstLibDirs records the NU_LIB_DIRS constant declared in the session.
func (c *Config) SetConstLibDirs(dirs []string) {
	c.constLibDirs = dirs
}

// LibraryDirs returns the module search directories: const-declared first,
// then the NU_LIB_DIRS environment variable, then the config file, with
// duplicates removed.
func (c *Config) LibraryDirs() []string {
	dirs := append([]string{}, c.constLibDirs...)
	if env := os.Getenv("NU_LIB_DIRS"); env != "" {
		for _, dir := range strings.Split(env, string(os.PathListSeparator)) {
			if dir != "" {
				dirs = append(dirs, dir)
			}
		}
	}
	dirs = append(dirs, c.LibDirs...)
	return lo.Uniq(dirs)
}
