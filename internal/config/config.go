// Package config loads signetc settings from a config file and the
// environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	EnvTrace  = "SIGNET_TRACE"
	EnvStrict = "SIGNET_STRICT"

	FormatText = "text"
	FormatJSON = "json"
)

// DefaultFiles are looked up, in order, when no config path is given
var DefaultFiles = []string{"signet.yaml", "signet.yml", "signet.json"}

// File is the on-disk configuration
type File struct {
	Definitions []string `yaml:"definitions" json:"definitions"`
	Format      string   `yaml:"format" json:"format"`
	Trace       *bool    `yaml:"trace" json:"trace"`
	Strict      *bool    `yaml:"strict" json:"strict"`
}

// Settings are the effective values used by the CLI
type Settings struct {
	Definitions []string
	Format      string
	Trace       bool
	Strict      bool
}

// Defaults returns settings with every field at its default
func Defaults() Settings {
	return Settings{Format: FormatText}
}

// Load reads a config file. JSON is used for .json files, YAML otherwise.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &File{}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config yaml: %w", err)
		}
	}

	// Definition paths are relative to the config file
	base := filepath.Dir(path)
	for i, def := range cfg.Definitions {
		if def != "" && !filepath.IsAbs(def) {
			cfg.Definitions[i] = filepath.Join(base, def)
		}
	}
	return cfg, nil
}

// Discover returns the first default config file present in dir
func Discover(dir string) (string, bool) {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Apply copies file values into settings for every flag the user did not
// set explicitly. setFlags is keyed by flag name.
func (c *File) Apply(settings *Settings, setFlags map[string]bool) error {
	if c == nil {
		return nil
	}

	if len(c.Definitions) > 0 && !setFlags["defs"] {
		settings.Definitions = append([]string(nil), c.Definitions...)
	}
	if c.Format != "" && !setFlags["format"] {
		format, err := ParseFormat(c.Format)
		if err != nil {
			return fmt.Errorf("format: %w", err)
		}
		settings.Format = format
	}
	if c.Trace != nil && !setFlags["trace"] {
		settings.Trace = *c.Trace
	}
	if c.Strict != nil && !setFlags["strict"] {
		settings.Strict = *c.Strict
	}
	return nil
}

// ApplyEnv applies SIGNET_TRACE and SIGNET_STRICT to every setting whose
// flag was not set explicitly
func ApplyEnv(settings *Settings, setFlags map[string]bool) {
	if value, ok := envBool(EnvTrace); ok && !setFlags["trace"] {
		settings.Trace = value
	}
	if value, ok := envBool(EnvStrict); ok && !setFlags["strict"] {
		settings.Strict = value
	}
}

// ExpandDefinitions replaces each directory in paths with the YAML and JSON
// files it contains, sorted by name. Files are kept as given.
func ExpandDefinitions(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("definitions %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("reading definitions dir: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(entry.Name())) {
			case ".yaml", ".yml", ".json":
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
	}
	return files, nil
}

// ParseFormat normalizes an output format name
func ParseFormat(raw string) (string, error) {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "", "text", "plain":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", raw)
	}
}

func envBool(key string) (bool, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return false, false
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}
