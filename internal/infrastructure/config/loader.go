// Package config loads and persists the YAML configuration file.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/aish/assets"
	"github.com/doeshing/aish/internal/domain"
	"github.com/doeshing/aish/internal/pkg/filesystem"
	"github.com/doeshing/aish/internal/ports"
)

// FileLoader loads YAML configuration from ~/.aish/config.yaml (overridable
// via --config or AISH_CONFIG). A config.yaml in the working directory wins
// over the home locations, so per-project setups work without flags.
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. When no config file exists yet, the
// embedded defaults are written to ~/.aish/config.yaml and returned.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return domain.Config{}, err
		}
		if err := writeDefault(path); err != nil {
			return domain.Config{}, err
		}
		data = assets.DefaultConfigYAML
	}

	// Start from the embedded defaults and let the user file override
	// field by field; keys the user never wrote keep their default.
	cfg, err := parseOverDefaults(data)
	if err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return hydrate(cfg), nil
}

// Path returns the file the loader reads from, whether or not it exists yet.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

// Save writes the configuration back to the loader's path.
func (l *FileLoader) Save(cfg domain.Config) error {
	path := l.resolvePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return expandPath(l.overridePath)
	}
	if custom := os.Getenv("AISH_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	candidates := []string{
		"config.yaml",
		filepath.Join(filesystem.UserHomeDir(), ".aish", "config.yaml"),
		filepath.Join(filesystem.UserHomeDir(), ".config", "aish", "config.yaml"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return filepath.Join(filesystem.UserHomeDir(), ".aish", "config.yaml")
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, assets.DefaultConfigYAML, 0o600)
}

func parseOverDefaults(data []byte) (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// hydrate expands ~ in file paths and fills derived defaults.
func hydrate(cfg domain.Config) domain.Config {
	if cfg.Preferences.DefaultModel == "" && len(cfg.Models) > 0 {
		cfg.Preferences.DefaultModel = cfg.Models[0].Name
	}
	if cfg.Preferences.TimeoutSeconds == 0 {
		cfg.Preferences.TimeoutSeconds = 30
	}
	cfg.Logging.AuditFile = expandPath(cfg.Logging.AuditFile)
	cfg.Training.DatasetFile = expandPath(cfg.Training.DatasetFile)
	cfg.History.File = expandPath(cfg.History.File)
	return cfg
}

func expandPath(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(filesystem.UserHomeDir(), path[2:])
	}
	return path
}

// Path reads a config value by dotted key ("security.require_confirmation").
// It works on the YAML representation, so key names match the file exactly.
func Path(cfg domain.Config, key string) (any, bool) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, false
	}
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, false
	}

	var value any = tree
	for _, part := range strings.Split(key, ".") {
		node, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}
		value, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return value, true
}

// SetPath writes a config value by dotted key and returns the updated
// configuration. The string value is coerced to bool or int when it parses
// as one, matching how YAML itself would read it.
func SetPath(cfg domain.Config, key, value string) (domain.Config, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return cfg, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return cfg, err
	}

	parts := strings.Split(key, ".")
	node := tree
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[part] = child
		}
		node = child
	}
	node[parts[len(parts)-1]] = coerce(value)

	merged, err := yaml.Marshal(tree)
	if err != nil {
		return cfg, err
	}
	var out domain.Config
	if err := yaml.Unmarshal(merged, &out); err != nil {
		return cfg, fmt.Errorf("set %s: %w", key, err)
	}
	return out, nil
}

func coerce(value string) any {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return value
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
