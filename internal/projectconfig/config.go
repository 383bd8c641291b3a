// Package projectconfig provides the ProjectConfig struct and loader for
// .behaviorlab.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default values for project configuration. These are the single source of
// truth — New() references them and no other code should duplicate them.
const (
	DefaultStorePath = "behaviorlab.db"

	DefaultOracleCommand = "claude"

	DefaultTier      = "standard"
	DefaultDiversity = 0.5

	DefaultServerPort = 3000
)

// OracleConfig holds oracle invocation settings. Command is the external CLI
// used for both one-shot calls and interactive sessions; ExtraArgs are
// appended to every one-shot invocation.
type OracleConfig struct {
	Command   string   `yaml:"command,omitempty"`
	ExtraArgs []string `yaml:"extra_args,omitempty"`
}

// StoreConfig holds record store settings.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"`
}

// DefaultsConfig holds default evaluation parameters.
type DefaultsConfig struct {
	Tier      string   `yaml:"tier,omitempty"`
	Diversity *float64 `yaml:"diversity,omitempty"`
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Port      int   `yaml:"port,omitempty"`
	NoBrowser *bool `yaml:"no_browser,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .behaviorlab.yaml.
type ProjectConfig struct {
	Store    StoreConfig    `yaml:"store,omitempty"`
	Oracle   OracleConfig   `yaml:"oracle,omitempty"`
	Defaults DefaultsConfig `yaml:"defaults,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Store: StoreConfig{
			Path: DefaultStorePath,
		},
		Oracle: OracleConfig{
			Command: DefaultOracleCommand,
		},
		Defaults: DefaultsConfig{
			Tier:      DefaultTier,
			Diversity: float64Ptr(DefaultDiversity),
		},
		Server: ServerConfig{
			Port:      DefaultServerPort,
			NoBrowser: boolPtr(false),
		},
	}
}

// Load finds .behaviorlab.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading .behaviorlab.yaml: %w", err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing .behaviorlab.yaml: %w", err)
	}

	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .behaviorlab.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found. Propagates
// real I/O errors (e.g. permission denied) instead of silently swallowing
// them.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ".behaviorlab.yaml")
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	if src.Store.Path != "" {
		dst.Store.Path = src.Store.Path
	}

	if src.Oracle.Command != "" {
		dst.Oracle.Command = src.Oracle.Command
	}
	if len(src.Oracle.ExtraArgs) > 0 {
		dst.Oracle.ExtraArgs = src.Oracle.ExtraArgs
	}

	if src.Defaults.Tier != "" {
		dst.Defaults.Tier = src.Defaults.Tier
	}
	if src.Defaults.Diversity != nil {
		dst.Defaults.Diversity = src.Defaults.Diversity
	}

	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if src.Server.NoBrowser != nil {
		dst.Server.NoBrowser = src.Server.NoBrowser
	}
}

func boolPtr(b bool) *bool          { return &b }
func float64Ptr(f float64) *float64 { return &f }
