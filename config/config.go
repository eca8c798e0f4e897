package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/dirshell/internal/util"
	"gopkg.in/yaml.v3"
)

// CLI style verbosity values accepted by [ConfigOverride.LogLvl]
const (
	ErrorVerbose = iota + util.MinVerbose
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl = util.InfoLevel

	// DefaultMaxNodes is the fixed size of the directory table, root included
	DefaultMaxNodes = 100

	// DefaultMaxChildren is the fixed size of each directory's child list
	DefaultMaxChildren = 10

	// DefaultLineCap is the input line buffer capacity in bytes
	DefaultLineCap = 80

	// DefaultIndentWidth is the number of spaces per depth level in dir_tree
	DefaultIndentWidth = 4

	// DefaultRootName is the name given to the root directory at start-up
	DefaultRootName = "root"

	// DefaultSink is the registered output sink used by the CLI
	DefaultSink = "console"

	DefaultFsName = "dirshell"
	DefaultName   = "dirshell"
)

// MountOptions configures the optional read-only FUSE view of the tree
type MountOptions struct {
	Debug      bool   // fuse debug logs
	FsName     string // mount's FsName
	Name       string // mount's Name
	AllowOther bool   // let other users see the mount; needs user_allow_other
}

// Config contains runtime configuration values for a shell session.
type Config struct {
	MountOptions
	LogLvl      util.LogLevel // Internal log level (Default info)
	MaxNodes    int           // Directory table capacity including root (Default 100)
	MaxChildren int           // Child list capacity per directory (Default 10)
	LineCap     int           // Input line capacity in bytes (Default 80)
	IndentWidth int           // Spaces per depth level when printing the tree (Default 4)
	RootName    string        // Name of the root directory (Default "root")
	Sink        string        // Registered output sink name (Default "console")
	HTTPAddr    string        // Listen address of the HTTP console; empty disables it
	// HTTPTokenHash is a bcrypt hash of the bearer token the HTTP console
	// requires. Empty leaves the console open.
	HTTPTokenHash string
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// LogLvl is a CLI style verbosity between 1 (error) and 5 (trace)
	LogLvl        *int    `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	MaxNodes      *int    `yaml:"max_nodes,omitempty" json:"max_nodes,omitempty"`
	MaxChildren   *int    `yaml:"max_children,omitempty" json:"max_children,omitempty"`
	LineCap       *int    `yaml:"line_cap,omitempty" json:"line_cap,omitempty"`
	IndentWidth   *int    `yaml:"indent_width,omitempty" json:"indent_width,omitempty"`
	RootName      *string `yaml:"root_name,omitempty" json:"root_name,omitempty"`
	Sink          *string `yaml:"sink,omitempty" json:"sink,omitempty"`
	HTTPAddr      *string `yaml:"http_addr,omitempty" json:"http_addr,omitempty"`
	HTTPTokenHash *string `yaml:"http_token_hash,omitempty" json:"http_token_hash,omitempty"`
	FsName        *string `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	Name          *string `yaml:"name,omitempty" json:"name,omitempty"`
	Debug         *bool   `yaml:"debug,omitempty" json:"debug,omitempty"`
	AllowOther    *bool   `yaml:"allow_other,omitempty" json:"allow_other,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		MountOptions: MountOptions{
			FsName: DefaultFsName,
			Name:   DefaultName,
		},
		LogLvl:      DefaultLogLvl,
		MaxNodes:    DefaultMaxNodes,
		MaxChildren: DefaultMaxChildren,
		LineCap:     DefaultLineCap,
		IndentWidth: DefaultIndentWidth,
		RootName:    DefaultRootName,
		Sink:        DefaultSink,
	}
}

// NewConfig returns the defaults with override applied on top.
// A nil override yields the defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
// Capacities that are not positive are ignored so the table can never be
// built without room for the root.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = util.LevelFromVerbose(*override.LogLvl)
	}
	if override.MaxNodes != nil && *override.MaxNodes > 0 {
		c.MaxNodes = *override.MaxNodes
	}
	if override.MaxChildren != nil && *override.MaxChildren > 0 {
		c.MaxChildren = *override.MaxChildren
	}
	if override.LineCap != nil && *override.LineCap > 0 {
		c.LineCap = *override.LineCap
	}
	if override.IndentWidth != nil && *override.IndentWidth >= 0 {
		c.IndentWidth = *override.IndentWidth
	}
	c.RootName = util.ValueOrDefault(override.RootName, c.RootName)
	c.Sink = util.ValueOrDefault(override.Sink, c.Sink)
	c.HTTPAddr = util.ValueOrDefault(override.HTTPAddr, c.HTTPAddr)
	c.HTTPTokenHash = util.ValueOrDefault(override.HTTPTokenHash, c.HTTPTokenHash)
	c.FsName = util.ValueOrDefault(override.FsName, c.FsName)
	c.Name = util.ValueOrDefault(override.Name, c.Name)
	c.Debug = util.ValueOrDefault(override.Debug, c.Debug)
	c.AllowOther = util.ValueOrDefault(override.AllowOther, c.AllowOther)
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
