// Package config provides configuration management for the slabs CLI using
// Viper for flexible loading from files, environment variables, and
// command-line flags.
//
// Configuration is read from .slabs.yml with SLABS_-prefixed environment
// variable overrides (SLABS_BLOCKS_ROOT, SLABS_SERVER_PORT, ...). Loaded
// values are validated before use; commands receive a fully defaulted
// Config and never consult viper directly.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/slabs-dev/slabs/internal/errors"
	"github.com/slabs-dev/slabs/internal/types"
)

type Config struct {
	Blocks   BlocksConfig   `yaml:"blocks"`
	Registry RegistryConfig `yaml:"registry"`
	Server   ServerConfig   `yaml:"server"`
	Watch    WatchConfig    `yaml:"watch"`
	LogLevel string         `yaml:"log_level"`
}

// BlocksConfig configures block discovery.
type BlocksConfig struct {
	Root           string   `yaml:"root"`
	Include        []string `yaml:"include"`
	Exclude        []string `yaml:"exclude"`
	MaxDepth       int      `yaml:"max_depth"`
	FollowSymlinks bool     `yaml:"follow_symlinks"`
	Ignore         []string `yaml:"ignore"`
}

// RegistryConfig configures generated artifact output.
type RegistryConfig struct {
	OutFile   string `yaml:"out_file"`
	TypesFile string `yaml:"types_file"`
}

// ServerConfig configures the dev server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// WatchConfig configures the file watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Load builds a validated Config from viper's merged sources.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, errors.NewConfigError("unmarshaling configuration: " + err.Error())
	}

	// Workarounds for viper's handling of slices from env vars and of
	// underscored keys, which mapstructure does not map onto field names.
	if viper.IsSet("blocks.include") && len(config.Blocks.Include) == 0 {
		config.Blocks.Include = viper.GetStringSlice("blocks.include")
	}
	if viper.IsSet("blocks.exclude") && len(config.Blocks.Exclude) == 0 {
		config.Blocks.Exclude = viper.GetStringSlice("blocks.exclude")
	}
	if viper.IsSet("blocks.ignore") && len(config.Blocks.Ignore) == 0 {
		config.Blocks.Ignore = viper.GetStringSlice("blocks.ignore")
	}
	if viper.IsSet("blocks.max_depth") {
		config.Blocks.MaxDepth = viper.GetInt("blocks.max_depth")
	}
	if viper.IsSet("blocks.follow_symlinks") {
		config.Blocks.FollowSymlinks = viper.GetBool("blocks.follow_symlinks")
	}
	if viper.IsSet("registry.out_file") && config.Registry.OutFile == "" {
		config.Registry.OutFile = viper.GetString("registry.out_file")
	}
	if viper.IsSet("registry.types_file") && config.Registry.TypesFile == "" {
		config.Registry.TypesFile = viper.GetString("registry.types_file")
	}
	if viper.IsSet("log_level") && config.LogLevel == "" {
		config.LogLevel = viper.GetString("log_level")
	}

	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Blocks.Root == "" {
		config.Blocks.Root = "./blocks"
	}
	if !viper.IsSet("blocks.max_depth") && config.Blocks.MaxDepth == 0 {
		config.Blocks.MaxDepth = 1
	}
	if len(config.Blocks.Ignore) == 0 {
		config.Blocks.Ignore = types.DefaultScanOptions().Ignore
	}
	if config.Registry.OutFile == "" {
		config.Registry.OutFile = "slabs-registry.js"
	}
	if config.Registry.TypesFile == "" {
		config.Registry.TypesFile = "slabs-registry.d.ts"
	}
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 7420
	}
	if config.Watch.Debounce == 0 {
		config.Watch.Debounce = 300 * time.Millisecond
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
}

func validate(config *Config) error {
	if config.Blocks.MaxDepth < 0 {
		return errors.NewConfigError(fmt.Sprintf("blocks.max_depth must be >= 0, got %d", config.Blocks.MaxDepth))
	}
	if config.Server.Port < 0 || config.Server.Port > 65535 {
		return errors.NewConfigError(fmt.Sprintf("server.port must be 0-65535, got %d", config.Server.Port))
	}
	if config.Watch.Debounce < 0 {
		return errors.NewConfigError("watch.debounce must not be negative")
	}
	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.NewConfigError(fmt.Sprintf("log_level must be one of debug, info, warn, error; got %q", config.LogLevel))
	}

	return nil
}

// ScanOptions converts the blocks section into scanner options.
func (c *Config) ScanOptions() types.ScanOptions {
	return types.ScanOptions{
		Include:        c.Blocks.Include,
		Exclude:        c.Blocks.Exclude,
		MaxDepth:       c.Blocks.MaxDepth,
		FollowSymlinks: c.Blocks.FollowSymlinks,
		Ignore:         c.Blocks.Ignore,
	}
}
