// Package config loads image-data settings from defaults, a project file,
// the environment and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. IMAGE_DATA_CACHE_PATH.
const EnvPrefix = "IMAGE_DATA"

// Config is constructed once and passed to the components that need it.
type Config struct {
	AssetPaths   string `mapstructure:"asset-paths"`
	CachePath    string `mapstructure:"cache-path"`
	CacheBackend string `mapstructure:"cache-backend"`
	Jobs         int    `mapstructure:"jobs"`
	Resampler    string `mapstructure:"resampler"`
	Sniff        bool   `mapstructure:"sniff"`
	LogLevel     string `mapstructure:"log-level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		AssetPaths:   "./src/images/**/*",
		CachePath:    "./.cache",
		CacheBackend: "fs",
		Jobs:         0,
		Resampler:    "imaging",
		Sniff:        false,
		LogLevel:     "info",
	}
}

// Validate checks option values.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.AssetPaths) == "" {
		errs = append(errs, errors.New("asset-paths must not be empty"))
	}
	if strings.TrimSpace(c.CachePath) == "" {
		errs = append(errs, errors.New("cache-path must not be empty"))
	}
	if c.Jobs < 0 {
		errs = append(errs, fmt.Errorf("jobs must be >= 0, got %d", c.Jobs))
	}
	switch c.CacheBackend {
	case "fs", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown cache-backend %q (want fs or sqlite)", c.CacheBackend))
	}
	switch c.Resampler {
	case "imaging", "bild":
	default:
		errs = append(errs, fmt.Errorf("unknown resampler %q (want imaging or bild)", c.Resampler))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log-level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// RegisterFlags adds one flag per option to fs, defaulting to Default().
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("asset-paths", d.AssetPaths, "glob of candidate image files")
	fs.String("cache-path", d.CachePath, "directory holding cached image data")
	fs.String("cache-backend", d.CacheBackend, "cache backend (fs|sqlite)")
	fs.Int("jobs", d.Jobs, "max images resolved at once (0 = no limit)")
	fs.String("resampler", d.Resampler, "dominant colour resampler (imaging|bild)")
	fs.Bool("sniff", d.Sniff, "confirm image files by content, not just extension")
	fs.String("log-level", d.LogLevel, "log level (debug|info|warn|error)")
}

// Load resolves the configuration.
//
// configFile, when non-empty, must exist. Otherwise ".image-data.{yaml,yml,json,toml}"
// in dir is read if present. Flags in fs override everything but only when set
// explicitly; fs may be nil.
func Load(dir, configFile string, fs *pflag.FlagSet) (Config, error) {
	v := viper.New()

	d := Default()
	v.SetDefault("asset-paths", d.AssetPaths)
	v.SetDefault("cache-path", d.CachePath)
	v.SetDefault("cache-backend", d.CacheBackend)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("resampler", d.Resampler)
	v.SetDefault("sniff", d.Sniff)
	v.SetDefault("log-level", d.LogLevel)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName(".image-data")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("error reading project config: %w", err)
			}
		}
	}

	// Option names used by the stylesheet plugin this tool replaces.
	v.RegisterAlias("assetPaths", "asset-paths")
	v.RegisterAlias("cachePath", "cache-path")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("error binding flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
