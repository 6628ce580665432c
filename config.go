//go:build !ios && !android && (amd64 || arm64)

package xmlgo

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/obinnaokechukwu/xmlgo/diagnostics"
	"github.com/obinnaokechukwu/xmlgo/internal/bindings"
)

// Config is the TOML-loadable library configuration:
//
//	[library]
//	path = "/opt/libxml2/lib/libxml2.so.16"
//	search_paths = ["/opt/libxml2/lib"]
//
//	[diagnostics]
//	enabled = true
//	caller_detail = true
//
//	[log]
//	level = "debug"
type Config struct {
	Library     LibraryConfig     `toml:"library"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
	Log         LogConfig         `toml:"log"`
}

// LibraryConfig controls where libxml2 is loaded from.
type LibraryConfig struct {
	// Path is an explicit library file. XMLGO_LIBRARY_PATH overrides it.
	Path string `toml:"path"`

	// SearchPaths are searched before the platform defaults.
	SearchPaths []string `toml:"search_paths"`
}

// DiagnosticsConfig controls wrapper tracking.
type DiagnosticsConfig struct {
	Enabled      bool `toml:"enabled"`
	CallerDetail bool `toml:"caller_detail"`
	CallerStats  bool `toml:"caller_stats"`
}

// LogConfig controls the library logger.
type LogConfig struct {
	// Level is a zap level name ("debug", "info", ...) or "off". Empty
	// leaves the logger unchanged.
	Level string `toml:"level"`
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := checkUndecoded(path, meta); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return &cfg, nil
}

// ParseConfig parses a TOML configuration from a string.
func ParseConfig(data string) (*Config, error) {
	var cfg Config
	meta, err := toml.Decode(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := checkUndecoded("config", meta); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return &cfg, nil
}

func checkUndecoded(source string, meta toml.MetaData) error {
	keys := meta.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return fmt.Errorf("%s: unknown keys: %s", source, strings.Join(names, ", "))
}

func (c *Config) applyEnv() {
	if env := os.Getenv(bindings.EnvLibraryPath); env != "" {
		if fi, err := os.Stat(env); err == nil && !fi.IsDir() {
			c.Library.Path = env
		}
	}
}

// DiagnosticsOptions converts the diagnostics section to tracker options.
func (c *Config) DiagnosticsOptions() diagnostics.Options {
	return diagnostics.Options{
		CallerDetail: c.Diagnostics.CallerDetail,
		CallerStats:  c.Diagnostics.CallerStats,
	}
}

// Apply installs the configuration. Library settings only take effect if
// libxml2 has not been loaded yet.
func (c *Config) Apply() error {
	if IsLoaded() && (c.Library.Path != "" || len(c.Library.SearchPaths) > 0) {
		Logger().Warn("libxml2 already loaded; library settings ignored",
			zap.String("loaded", LibraryPath()))
	}
	bindings.Configure(c.Library.Path, c.Library.SearchPaths)

	if c.Diagnostics.Enabled {
		diagnostics.Enable(c.DiagnosticsOptions())
	} else {
		diagnostics.Disable()
	}

	switch level := strings.ToLower(strings.TrimSpace(c.Log.Level)); level {
	case "":
	case "off", "none":
		SetLogger(nil)
	default:
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		zcfg := zap.NewDevelopmentConfig()
		zcfg.Level = lvl
		l, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		SetLogger(l)
	}
	return nil
}
