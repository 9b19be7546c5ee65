package app

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/vk/metaclass/internal/registry"
)

// AppDirName is the directory name used below the XDG config home.
const AppDirName = "metaclass"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ManifestPaths are files or directories holding module manifests.
	ManifestPaths []string
	// Preload names modules that are loaded eagerly at startup.
	Preload []string
	// LoaderBaseDirs are searched by the loadable manager for relative paths.
	LoaderBaseDirs []string
	// MaxResolveAttempts bounds module resolution retries.
	MaxResolveAttempts int

	LogFormat string
	LogLevel  string
}

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if !slices.Contains(validLogLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log-level %q: must be one of %s", cfg.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if !slices.Contains(validLogFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch {
	case cfg.MaxResolveAttempts < 0:
		return nil, fmt.Errorf("invalid resolve-attempts %d: must not be negative", cfg.MaxResolveAttempts)
	case cfg.MaxResolveAttempts == 0:
		cfg.MaxResolveAttempts = registry.DefaultMaxResolveAttempts
	}
	return &cfg, nil
}

// DefaultManifestPaths returns the manifest locations used when none are
// configured: `manifests` in the working directory and the per-user
// directory below the XDG config home.
func DefaultManifestPaths() []string {
	return []string{"manifests", filepath.Join(xdg.ConfigHome, AppDirName, "manifests")}
}
