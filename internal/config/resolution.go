package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ResolvedConfig holds the configuration after applying file, environment and defaults.
type ResolvedConfig struct {
	APIURL         string
	DCDVersion     string
	Theme          string
	NoColor        bool
	Debug          bool
	MaxBufferSize  int64
	StatusInterval time.Duration
	StatusTimeout  time.Duration

	// Resolution metadata (for debugging)
	ConfigPath    string // empty when no .dcd.yaml was found
	APIURLSource  string // "env", "file", "default"
	VersionSource string // "env", "file", "default"
}

// Resolve loads the project file found from dir and applies DCD_* environment
// overrides on top of it.
func Resolve(dir string) (*ResolvedConfig, error) {
	fileCfg, path, err := LoadProjectConfig(dir)
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedConfig{
		APIURL:         fileCfg.APIURL,
		DCDVersion:     fileCfg.DCDVersion,
		Theme:          fileCfg.Theme,
		Debug:          fileCfg.Debug,
		MaxBufferSize:  fileCfg.MaxBufferSize,
		StatusInterval: fileCfg.Status.Interval,
		StatusTimeout:  fileCfg.Status.Timeout,
		ConfigPath:     path,
		APIURLSource:   "default",
		VersionSource:  "default",
	}
	if path != "" {
		if fileCfg.APIURL != DefaultAPIURL {
			resolved.APIURLSource = "file"
		}
		if fileCfg.DCDVersion != DefaultDCDVersion {
			resolved.VersionSource = "file"
		}
	}

	if v := os.Getenv("DCD_API_URL"); v != "" {
		resolved.APIURL = v
		resolved.APIURLSource = "env"
	}
	if v := os.Getenv("DCD_VERSION"); v != "" {
		resolved.DCDVersion = v
		resolved.VersionSource = "env"
	}
	if v := os.Getenv("DCD_THEME"); v != "" {
		resolved.Theme = v
	}
	if b := getEnvBool("DCD_DEBUG", "RUNNER_DEBUG"); b != nil && *b {
		resolved.Debug = true
	}
	if os.Getenv("NO_COLOR") != "" {
		resolved.NoColor = true
	}
	if resolved.NoColor {
		resolved.Theme = "mono"
	}

	if err := validateResolvedConfig(resolved); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return resolved, nil
}

// getEnvBool reads a boolean from environment variables, trying multiple keys.
// Returns nil if none are set, or a pointer to the boolean value.
func getEnvBool(keys ...string) *bool {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return &b
			}
		}
	}
	return nil
}

func validateResolvedConfig(cfg *ResolvedConfig) error {
	validThemes := map[string]bool{"default": true, "orca": true, "mono": true}
	if !validThemes[cfg.Theme] {
		return fmt.Errorf("invalid theme: %s (must be: default, orca, mono)", cfg.Theme)
	}
	if cfg.MaxBufferSize <= 0 {
		return fmt.Errorf("max_buffer_size must be positive, got: %d", cfg.MaxBufferSize)
	}
	if cfg.StatusInterval <= 0 {
		return fmt.Errorf("status.interval must be positive, got: %s", cfg.StatusInterval)
	}
	if cfg.StatusTimeout < cfg.StatusInterval {
		return fmt.Errorf("status.timeout %s is shorter than status.interval %s", cfg.StatusTimeout, cfg.StatusInterval)
	}
	return nil
}
