package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up from the workspace upwards.
const FileName = ".dcd.yaml"

// Constants for default values.
const (
	DefaultAPIURL         = "https://api.devicecloud.dev"
	DefaultDCDVersion     = "latest"
	DefaultTheme          = "default"
	DefaultStatusInterval = 10 * time.Second
	DefaultStatusTimeout  = 30 * time.Minute
	DefaultMaxBufferSize  = 10 * 1024 * 1024 // 10MB
)

// ProjectConfig represents the contents of .dcd.yaml.
type ProjectConfig struct {
	APIURL        string `yaml:"api_url"`
	DCDVersion    string `yaml:"dcd_version"`
	Theme         string `yaml:"theme"`
	Debug         bool   `yaml:"debug"`
	MaxBufferSize int64  `yaml:"max_buffer_size"` // In bytes

	Status struct {
		Interval time.Duration `yaml:"interval"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"status"`
}

// DefaultProjectConfig returns a ProjectConfig with the hardcoded defaults.
func DefaultProjectConfig() *ProjectConfig {
	cfg := &ProjectConfig{
		APIURL:        DefaultAPIURL,
		DCDVersion:    DefaultDCDVersion,
		Theme:         DefaultTheme,
		MaxBufferSize: DefaultMaxBufferSize,
	}
	cfg.Status.Interval = DefaultStatusInterval
	cfg.Status.Timeout = DefaultStatusTimeout
	return cfg
}

// LoadProjectConfig loads .dcd.yaml found from dir upwards and merges it onto
// the defaults. A missing file is not an error; the returned path is empty then.
func LoadProjectConfig(dir string) (*ProjectConfig, string, error) {
	cfg := DefaultProjectConfig()

	configPath := findConfigFile(dir)
	if configPath == "" {
		return cfg, "", nil
	}

	data, err := os.ReadFile(configPath) // #nosec G304 - path is found by walking the workspace
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, "", nil
		}
		return nil, configPath, fmt.Errorf("reading %s: %w", configPath, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, configPath, fmt.Errorf("parsing %s: %w", configPath, err)
	}
	cfg.merge(&fileCfg)

	return cfg, configPath, nil
}

// merge copies every non-zero field of other onto c.
func (c *ProjectConfig) merge(other *ProjectConfig) {
	if other.APIURL != "" {
		c.APIURL = other.APIURL
	}
	if other.DCDVersion != "" {
		c.DCDVersion = other.DCDVersion
	}
	if other.Theme != "" {
		c.Theme = other.Theme
	}
	c.Debug = c.Debug || other.Debug
	if other.MaxBufferSize > 0 {
		c.MaxBufferSize = other.MaxBufferSize
	}
	if other.Status.Interval > 0 {
		c.Status.Interval = other.Status.Interval
	}
	if other.Status.Timeout > 0 {
		c.Status.Timeout = other.Status.Timeout
	}
}

// findConfigFile looks for .dcd.yaml in dir and its parents.
func findConfigFile(dir string) string {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(dir, FileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
