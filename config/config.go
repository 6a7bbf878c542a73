// Package config loads the process-wide devd configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the file configuration for devd. All fields are optional;
// missing ones take the defaults below.
type Config struct {
	// Root is the directory device nodes are created under.
	Root string `yaml:"udev_root"`
	// DBPath is where the device database lives.
	DBPath string `yaml:"udev_db"`
	// DryRun computes and logs everything without touching the
	// filesystem or the kernel.
	DryRun bool `yaml:"dry_run"`
	// DefaultMode/DefaultOwner/DefaultGroup apply to devices for which
	// the naming decision does not say otherwise.
	DefaultMode  uint32 `yaml:"default_mode"`
	DefaultOwner string `yaml:"default_owner"`
	DefaultGroup string `yaml:"default_group"`
	// SelinuxContext, when set on an SELinux-enabled system, is the
	// file context applied to created nodes.
	SelinuxContext string `yaml:"selinux_context"`
	LogLevel       string `yaml:"log_level"`
}

var defaultConfig = Config{
	Root:        "/dev",
	DBPath:      "/var/lib/devd/devices.db",
	DefaultMode: 0600,
	LogLevel:    "info",
}

// Load reads the config at path. An empty path searches the default
// locations and falls back to the built-in defaults when no file is
// found.
func Load(path string) (*Config, error) {
	if path == "" {
		candidates := []string{
			"/etc/devd/config.yaml",
			filepath.Join(os.Getenv("HOME"), ".config/devd/config.yaml"),
		}
		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}

	cfg := defaultConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read config file: %s", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %q: %s", path, err)
		}
	}

	cfg.applyDefaults()

	if err := cfg.Valid(); err != nil {
		return nil, fmt.Errorf("invalid config: %s", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Root == "" {
		c.Root = defaultConfig.Root
	}
	if c.DBPath == "" {
		c.DBPath = defaultConfig.DBPath
	}
	if c.DefaultMode == 0 {
		c.DefaultMode = defaultConfig.DefaultMode
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultConfig.LogLevel
	}
}

// Valid validates a config, returning an error if it is not valid.
func (c Config) Valid() error {
	if !filepath.IsAbs(c.Root) {
		return errors.New("udev_root must be an absolute path")
	}
	if !filepath.IsAbs(c.DBPath) {
		return errors.New("udev_db must be an absolute path")
	}
	if c.DefaultMode&^uint32(07777) != 0 {
		return fmt.Errorf("default_mode %#o contains more than permission bits", c.DefaultMode)
	}

	return nil
}
