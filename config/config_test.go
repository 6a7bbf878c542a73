package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
udev_root: /var/dev
udev_db: /var/lib/devd/test.db
dry_run: true
default_mode: 0o660
default_group: disk
log_level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if cfg.Root != "/var/dev" {
		t.Errorf("expected root %q, got %q", "/var/dev", cfg.Root)
	}
	if cfg.DBPath != "/var/lib/devd/test.db" {
		t.Errorf("expected db path %q, got %q", "/var/lib/devd/test.db", cfg.DBPath)
	}
	if !cfg.DryRun {
		t.Error("expected dry_run to be set")
	}
	if cfg.DefaultMode != 0660 {
		t.Errorf("expected default mode 0660, got %#o", cfg.DefaultMode)
	}
	if cfg.DefaultGroup != "disk" {
		t.Errorf("expected default group %q, got %q", "disk", cfg.DefaultGroup)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "dry_run: true\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if cfg.Root != "/dev" {
		t.Errorf("expected default root /dev, got %q", cfg.Root)
	}
	if cfg.DefaultMode != 0600 {
		t.Errorf("expected default mode 0600, got %#o", cfg.DefaultMode)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %q", cfg.LogLevel)
	}
}

func TestValid(t *testing.T) {
	testsSet := []struct {
		Description string
		Config      Config
		Fails       bool
	}{
		{
			Description: "defaults are valid",
			Config:      defaultConfig,
		},
		{
			Description: "relative root",
			Config:      Config{Root: "dev", DBPath: "/var/lib/devd/devices.db", DefaultMode: 0600},
			Fails:       true,
		},
		{
			Description: "relative db path",
			Config:      Config{Root: "/dev", DBPath: "devices.db", DefaultMode: 0600},
			Fails:       true,
		},
		{
			Description: "mode with type bits",
			Config:      Config{Root: "/dev", DBPath: "/var/lib/devd/devices.db", DefaultMode: 0100600},
			Fails:       true,
		},
	}

	for _, test := range testsSet {
		err := test.Config.Valid()
		if test.Fails && err == nil {
			t.Errorf("%s: expected an error", test.Description)
		}
		if !test.Fails && err != nil {
			t.Errorf("%s: unexpected error: %s", test.Description, err)
		}
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "udev_root: relative/path\n")

	if _, err := Load(path); err == nil {
		t.Error("expected an error for a relative udev_root")
	}
}
