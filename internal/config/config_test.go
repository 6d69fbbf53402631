package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"claudepack/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config")
	}
	if cfg.Package.Name != "claude-desktop" {
		t.Fatalf("unexpected package name %q", cfg.Package.Name)
	}
	if cfg.Tools.RPMBuild != "rpmbuild" {
		t.Fatalf("unexpected rpmbuild command %q", cfg.Tools.RPMBuild)
	}
	if !filepath.IsAbs(cfg.Paths.WorkDir) {
		t.Fatalf("work dir not absolute: %q", cfg.Paths.WorkDir)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[package]
name = "claude-desktop"
version = "v1.2.3"

[paths]
work_dir = "` + filepath.Join(dir, "work") + `"

[logging]
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Package.Version != "1.2.3" {
		t.Fatalf("version prefix not stripped: %q", cfg.Package.Version)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level not lowered: %q", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"empty package name", func(c *config.Config) { c.Package.Name = "" }, "package.name"},
		{"rpm-hostile name", func(c *config.Config) { c.Package.Name = "claude desktop" }, "package.name"},
		{"bad version", func(c *config.Config) { c.Package.Version = "one.two" }, "package.version"},
		{"bad url", func(c *config.Config) { c.Download.URLx8664 = "ftp://example.com/x.exe" }, "download.url_x86_64"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Logging.Format = "console"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestDownloadURLSelectsArch(t *testing.T) {
	cfg := config.Default()
	if got := cfg.DownloadURL("aarch64"); !strings.Contains(got, "arm64") {
		t.Fatalf("aarch64 url = %q", got)
	}
	if got := cfg.DownloadURL("x86_64"); !strings.Contains(got, "x64") {
		t.Fatalf("x86_64 url = %q", got)
	}
}

func TestSampleConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.toml")
	if err := os.WriteFile(path, []byte(config.Sample()), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
