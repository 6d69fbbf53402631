package testsupport

import (
	"path/filepath"
	"testing"

	"claudepack/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.History.Path = filepath.Join(base, "history.db")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithPackageVersion overrides the default package version on the test config.
func WithPackageVersion(version string) ConfigOption {
	return func(c *config.Config) {
		c.Package.Version = version
	}
}

// WithTool overrides one of the external tool commands on the test config.
func WithTool(name, command string) ConfigOption {
	return func(c *config.Config) {
		switch name {
		case "sevenzip":
			c.Tools.SevenZip = command
		case "rpmbuild":
			c.Tools.RPMBuild = command
		case "appimagetool":
			c.Tools.AppImageTool = command
		}
	}
}
