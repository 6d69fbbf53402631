package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePackage(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePackage() error {
	if c.Package.Name == "" {
		return errors.New("package.name must be set")
	}
	for _, r := range c.Package.Name {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '.' || r == '+' {
			continue
		}
		return fmt.Errorf("package.name %q contains characters rpm cannot accept", c.Package.Name)
	}
	if c.Package.Version != "" && !semver.IsValid("v"+c.Package.Version) {
		return fmt.Errorf("package.version %q is not a valid semantic version", c.Package.Version)
	}
	return nil
}

func (c *Config) validateDownload() error {
	for field, url := range map[string]string{
		"download.url_x86_64":  c.Download.URLx8664,
		"download.url_aarch64": c.Download.URLaarch64,
	} {
		if url == "" {
			continue
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return fmt.Errorf("%s must be an http(s) URL", field)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
