package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePackage()
	c.normalizeTools()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePackage() {
	c.Package.Name = strings.TrimSpace(c.Package.Name)
	c.Package.Version = strings.TrimSpace(strings.TrimPrefix(c.Package.Version, "v"))
	c.Package.Release = strings.TrimSpace(c.Package.Release)
	if c.Package.Release == "" {
		c.Package.Release = defaultPackageRelease
	}
	c.Package.Maintainer = strings.TrimSpace(c.Package.Maintainer)
	if c.Package.Maintainer == "" {
		c.Package.Maintainer = defaultPackageMaintainer
	}
	if strings.TrimSpace(c.Package.Description) == "" {
		c.Package.Description = defaultPackageDescription
	}
	if strings.TrimSpace(c.Package.License) == "" {
		c.Package.License = defaultPackageLicense
	}
}

func (c *Config) normalizeTools() {
	if strings.TrimSpace(c.Tools.SevenZip) == "" {
		c.Tools.SevenZip = defaultSevenZip
	}
	if strings.TrimSpace(c.Tools.RPMBuild) == "" {
		c.Tools.RPMBuild = defaultRPMBuild
	}
	if strings.TrimSpace(c.Tools.AppImageTool) == "" {
		c.Tools.AppImageTool = defaultAppImageTool
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
