package build

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/mod/semver"

	"claudepack/internal/config"
)

// Format selects the output package type.
type Format string

const (
	FormatRPM      Format = "rpm"
	FormatAppImage Format = "appimage"
)

// Arch is the target CPU architecture in RPM naming.
type Arch string

const (
	ArchX8664   Arch = "x86_64"
	ArchAarch64 Arch = "aarch64"
)

// CleanPolicy controls whether intermediate build outputs are removed.
type CleanPolicy string

const (
	CleanYes CleanPolicy = "yes"
	CleanNo  CleanPolicy = "no"
)

// Options are the per-invocation knobs for a build.
type Options struct {
	Format         string
	Clean          string
	Arch           string
	Version        string
	LocalInstaller string
}

// Context carries everything a stage needs to know about the build in
// progress. It is constructed once and never mutated; stages communicate
// through the directory tree it describes.
type Context struct {
	RunID       string
	PackageName string
	Version     string
	Release     string
	Maintainer  string
	Description string
	License     string
	Homepage    string

	Format Format
	Arch   Arch
	Clean  CleanPolicy

	// LocalInstaller is a user-supplied installer path. Empty means download.
	LocalInstaller string
	DownloadURL    string

	WorkDir    string
	StagingDir string
	OutputDir  string
}

// New validates the options against the configuration and derives the
// directory layout for this run.
func New(cfg *config.Config, opts Options) (*Context, error) {
	format, err := parseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	clean, err := parseClean(opts.Clean)
	if err != nil {
		return nil, err
	}
	arch, err := parseArch(opts.Arch)
	if err != nil {
		return nil, err
	}

	version := strings.TrimSpace(strings.TrimPrefix(opts.Version, "v"))
	if version == "" {
		version = cfg.Package.Version
	}
	if !semver.IsValid("v" + version) {
		return nil, fmt.Errorf("version %q is not a valid semantic version", version)
	}

	local := strings.TrimSpace(opts.LocalInstaller)
	if local != "" {
		if local, err = filepath.Abs(local); err != nil {
			return nil, fmt.Errorf("resolve installer path: %w", err)
		}
	}

	url := cfg.DownloadURL(string(arch))
	if local == "" && url == "" {
		return nil, fmt.Errorf("no download URL configured for %s and no local installer supplied", arch)
	}

	workDir := filepath.Join(cfg.Paths.WorkDir, fmt.Sprintf("%s-%s-%s", cfg.Package.Name, version, arch))

	return &Context{
		RunID:          uuid.NewString(),
		PackageName:    cfg.Package.Name,
		Version:        version,
		Release:        cfg.Package.Release,
		Maintainer:     cfg.Package.Maintainer,
		Description:    cfg.Package.Description,
		License:        cfg.Package.License,
		Homepage:       cfg.Package.Homepage,
		Format:         format,
		Arch:           arch,
		Clean:          clean,
		LocalInstaller: local,
		DownloadURL:    url,
		WorkDir:        workDir,
		StagingDir:     filepath.Join(workDir, "staging"),
		OutputDir:      cfg.Paths.OutputDir,
	}, nil
}

// InstallerPath is where the resolver leaves the installer artifact.
func (c *Context) InstallerPath() string {
	if c.LocalInstaller != "" {
		return c.LocalInstaller
	}
	return filepath.Join(c.WorkDir, fmt.Sprintf("Claude-Setup-%s.exe", c.Arch))
}

// ExtractDir is where the installer contents are unpacked.
func (c *Context) ExtractDir() string { return filepath.Join(c.WorkDir, "extract") }

// AppDir holds the recovered application resources: app.asar, the unpacked
// native-module tree, and the harvested icons.
func (c *Context) AppDir() string { return filepath.Join(c.WorkDir, "app") }

// AsarPath is the application resource archive recovered by the extractor and
// rewritten by the patcher.
func (c *Context) AsarPath() string { return filepath.Join(c.AppDir(), "app.asar") }

// UnpackedDir is the native-module directory Electron loads outside the asar.
func (c *Context) UnpackedDir() string { return filepath.Join(c.AppDir(), "app.asar.unpacked") }

// PatchDir is the scratch directory the patcher unpacks app.asar into.
func (c *Context) PatchDir() string { return filepath.Join(c.WorkDir, "patch") }

// IconsDir holds the icons harvested from the installer, keyed by pixel size.
func (c *Context) IconsDir() string { return filepath.Join(c.AppDir(), "icons") }

// InstallRoot is the staging subtree that mirrors the installed filesystem.
func (c *Context) InstallRoot() string { return filepath.Join(c.StagingDir, "root") }

// LibDir is the package's private library directory inside the install root.
func (c *Context) LibDir() string {
	return filepath.Join(c.InstallRoot(), "usr", "lib", c.PackageName)
}

// ArtifactName is the expected file name of the final package.
func (c *Context) ArtifactName() string {
	switch c.Format {
	case FormatAppImage:
		return fmt.Sprintf("%s-%s-%s.AppImage", c.PackageName, c.Version, c.Arch)
	default:
		return fmt.Sprintf("%s-%s-%s.%s.rpm", c.PackageName, c.Version, c.Release, c.Arch)
	}
}

func parseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "rpm":
		return FormatRPM, nil
	case "appimage":
		return FormatAppImage, nil
	default:
		return "", fmt.Errorf("build format must be rpm or appimage, got %q", value)
	}
}

func parseClean(value string) (CleanPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "yes":
		return CleanYes, nil
	case "no":
		return CleanNo, nil
	default:
		return "", fmt.Errorf("clean policy must be yes or no, got %q", value)
	}
}

func parseArch(value string) (Arch, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "x86_64", "amd64":
		return ArchX8664, nil
	case "aarch64", "arm64":
		return ArchAarch64, nil
	case "":
		return hostArch(), nil
	default:
		return "", fmt.Errorf("architecture must be x86_64 or aarch64, got %q", value)
	}
}

func hostArch() Arch {
	if runtime.GOARCH == "arm64" {
		return ArchAarch64
	}
	return ArchX8664
}
