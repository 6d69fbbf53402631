package extractor

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"claudepack/internal/build"
	"claudepack/internal/fileutil"
	"claudepack/internal/logging"
	"claudepack/internal/services"
	"claudepack/internal/services/sevenzip"
)

const stageName = "extract"

// IconSizes are the pixel sizes the upstream installer ships icons for.
var IconSizes = []int{16, 24, 32, 48, 64, 256}

var nupkgVersion = regexp.MustCompile(`^AnthropicClaude-(\d+\.\d+\.\d+)(?:-\w+)?\.nupkg$`)

// Extractor unpacks the installer and recovers the application bundle plus
// icon assets into the work directory.
type Extractor struct {
	logger *slog.Logger
	zip    sevenzip.Extractor
}

// New constructs the extraction stage.
func New(logger *slog.Logger, zip sevenzip.Extractor) *Extractor {
	return &Extractor{
		logger: logging.NewComponentLogger(logger, "extractor"),
		zip:    zip,
	}
}

func (e *Extractor) Name() string { return stageName }

// Execute unpacks the installer, then the embedded nupkg, and copies the
// application resources and icons into the app directory. The resource
// archive is mandatory; individual icons are not.
func (e *Extractor) Execute(ctx context.Context, bctx *build.Context) error {
	logger := logging.WithContext(ctx, e.logger)

	installerDir := filepath.Join(bctx.ExtractDir(), "installer")
	// Stage reruns rebuild from scratch rather than resuming.
	if err := os.RemoveAll(bctx.ExtractDir()); err != nil {
		return services.Wrap(services.ErrExtractionFailed, stageName, "reset extract dir", bctx.ExtractDir(), err)
	}
	if err := os.RemoveAll(bctx.AppDir()); err != nil {
		return services.Wrap(services.ErrExtractionFailed, stageName, "reset app dir", bctx.AppDir(), err)
	}

	logger.Info("unpacking installer", logging.String("installer", bctx.InstallerPath()))
	if err := e.zip.Extract(ctx, bctx.InstallerPath(), installerDir, e.toolLogger(logger)); err != nil {
		return services.Wrap(services.ErrExtractionFailed, stageName, "unpack installer", bctx.InstallerPath(), err)
	}

	nupkg, err := findNupkg(installerDir)
	if err != nil {
		return services.Wrap(services.ErrExtractionFailed, stageName, "locate nupkg", installerDir, err)
	}
	e.checkVersionDrift(logger, bctx, nupkg)

	bundleDir := filepath.Join(bctx.ExtractDir(), "bundle")
	logger.Info("unpacking application bundle", logging.String("nupkg", filepath.Base(nupkg)))
	if err := e.zip.Extract(ctx, nupkg, bundleDir, e.toolLogger(logger)); err != nil {
		return services.Wrap(services.ErrExtractionFailed, stageName, "unpack nupkg", nupkg, err)
	}

	resources := filepath.Join(bundleDir, "lib", "net45", "resources")
	asar := filepath.Join(resources, "app.asar")
	if _, err := os.Stat(asar); err != nil {
		// Without app.asar no later stage can proceed.
		return services.Wrap(services.ErrExtractionFailed, stageName, "locate app.asar",
			fmt.Sprintf("%s missing after extraction (upstream layout changed?)", asar), err)
	}

	if err := os.MkdirAll(bctx.AppDir(), 0o755); err != nil {
		return services.Wrap(services.ErrExtractionFailed, stageName, "create app dir", bctx.AppDir(), err)
	}
	if err := fileutil.CopyFileVerified(asar, bctx.AsarPath()); err != nil {
		return services.Wrap(services.ErrExtractionFailed, stageName, "copy app.asar", asar, err)
	}

	unpacked := filepath.Join(resources, "app.asar.unpacked")
	if info, err := os.Stat(unpacked); err == nil && info.IsDir() {
		if err := fileutil.CopyTree(unpacked, bctx.UnpackedDir()); err != nil {
			return services.Wrap(services.ErrExtractionFailed, stageName, "copy app.asar.unpacked", unpacked, err)
		}
	}

	if err := e.harvestIcons(logger, bctx, installerDir, bundleDir); err != nil {
		return err
	}

	logger.Info("extraction complete", logging.String("app_dir", bctx.AppDir()))
	return nil
}

// harvestIcons copies every icon matching the upstream naming convention into
// the icons directory. A missing size is a warning, never a failure: the
// desktop stays usable with a sparse icon set.
func (e *Extractor) harvestIcons(logger *slog.Logger, bctx *build.Context, roots ...string) error {
	if err := os.MkdirAll(bctx.IconsDir(), 0o755); err != nil {
		return services.Wrap(services.ErrExtractionFailed, stageName, "create icons dir", bctx.IconsDir(), err)
	}

	found := 0
	for _, size := range IconSizes {
		path, ok := findIcon(roots, size)
		if !ok {
			logger.Warn("icon size missing from installer",
				logging.Int("size", size),
			)
			continue
		}
		dst := filepath.Join(bctx.IconsDir(), filepath.Base(path))
		if err := fileutil.CopyFile(path, dst); err != nil {
			return services.Wrap(services.ErrExtractionFailed, stageName, "copy icon", path, err)
		}
		found++
	}
	logger.Info("icons harvested", logging.Int("found", found), logging.Int("expected", len(IconSizes)))
	return nil
}

func (e *Extractor) checkVersionDrift(logger *slog.Logger, bctx *build.Context, nupkg string) {
	m := nupkgVersion.FindStringSubmatch(filepath.Base(nupkg))
	if m == nil {
		return
	}
	upstream := m[1]
	if semver.Compare("v"+upstream, "v"+bctx.Version) != 0 {
		logger.Warn("installer version differs from requested package version",
			logging.String("installer_version", upstream),
			logging.String("package_version", bctx.Version),
		)
	}
}

func (e *Extractor) toolLogger(logger *slog.Logger) func(string) {
	return func(line string) {
		if line = strings.TrimSpace(line); line != "" {
			logger.Debug("7z", logging.String("line", line))
		}
	}
}

func findNupkg(root string) (string, error) {
	var match string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if nupkgVersion.MatchString(d.Name()) {
			match = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if match == "" {
		return "", fmt.Errorf("no AnthropicClaude nupkg in extraction output")
	}
	return match, nil
}

// findIcon searches the extraction roots for an icon of the given pixel size
// using the claude_<n>_<size>x<size>x32.png convention.
func findIcon(roots []string, size int) (string, bool) {
	suffix := fmt.Sprintf("_%dx%dx32.png", size, size)
	for _, root := range roots {
		var match string
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, "claude_") && strings.HasSuffix(name, suffix) {
				match = path
				return fs.SkipAll
			}
			return nil
		})
		if match != "" {
			return match, true
		}
	}
	return "", false
}
