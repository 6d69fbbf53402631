package packager

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/dustin/go-humanize"

	"claudepack/internal/build"
	"claudepack/internal/fileutil"
	"claudepack/internal/logging"
)

var iconSize = regexp.MustCompile(`_(\d+)x\d+x32\.png$`)

// stageTree rebuilds the install root: the launcher's bin directory, the
// application payload under usr/lib/<pkg>, the desktop entry directory, and
// one hicolor icon per size recovered by the extractor.
func (p *Packager) stageTree(logger *slog.Logger, bctx *build.Context) error {
	// Stage reruns rebuild from scratch rather than resuming.
	if err := os.RemoveAll(bctx.StagingDir); err != nil {
		return wrapBuild("reset staging dir", bctx.StagingDir, err)
	}

	root := bctx.InstallRoot()
	for _, dir := range []string{
		filepath.Join(root, "usr", "bin"),
		bctx.LibDir(),
		filepath.Join(root, "usr", "share", "applications"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return wrapBuild("create staging tree", dir, err)
		}
	}

	if err := fileutil.CopyFileVerified(bctx.AsarPath(), filepath.Join(bctx.LibDir(), "app.asar")); err != nil {
		return wrapBuild("stage app.asar", bctx.AsarPath(), err)
	}
	if info, err := os.Stat(bctx.UnpackedDir()); err == nil && info.IsDir() {
		if err := fileutil.CopyTree(bctx.UnpackedDir(), filepath.Join(bctx.LibDir(), "app.asar.unpacked")); err != nil {
			return wrapBuild("stage app.asar.unpacked", bctx.UnpackedDir(), err)
		}
	}

	if err := p.stageIcons(logger, bctx); err != nil {
		return err
	}

	size, err := fileutil.DirSize(root)
	if err != nil {
		return wrapBuild("measure staging tree", root, err)
	}
	logger.Info("staging tree assembled",
		logging.String("root", root),
		logging.String("size", humanize.IBytes(uint64(size))),
	)
	return nil
}

// stageIcons places each harvested icon at the canonical hicolor path for its
// pixel size. Only sizes the extractor recovered appear in the package; none
// are fabricated.
func (p *Packager) stageIcons(logger *slog.Logger, bctx *build.Context) error {
	entries, err := os.ReadDir(bctx.IconsDir())
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("no icons directory, packaging without icons")
			return nil
		}
		return wrapBuild("read icons dir", bctx.IconsDir(), err)
	}

	staged := 0
	for _, entry := range entries {
		m := iconSize.FindStringSubmatch(entry.Name())
		if entry.IsDir() || m == nil {
			continue
		}
		size := m[1]
		dst := filepath.Join(bctx.InstallRoot(), "usr", "share", "icons", "hicolor",
			fmt.Sprintf("%sx%s", size, size), "apps", bctx.PackageName+".png")
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return wrapBuild("create icon dir", dst, err)
		}
		if err := fileutil.CopyFile(filepath.Join(bctx.IconsDir(), entry.Name()), dst); err != nil {
			return wrapBuild("stage icon", entry.Name(), err)
		}
		staged++
	}
	logger.Info("icons staged", logging.Int("count", staged))
	return nil
}

// largestIcon returns the staged icon with the biggest pixel size, if any.
func largestIcon(bctx *build.Context) (string, bool) {
	best, bestSize := "", 0
	entries, err := os.ReadDir(bctx.IconsDir())
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		m := iconSize.FindStringSubmatch(entry.Name())
		if entry.IsDir() || m == nil {
			continue
		}
		size, _ := strconv.Atoi(m[1])
		if size > bestSize {
			best, bestSize = filepath.Join(bctx.IconsDir(), entry.Name()), size
		}
	}
	return best, best != ""
}
