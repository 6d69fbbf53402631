package packager

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"claudepack/internal/build"
	"claudepack/internal/fileutil"
	"claudepack/internal/logging"
)

// appRun resolves the AppImage mount point at runtime, then defers to the
// same launcher the RPM installs.
const appRun = `#!/bin/sh
HERE="$(dirname "$(readlink -f "$0")")"
export CLAUDE_APP_DIR="$HERE/usr/lib/%[1]s"
exec "$HERE/usr/bin/%[1]s" "$@"
`

// buildAppImage assembles the AppDir from the staged install root and runs
// appimagetool straight into the work directory.
func (p *Packager) buildAppImage(ctx context.Context, logger *slog.Logger, bctx *build.Context, desc Descriptor) error {
	// Stage reruns rebuild from scratch rather than resuming.
	if err := os.RemoveAll(desc.AppDirPath); err != nil {
		return wrapBuild("reset AppDir", desc.AppDirPath, err)
	}
	if err := fileutil.CopyTree(desc.InstallRoot, desc.AppDirPath); err != nil {
		return wrapBuild("copy install root into AppDir", desc.InstallRoot, err)
	}

	if err := writeAppRun(desc.AppDirPath, bctx); err != nil {
		return wrapBuild("write AppRun", desc.AppDirPath, err)
	}
	if err := fileutil.CopyFile(desc.DesktopPath, filepath.Join(desc.AppDirPath, bctx.PackageName+".desktop")); err != nil {
		return wrapBuild("copy desktop entry into AppDir", desc.DesktopPath, err)
	}
	if icon, ok := largestIcon(bctx); ok {
		if err := fileutil.CopyFile(icon, filepath.Join(desc.AppDirPath, bctx.PackageName+".png")); err != nil {
			return wrapBuild("copy icon into AppDir", icon, err)
		}
	} else {
		logger.Warn("no icon available for the AppDir root")
	}

	output := filepath.Join(bctx.WorkDir, bctx.ArtifactName())
	logger.Info("invoking appimagetool",
		logging.String("appdir", desc.AppDirPath),
		logging.String("output", output),
	)
	if err := p.appimage.Assemble(ctx, desc.AppDirPath, output, p.updateInfo, p.toolLogger(logger, "appimagetool")); err != nil {
		return wrapBuild("appimagetool", desc.AppDirPath, err)
	}

	if _, err := os.Stat(output); err != nil {
		// appimagetool exiting zero without output would otherwise pass
		// silently.
		return wrapArtifact(output, err)
	}
	return nil
}

func writeAppRun(appDir string, bctx *build.Context) error {
	script := []byte(fmt.Sprintf(appRun, bctx.PackageName))
	return renameio.WriteFile(filepath.Join(appDir, "AppRun"), script, 0o755)
}
