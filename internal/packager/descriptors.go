package packager

import (
	"log/slog"
	"os"
	"path/filepath"

	"claudepack/internal/build"
	"claudepack/internal/logging"
)

// writeDescriptors generates every file the packaging tool consumes. Each
// descriptor path's existence is a precondition for the tool invocation.
func (p *Packager) writeDescriptors(logger *slog.Logger, bctx *build.Context) (Descriptor, error) {
	root := bctx.InstallRoot()
	desc := Descriptor{
		InstallRoot:     root,
		LauncherPath:    filepath.Join(root, "usr", "bin", bctx.PackageName),
		DesktopPath:     filepath.Join(root, "usr", "share", "applications", bctx.PackageName+".desktop"),
		PostInstallPath: filepath.Join(bctx.StagingDir, "postinstall.sh"),
	}

	if err := writeLauncher(desc.LauncherPath, bctx); err != nil {
		return desc, wrapBuild("write launcher", desc.LauncherPath, err)
	}
	if err := writeDesktopEntry(desc.DesktopPath, bctx); err != nil {
		return desc, wrapBuild("write desktop entry", desc.DesktopPath, err)
	}
	if err := writePostInstall(desc.PostInstallPath, bctx); err != nil {
		return desc, wrapBuild("write post-install hook", desc.PostInstallPath, err)
	}

	switch bctx.Format {
	case build.FormatAppImage:
		desc.AppDirPath = filepath.Join(bctx.StagingDir, "AppDir")
	default:
		desc.SpecPath = filepath.Join(bctx.StagingDir, "rpmbuild", "SPECS", bctx.PackageName+".spec")
		if err := writeRPMSpec(desc.SpecPath, bctx, p.now()); err != nil {
			return desc, wrapBuild("write rpm spec", desc.SpecPath, err)
		}
	}

	if err := desc.verify(); err != nil {
		return desc, wrapBuild("verify descriptors", "", err)
	}
	logger.Info("descriptors generated",
		logging.String("launcher", desc.LauncherPath),
		logging.String("desktop", desc.DesktopPath),
	)
	return desc, nil
}

func (d Descriptor) verify() error {
	paths := []string{d.InstallRoot, d.LauncherPath, d.DesktopPath, d.PostInstallPath}
	if d.SpecPath != "" {
		paths = append(paths, d.SpecPath)
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return err
		}
	}
	return nil
}
