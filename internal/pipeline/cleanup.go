package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"claudepack/internal/build"
	"claudepack/internal/fileutil"
	"claudepack/internal/logging"
	"claudepack/internal/services"
)

// finish moves the artifact out of the work directory, applies the clean
// policy, and reports the result. The artifact is the only build output that
// outlives the run.
func (r *Runner) finish(ctx context.Context, bctx *build.Context) (string, error) {
	logger := logging.WithContext(services.WithStage(ctx, "cleanup"), r.logger)

	produced := filepath.Join(bctx.WorkDir, bctx.ArtifactName())
	info, err := os.Stat(produced)
	if err != nil {
		return "", services.Wrap(services.ErrArtifactNotFound, "cleanup", "collect artifact", produced, err)
	}

	if err := os.MkdirAll(bctx.OutputDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrArtifactNotFound, "cleanup", "create output dir", bctx.OutputDir, err)
	}
	final := filepath.Join(bctx.OutputDir, bctx.ArtifactName())
	if err := moveFile(produced, final); err != nil {
		return "", services.Wrap(services.ErrArtifactNotFound, "cleanup", "move artifact", final, err)
	}

	if bctx.Clean == build.CleanYes {
		if err := os.RemoveAll(bctx.WorkDir); err != nil {
			logger.Warn("could not remove work dir", logging.String("dir", bctx.WorkDir), logging.Error(err))
		} else {
			logger.Info("work dir removed", logging.String("dir", bctx.WorkDir))
		}
	} else {
		logger.Info("intermediates kept for inspection", logging.String("dir", bctx.WorkDir))
	}

	abs, err := filepath.Abs(final)
	if err != nil {
		abs = final
	}
	logger.Info("artifact ready",
		logging.String("path", abs),
		logging.String("size", humanize.IBytes(uint64(info.Size()))),
	)
	return abs, nil
}

// moveFile renames when possible and falls back to copy+remove across
// filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := fileutil.CopyFileVerified(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}
