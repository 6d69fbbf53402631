package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"claudepack/internal/build"
	"claudepack/internal/history"
	"claudepack/internal/logging"
	"claudepack/internal/services"
)

// Stage is one step of the build. Stages communicate exclusively through the
// directory tree the build context describes.
type Stage interface {
	Name() string
	Execute(ctx context.Context, bctx *build.Context) error
}

// Runner drives the stages sequentially and fail-fast, then collects the
// artifact and applies the clean policy.
type Runner struct {
	logger *slog.Logger
	stages []Stage
	store  *history.Store
	now    func() time.Time
}

// Option adjusts runner construction.
type Option func(*Runner)

// WithHistory records every run in the given store.
func WithHistory(store *history.Store) Option {
	return func(r *Runner) { r.store = store }
}

// WithClock pins the timestamp source (primarily for tests).
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner constructs a runner over the ordered stages.
func NewRunner(logger *slog.Logger, stages []Stage, opts ...Option) *Runner {
	r := &Runner{
		logger: logging.NewComponentLogger(logger, "pipeline"),
		stages: stages,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the pipeline for one build and returns the final artifact
// path. The work directory is locked for the whole run; a second build
// sharing it is operator error and fails immediately.
func (r *Runner) Run(ctx context.Context, bctx *build.Context) (string, error) {
	ctx = services.WithRunID(ctx, bctx.RunID)
	logger := logging.WithContext(ctx, r.logger)
	started := r.now()

	if err := os.MkdirAll(bctx.WorkDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "pipeline", "create work dir", bctx.WorkDir, err)
	}

	lock := flock.New(filepath.Join(bctx.WorkDir, ".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "pipeline", "lock work dir", bctx.WorkDir, err)
	}
	if !locked {
		return "", services.Wrap(services.ErrConfiguration, "pipeline", "lock work dir",
			fmt.Sprintf("%s is in use by another build", bctx.WorkDir), nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	logger.Info("build started",
		logging.String("package", bctx.PackageName),
		logging.String("version", bctx.Version),
		logging.String("arch", string(bctx.Arch)),
		logging.String("format", string(bctx.Format)),
	)

	artifact, runErr := r.runStages(ctx, bctx)
	r.record(ctx, logger, bctx, started, artifact, runErr)
	if runErr != nil {
		return "", runErr
	}
	return artifact, nil
}

func (r *Runner) runStages(ctx context.Context, bctx *build.Context) (string, error) {
	for _, stage := range r.stages {
		stageCtx := services.WithStage(ctx, stage.Name())
		logger := logging.WithContext(stageCtx, r.logger)

		logger.Info("stage started")
		begin := r.now()
		if err := stage.Execute(stageCtx, bctx); err != nil {
			logger.Error("stage failed",
				logging.Duration("elapsed", r.now().Sub(begin)),
				logging.Error(err),
			)
			return "", err
		}
		logger.Info("stage finished", logging.Duration("elapsed", r.now().Sub(begin)))
	}
	return r.finish(ctx, bctx)
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, bctx *build.Context, started time.Time, artifact string, runErr error) {
	status := "succeeded"
	errText := ""
	if runErr != nil {
		status = "failed"
		errText = runErr.Error()
	}
	if r.store == nil {
		return
	}
	rec := history.Record{
		RunID:      bctx.RunID,
		Version:    bctx.Version,
		Arch:       string(bctx.Arch),
		Format:     string(bctx.Format),
		Status:     status,
		Artifact:   artifact,
		Error:      errText,
		StartedAt:  started,
		FinishedAt: r.now(),
	}
	if err := r.store.Add(ctx, rec); err != nil {
		logger.Warn("could not record build history", logging.Error(err))
	}
}
