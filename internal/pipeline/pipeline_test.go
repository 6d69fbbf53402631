package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"claudepack/internal/build"
	"claudepack/internal/history"
	"claudepack/internal/logging"
	"claudepack/internal/pipeline"
	"claudepack/internal/services"
	"claudepack/internal/testsupport"
)

// recordedStage notes its invocation and optionally fails or produces the
// artifact the way the packager does.
type recordedStage struct {
	name     string
	calls    *[]string
	fail     error
	artifact bool
}

func (s *recordedStage) Name() string { return s.name }

func (s *recordedStage) Execute(ctx context.Context, bctx *build.Context) error {
	*s.calls = append(*s.calls, s.name)
	if s.fail != nil {
		return s.fail
	}
	if s.artifact {
		path := filepath.Join(bctx.WorkDir, bctx.ArtifactName())
		if err := os.WriteFile(path, []byte("RPM"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func newBuildContext(t *testing.T, clean string) *build.Context {
	cfg := testsupport.NewConfig(t)
	bctx, err := build.New(cfg, build.Options{
		Version:        "1.2.3",
		Arch:           "x86_64",
		Clean:          clean,
		LocalInstaller: writeInstaller(t),
	})
	if err != nil {
		t.Fatal(err)
	}
	return bctx
}

func writeInstaller(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "Claude-Setup-x64.exe")
	if err := os.WriteFile(path, []byte("installer"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunExecutesStagesInOrder(t *testing.T) {
	bctx := newBuildContext(t, "no")
	var calls []string
	stages := []pipeline.Stage{
		&recordedStage{name: "resolve", calls: &calls},
		&recordedStage{name: "extract", calls: &calls},
		&recordedStage{name: "package", calls: &calls, artifact: true},
	}
	runner := pipeline.NewRunner(logging.NewNop(), stages)

	artifact, err := runner.Run(context.Background(), bctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"resolve", "extract", "package"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}
	if _, err := os.Stat(artifact); err != nil {
		t.Fatalf("artifact not collected: %v", err)
	}
	if filepath.Dir(artifact) != bctx.OutputDir {
		t.Fatalf("artifact %s not under output dir %s", artifact, bctx.OutputDir)
	}
}

func TestRunFailFast(t *testing.T) {
	bctx := newBuildContext(t, "no")
	var calls []string
	boom := services.Wrap(services.ErrExtractionFailed, "extract", "unpack installer", "", errors.New("exit status 2"))
	stages := []pipeline.Stage{
		&recordedStage{name: "resolve", calls: &calls},
		&recordedStage{name: "extract", calls: &calls, fail: boom},
		&recordedStage{name: "package", calls: &calls, artifact: true},
	}
	runner := pipeline.NewRunner(logging.NewNop(), stages)

	_, err := runner.Run(context.Background(), bctx)
	if !errors.Is(err, services.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("later stages ran after a failure: %v", calls)
	}
}

func TestRunMissingArtifact(t *testing.T) {
	bctx := newBuildContext(t, "no")
	var calls []string
	runner := pipeline.NewRunner(logging.NewNop(), []pipeline.Stage{
		&recordedStage{name: "package", calls: &calls},
	})

	_, err := runner.Run(context.Background(), bctx)
	if !errors.Is(err, services.ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestRunCleanPolicy(t *testing.T) {
	t.Run("yes removes the work dir", func(t *testing.T) {
		bctx := newBuildContext(t, "yes")
		var calls []string
		runner := pipeline.NewRunner(logging.NewNop(), []pipeline.Stage{
			&recordedStage{name: "package", calls: &calls, artifact: true},
		})

		artifact, err := runner.Run(context.Background(), bctx)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(bctx.WorkDir); !os.IsNotExist(err) {
			t.Fatalf("work dir still present: %v", err)
		}
		if _, err := os.Stat(artifact); err != nil {
			t.Fatalf("artifact must survive cleaning: %v", err)
		}
	})

	t.Run("no keeps intermediates", func(t *testing.T) {
		bctx := newBuildContext(t, "no")
		var calls []string
		runner := pipeline.NewRunner(logging.NewNop(), []pipeline.Stage{
			&recordedStage{name: "package", calls: &calls, artifact: true},
		})

		if _, err := runner.Run(context.Background(), bctx); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(bctx.WorkDir); err != nil {
			t.Fatalf("work dir should be kept: %v", err)
		}
	})
}

func TestRunRecordsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	bctx, err := build.New(cfg, build.Options{Version: "1.2.3", Arch: "x86_64", Clean: "no", LocalInstaller: writeInstaller(t)})
	if err != nil {
		t.Fatal(err)
	}

	var calls []string
	runner := pipeline.NewRunner(logging.NewNop(), []pipeline.Stage{
		&recordedStage{name: "package", calls: &calls, artifact: true},
	}, pipeline.WithHistory(store))

	if _, err := runner.Run(context.Background(), bctx); err != nil {
		t.Fatal(err)
	}

	records, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(records))
	}
	rec := records[0]
	if rec.RunID != bctx.RunID || rec.Status != "succeeded" || rec.Artifact == "" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestRunRecordsFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	bctx, err := build.New(cfg, build.Options{Version: "1.2.3", Arch: "x86_64", LocalInstaller: writeInstaller(t)})
	if err != nil {
		t.Fatal(err)
	}

	var calls []string
	runner := pipeline.NewRunner(logging.NewNop(), []pipeline.Stage{
		&recordedStage{name: "resolve", calls: &calls, fail: services.Wrap(services.ErrDownloadFailed, "resolve", "fetch installer", "", errors.New("status 404"))},
	}, pipeline.WithHistory(store))

	if _, err := runner.Run(context.Background(), bctx); err == nil {
		t.Fatal("expected failure")
	}

	records, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Status != "failed" || records[0].Error == "" {
		t.Fatalf("failure not recorded: %+v", records)
	}
}

func TestRunLocksWorkDir(t *testing.T) {
	bctx := newBuildContext(t, "no")
	if err := os.MkdirAll(bctx.WorkDir, 0o755); err != nil {
		t.Fatal(err)
	}

	// A stage that re-enters the runner would deadlock; instead simulate the
	// competing build by grabbing the lock up front.
	held := newLockHolder(t, bctx.WorkDir)
	defer held.release()

	var calls []string
	runner := pipeline.NewRunner(logging.NewNop(), []pipeline.Stage{
		&recordedStage{name: "package", calls: &calls, artifact: true},
	})
	_, err := runner.Run(context.Background(), bctx)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for a locked work dir, got %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("stages ran despite the lock: %v", calls)
	}
}

type lockHolder struct {
	lock *flock.Flock
}

func newLockHolder(t *testing.T, workDir string) *lockHolder {
	t.Helper()

	lock := flock.New(filepath.Join(workDir, ".lock"))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("could not take the work dir lock: locked=%v err=%v", locked, err)
	}
	return &lockHolder{lock: lock}
}

func (h *lockHolder) release() {
	_ = h.lock.Unlock()
}
