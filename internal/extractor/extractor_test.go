package extractor_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"claudepack/internal/build"
	"claudepack/internal/extractor"
	"claudepack/internal/logging"
	"claudepack/internal/services"
	"claudepack/internal/testsupport"
)

// fakeZip simulates 7z by laying out files according to which archive is
// being extracted.
type fakeZip struct {
	t           *testing.T
	iconSizes   []int
	omitAsar    bool
	failInstall bool
}

func (f *fakeZip) Extract(ctx context.Context, archive, destDir string, onLine func(string)) error {
	if f.failInstall {
		return errors.New("exit status 2")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	switch filepath.Ext(archive) {
	case ".exe":
		testsupport.WriteFile(f.t, filepath.Join(destDir, "AnthropicClaude-1.2.3-full.nupkg"), []byte("nupkg"))
		for _, size := range f.iconSizes {
			name := fmt.Sprintf("claude_9_%dx%dx32.png", size, size)
			testsupport.WriteFile(f.t, filepath.Join(destDir, name), []byte("PNG"))
		}
	case ".nupkg":
		resources := filepath.Join(destDir, "lib", "net45", "resources")
		if !f.omitAsar {
			testsupport.WriteFile(f.t, filepath.Join(resources, "app.asar"), []byte("asar-bytes"))
		}
		testsupport.WriteFile(f.t, filepath.Join(resources, "app.asar.unpacked", "node_modules", "claude-native", "index.js"), []byte("native"))
	}
	return nil
}

func newBuildContext(t *testing.T) *build.Context {
	cfg := testsupport.NewConfig(t)
	bctx, err := build.New(cfg, build.Options{Version: "1.2.3", Arch: "x86_64", LocalInstaller: writeInstaller(t)})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(bctx.WorkDir, 0o755); err != nil {
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

func TestExecuteRecoversBundleAndIcons(t *testing.T) {
	bctx := newBuildContext(t)
	e := extractor.New(logging.NewNop(), &fakeZip{t: t, iconSizes: []int{16, 24, 32, 48, 64, 256}})

	if err := e.Execute(context.Background(), bctx); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if _, err := os.Stat(bctx.AsarPath()); err != nil {
		t.Fatalf("app.asar not copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(bctx.UnpackedDir(), "node_modules", "claude-native", "index.js")); err != nil {
		t.Fatalf("unpacked tree not copied: %v", err)
	}

	icons, err := filepath.Glob(filepath.Join(bctx.IconsDir(), "claude_*.png"))
	if err != nil {
		t.Fatal(err)
	}
	if len(icons) != 6 {
		t.Fatalf("expected 6 icons, got %d: %v", len(icons), icons)
	}
}

func TestExecuteMissingIconsDegradeGracefully(t *testing.T) {
	bctx := newBuildContext(t)
	e := extractor.New(logging.NewNop(), &fakeZip{t: t, iconSizes: []int{32, 256}})

	if err := e.Execute(context.Background(), bctx); err != nil {
		t.Fatalf("Execute should tolerate missing icons: %v", err)
	}

	icons, _ := filepath.Glob(filepath.Join(bctx.IconsDir(), "claude_*.png"))
	if len(icons) != 2 {
		t.Fatalf("expected 2 icons, got %d", len(icons))
	}
}

func TestExecuteMissingAsarIsFatal(t *testing.T) {
	bctx := newBuildContext(t)
	e := extractor.New(logging.NewNop(), &fakeZip{t: t, omitAsar: true})

	err := e.Execute(context.Background(), bctx)
	if !errors.Is(err, services.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExecuteToolFailure(t *testing.T) {
	bctx := newBuildContext(t)
	e := extractor.New(logging.NewNop(), &fakeZip{t: t, failInstall: true})

	err := e.Execute(context.Background(), bctx)
	if !errors.Is(err, services.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExecuteIsRerunnable(t *testing.T) {
	bctx := newBuildContext(t)
	e := extractor.New(logging.NewNop(), &fakeZip{t: t, iconSizes: []int{16, 256}})

	ctx := context.Background()
	if err := e.Execute(ctx, bctx); err != nil {
		t.Fatal(err)
	}
	if err := e.Execute(ctx, bctx); err != nil {
		t.Fatalf("second run: %v", err)
	}
	icons, _ := filepath.Glob(filepath.Join(bctx.IconsDir(), "claude_*.png"))
	if len(icons) != 2 {
		t.Fatalf("icon set should be rebuilt, got %d entries", len(icons))
	}
}
