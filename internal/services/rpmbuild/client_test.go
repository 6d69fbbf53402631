package rpmbuild_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"claudepack/internal/services/rpmbuild"
)

type fakeExecutor struct {
	args []string
}

func (f *fakeExecutor) Run(ctx context.Context, dir, binary string, args []string, onLine func(string)) error {
	f.args = args
	return nil
}

func TestBuildPinsTopdirAndBuildroot(t *testing.T) {
	exec := &fakeExecutor{}
	client, err := rpmbuild.New("rpmbuild", rpmbuild.WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}

	err = client.Build(context.Background(), "/work/SPECS/claude-desktop.spec", "/work/rpm", "/work/staging/root", nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	joined := strings.Join(exec.args, " ")
	for _, want := range []string{"-bb", "_topdir /work/rpm", "--buildroot /work/staging/root", "claude-desktop.spec"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q missing %q", joined, want)
		}
	}
}

func TestLocateArtifactExactMatch(t *testing.T) {
	topDir := t.TempDir()
	archDir := filepath.Join(topDir, "RPMS", "x86_64")
	if err := os.MkdirAll(archDir, 0o755); err != nil {
		t.Fatal(err)
	}
	expected := filepath.Join(archDir, "claude-desktop-1.2.3-1.x86_64.rpm")
	if err := os.WriteFile(expected, []byte("rpm"), 0o644); err != nil {
		t.Fatal(err)
	}
	// A decoy that the exact match must win over.
	if err := os.WriteFile(filepath.Join(archDir, "other-0.1-1.x86_64.rpm"), []byte("rpm"), 0o644); err != nil {
		t.Fatal(err)
	}

	client, err := rpmbuild.New("rpmbuild")
	if err != nil {
		t.Fatal(err)
	}
	got, err := client.LocateArtifact(topDir, "x86_64", "claude-desktop-1.2.3-1.x86_64.rpm")
	if err != nil {
		t.Fatalf("LocateArtifact: %v", err)
	}
	if got != expected {
		t.Fatalf("got %q, want %q", got, expected)
	}
}

func TestLocateArtifactGlobFallback(t *testing.T) {
	topDir := t.TempDir()
	archDir := filepath.Join(topDir, "RPMS", "x86_64")
	if err := os.MkdirAll(archDir, 0o755); err != nil {
		t.Fatal(err)
	}
	produced := filepath.Join(archDir, "claude-desktop-1.2.3-1.fc41.x86_64.rpm")
	if err := os.WriteFile(produced, []byte("rpm"), 0o644); err != nil {
		t.Fatal(err)
	}

	client, err := rpmbuild.New("rpmbuild")
	if err != nil {
		t.Fatal(err)
	}
	got, err := client.LocateArtifact(topDir, "x86_64", "claude-desktop-1.2.3-1.x86_64.rpm")
	if err != nil {
		t.Fatalf("LocateArtifact: %v", err)
	}
	if got != produced {
		t.Fatalf("got %q, want %q", got, produced)
	}
}

func TestLocateArtifactAmbiguousOrMissing(t *testing.T) {
	topDir := t.TempDir()
	archDir := filepath.Join(topDir, "RPMS", "x86_64")
	if err := os.MkdirAll(archDir, 0o755); err != nil {
		t.Fatal(err)
	}

	client, err := rpmbuild.New("rpmbuild")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.LocateArtifact(topDir, "x86_64", "claude-desktop-1.0.0-1.x86_64.rpm"); err == nil {
		t.Fatal("expected error for empty RPMS dir")
	}

	for _, name := range []string{"a-1-1.x86_64.rpm", "b-1-1.x86_64.rpm"} {
		if err := os.WriteFile(filepath.Join(archDir, name), []byte("rpm"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := client.LocateArtifact(topDir, "x86_64", "claude-desktop-1.0.0-1.x86_64.rpm"); err == nil {
		t.Fatal("expected error for ambiguous glob")
	}
}
