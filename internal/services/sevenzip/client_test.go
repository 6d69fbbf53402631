package sevenzip_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"claudepack/internal/services/sevenzip"
)

type fakeExecutor struct {
	binary string
	args   []string
	err    error
}

func (f *fakeExecutor) Run(ctx context.Context, dir, binary string, args []string, onLine func(string)) error {
	f.binary = binary
	f.args = args
	if onLine != nil {
		onLine("Extracting archive")
	}
	return f.err
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := sevenzip.New("  "); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestExtractBuildsArgs(t *testing.T) {
	exec := &fakeExecutor{}
	client, err := sevenzip.New("7z", sevenzip.WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}

	dest := t.TempDir() + "/out"
	if err := client.Extract(context.Background(), "/tmp/setup.exe", dest, nil); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if exec.binary != "7z" {
		t.Fatalf("binary = %q", exec.binary)
	}
	want := []string{"x", "-y", "-o" + dest, "/tmp/setup.exe"}
	if len(exec.args) != len(want) {
		t.Fatalf("args = %v", exec.args)
	}
	for i := range want {
		if exec.args[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, exec.args[i], want[i])
		}
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("destination not created: %v", err)
	}
}

func TestExtractPropagatesToolFailure(t *testing.T) {
	toolErr := errors.New("exit status 2")
	client, err := sevenzip.New("7z", sevenzip.WithExecutor(&fakeExecutor{err: toolErr}))
	if err != nil {
		t.Fatal(err)
	}
	err = client.Extract(context.Background(), "/tmp/setup.exe", t.TempDir(), nil)
	if !errors.Is(err, toolErr) {
		t.Fatalf("expected tool error, got %v", err)
	}
}
