package appimagetool_test

import (
	"context"
	"strings"
	"testing"

	"claudepack/internal/services/appimagetool"
)

type fakeExecutor struct {
	args []string
}

func (f *fakeExecutor) Run(ctx context.Context, dir, binary string, args []string, onLine func(string)) error {
	f.args = args
	return nil
}

func TestAssembleArgsOrder(t *testing.T) {
	exec := &fakeExecutor{}
	client, err := appimagetool.New("appimagetool", appimagetool.WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}

	err = client.Assemble(context.Background(), "/work/AppDir", "/out/claude.AppImage", "zsync|http://example/app.zsync", nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	joined := strings.Join(exec.args, " ")
	if !strings.Contains(joined, "--updateinformation zsync|http://example/app.zsync") {
		t.Fatalf("update info missing from %q", joined)
	}
	// AppDir then output, in that order, as positional arguments.
	if exec.args[len(exec.args)-2] != "/work/AppDir" || exec.args[len(exec.args)-1] != "/out/claude.AppImage" {
		t.Fatalf("positional args wrong: %v", exec.args)
	}
}

func TestAssembleWithoutUpdateInfo(t *testing.T) {
	exec := &fakeExecutor{}
	client, err := appimagetool.New("appimagetool", appimagetool.WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Assemble(context.Background(), "/a", "/b", "  ", nil); err != nil {
		t.Fatal(err)
	}
	for _, arg := range exec.args {
		if arg == "--updateinformation" {
			t.Fatalf("unexpected update flag in %v", exec.args)
		}
	}
}
