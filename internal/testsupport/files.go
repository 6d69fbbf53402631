package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path (and its parent directories) with the given content.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// FakeAppTree lays out a minimal extracted application tree under dir: an
// unpacked asar source directory, the unpacked native module tree, and icon
// files for the provided pixel sizes. It returns the asar source directory.
func FakeAppTree(t testing.TB, dir string, iconSizes []int) string {
	t.Helper()

	src := filepath.Join(dir, "asar-src")
	WriteFile(t, filepath.Join(src, "package.json"), []byte(`{"name":"claude","main":".vite/build/index.js"}`))
	WriteFile(t, filepath.Join(src, ".vite", "build", "index.js"), []byte("// app entry\n"))
	WriteFile(t, filepath.Join(src, "node_modules", "claude-native", "index.js"), []byte("require('./claude-native-binding.node')\n"))

	for _, size := range iconSizes {
		name := iconName(size)
		WriteFile(t, filepath.Join(dir, "icons", name), []byte("PNG"))
	}
	return src
}

func iconName(size int) string {
	switch size {
	case 16:
		return "claude_13_16x16x32.png"
	case 24:
		return "claude_11_24x24x32.png"
	case 32:
		return "claude_10_32x32x32.png"
	case 48:
		return "claude_8_48x48x32.png"
	case 64:
		return "claude_7_64x64x32.png"
	default:
		return "claude_6_256x256x32.png"
	}
}
