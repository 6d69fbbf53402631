package patching

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"layeh.com/asar"
)

// UnpackAsar expands archive into destDir. Entries flagged as living outside
// the archive are skipped; their contents stay in the sibling
// app.asar.unpacked tree and are patched there directly.
func UnpackAsar(archive, destDir string) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()

	root, err := asar.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", archive, err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	return root.Walk(func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(destDir, filepath.FromSlash(path))
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		entry := root.Find(strings.Split(path, "/")...)
		if entry == nil {
			return fmt.Errorf("archive entry %s vanished during walk", path)
		}
		data := entry.Bytes()
		if data == nil {
			// Stored outside the archive.
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		mode := os.FileMode(0o644)
		if info.Mode()&0o111 != 0 {
			mode = 0o755
		}
		return os.WriteFile(target, data, mode)
	})
}

// PackAsar archives the tree under srcDir into a fresh asar at archive,
// replacing any existing file atomically.
func PackAsar(srcDir, archive string) error {
	root := asar.New(filepath.Base(srcDir), nil, 0, 0, asar.FlagDir)
	parents := map[string]*asar.Entry{srcDir: root}

	var opened []*os.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	err := filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == srcDir {
			return nil
		}
		parent, ok := parents[filepath.Dir(path)]
		if !ok {
			return fmt.Errorf("no parent entry for %s", path)
		}

		if info.IsDir() {
			entry := asar.New(info.Name(), nil, 0, 0, asar.FlagDir)
			parent.Children = append(parent.Children, entry)
			parents[path] = entry
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		opened = append(opened, f)
		flags := asar.FlagNone
		if info.Mode()&0o111 != 0 {
			flags = asar.FlagExecutable
		}
		parent.Children = append(parent.Children, asar.New(info.Name(), f, info.Size(), 0, flags))
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", srcDir, err)
	}

	out, err := renameio.TempFile("", archive)
	if err != nil {
		return err
	}
	defer out.Cleanup()
	if _, err := root.EncodeTo(out); err != nil {
		return fmt.Errorf("encode %s: %w", archive, err)
	}
	return out.CloseAtomicallyReplace()
}
