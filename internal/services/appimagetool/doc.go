// Package appimagetool wraps the appimagetool CLI that turns an assembled
// AppDir into a single-file AppImage.
package appimagetool
