// Package packager turns the patched application tree into an installable
// artifact. It assembles a staging tree mirroring the installed filesystem,
// generates the launcher script, desktop entry and post-install hook, and
// drives rpmbuild or appimagetool depending on the selected build format.
package packager
