// Package patching rewrites the recovered app.asar for Linux: the Windows
// native-bindings module is swapped for an embedded stub and a set of
// anchor-based source rules adjusts title-bar and tray behavior.
package patching
