// Package extractor unpacks the Windows installer via 7-Zip and recovers the
// Electron application bundle (app.asar, the unpacked native-module tree) and
// the icon assets at their six shipped pixel sizes.
package extractor
