// Package build defines the immutable per-run build context: package
// metadata, target format and architecture, and the work directory layout
// every stage reads from and writes into.
package build
