// Package preflight provides readiness checks run before the pipeline
// starts: required packaging tools for the selected format, work and output
// directory access, and disk headroom. A failed required check aborts the
// build before anything is downloaded.
package preflight
