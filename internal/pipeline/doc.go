// Package pipeline drives the build stages in order: resolve, extract,
// patch, package, cleanup. Execution is strictly sequential and fail-fast;
// the work directory is flock-guarded for the duration of a run and every
// run is recorded in the history store when one is attached.
package pipeline
