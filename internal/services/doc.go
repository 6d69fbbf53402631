// Package services defines shared utilities consumed by the pipeline stage
// handlers and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp stage names and build run identifiers for
//     logging.
//   - Structured error markers plus the Wrap helper that keep failure
//     reporting consistent across stages.
//   - The Executor abstraction that makes 7z, rpmbuild, and appimagetool
//     invocations testable without the real binaries.
//
// Use these helpers when wiring new stage logic so operational behaviour stays
// uniform across the pipeline.
package services
