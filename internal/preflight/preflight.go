package preflight

import (
	"context"

	"claudepack/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name    string
	Passed  bool
	Warning bool
	Detail  string
}

// RunAll executes every check that applies to a build of the given format.
// Tool checks are scoped to the format so an RPM build does not demand
// appimagetool.
func RunAll(ctx context.Context, cfg *config.Config, format string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
	}
	results = append(results, CheckTools(cfg, format)...)
	results = append(results, CheckDiskSpace(cfg.Paths.WorkDir))
	return results
}

// Failed returns the results that must abort the build. Warnings never
// abort.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed && !result.Warning {
			failed = append(failed, result)
		}
	}
	return failed
}
