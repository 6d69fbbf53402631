package preflight

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"claudepack/internal/config"
	"claudepack/internal/deps"
)

// minFreeBytes is the disk headroom below which extraction is likely to run
// out of space mid-build. The installer expands to several gigabytes.
const minFreeBytes = 5 << 30

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTools verifies the external binaries the selected build format shells
// out to.
func CheckTools(cfg *config.Config, format string) []Result {
	statuses := deps.CheckBinaries(deps.ForFormat(cfg, format))
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		result := Result{Name: status.Name, Passed: status.Available}
		if status.Available {
			result.Detail = fmt.Sprintf("%s (found)", status.Command)
		} else {
			result.Detail = status.Detail
			result.Warning = status.Optional
		}
		results = append(results, result)
	}
	return results
}

// CheckDiskSpace reports free space on the work directory's filesystem. Low
// space is a warning rather than a failure: the build may still fit.
func CheckDiskSpace(path string) Result {
	const name = "Disk space"

	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Passed: true, Warning: true, Detail: fmt.Sprintf("statfs %s: %v", path, err)}
	}

	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s free under %s", humanize.IBytes(free), path)
	if free < minFreeBytes {
		return Result{Name: name, Passed: true, Warning: true,
			Detail: detail + fmt.Sprintf(" (below the %s extraction headroom)", humanize.IBytes(uint64(minFreeBytes)))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}
