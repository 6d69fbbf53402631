// Package deps reports availability of the external tools the pipeline
// shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"claudepack/internal/config"
)

// Requirement defines an external dependency claudepack relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// ForFormat returns the requirements for the given build format ("rpm" or
// "appimage"). An empty format returns the union, for `claudepack deps`.
func ForFormat(cfg *config.Config, format string) []Requirement {
	common := []Requirement{
		{Name: "7-Zip", Command: cfg.Tools.SevenZip, Description: "extracts the Windows installer and its embedded nupkg"},
	}
	rpm := Requirement{Name: "rpmbuild", Command: cfg.Tools.RPMBuild, Description: "builds the RPM from the staging tree"}
	appimage := Requirement{Name: "appimagetool", Command: cfg.Tools.AppImageTool, Description: "assembles the AppImage from the AppDir"}

	switch format {
	case "rpm":
		return append(common, rpm)
	case "appimage":
		return append(common, appimage)
	default:
		return append(common, rpm, appimage)
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the subset of statuses that are unavailable and not
// optional.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
