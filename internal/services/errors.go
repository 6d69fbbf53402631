package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInputNotFound      = errors.New("input not found")
	ErrDownloadFailed     = errors.New("download failed")
	ErrExtractionFailed   = errors.New("extraction failed")
	ErrPatchTargetMissing = errors.New("patch target missing")
	ErrPackageBuildFailed = errors.New("package build failed")
	ErrArtifactNotFound   = errors.New("artifact not found")
	ErrConfiguration      = errors.New("configuration error")
	ErrExternalTool       = errors.New("external tool error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "stage failure"
	}
	return strings.Join(parts, ": ")
}
