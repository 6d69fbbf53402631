package rpmbuild

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"claudepack/internal/services"
)

// Builder defines the behaviour required by the RPM packaging path.
type Builder interface {
	Build(ctx context.Context, specPath, topDir, buildRoot string, onLine func(string)) error
	LocateArtifact(topDir, arch, expectedName string) (string, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps rpmbuild CLI interactions.
type Client struct {
	binary string
	exec   services.Executor
}

// New constructs an rpmbuild client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("rpmbuild binary required")
	}
	client := &Client{binary: binary, exec: services.CommandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Build runs rpmbuild -bb against the spec with _topdir and buildroot pinned
// inside the work directory, so nothing leaks into the user's ~/rpmbuild.
func (c *Client) Build(ctx context.Context, specPath, topDir, buildRoot string, onLine func(string)) error {
	if strings.TrimSpace(specPath) == "" {
		return errors.New("spec path required")
	}
	args := []string{
		"-bb",
		"--define", "_topdir " + topDir,
		"--buildroot", buildRoot,
		specPath,
	}
	if err := c.exec.Run(ctx, "", c.binary, args, onLine); err != nil {
		return fmt.Errorf("rpmbuild: %w", err)
	}
	return nil
}

// LocateArtifact returns the path of the RPM rpmbuild produced. The exact
// expected name is tried first; a glob over the arch directory is only a
// fallback against tool-side naming drift, and multiple matches are an error
// rather than a guess.
func (c *Client) LocateArtifact(topDir, arch, expectedName string) (string, error) {
	archDir := filepath.Join(topDir, "RPMS", arch)

	exact := filepath.Join(archDir, expectedName)
	if info, err := os.Stat(exact); err == nil && !info.IsDir() {
		return exact, nil
	}

	matches, err := filepath.Glob(filepath.Join(archDir, "*.rpm"))
	if err != nil {
		return "", fmt.Errorf("glob rpm output: %w", err)
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no rpm found under %s", archDir)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%d rpms found under %s, expected exactly one (stale work dir?)", len(matches), archDir)
	}
}
