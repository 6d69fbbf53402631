package sevenzip

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"claudepack/internal/services"
)

// Extractor defines the behaviour required by the extraction stage.
type Extractor interface {
	Extract(ctx context.Context, archive, destDir string, onLine func(string)) error
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

// Client wraps 7-Zip CLI interactions.
type Client struct {
	binary string
	exec   services.Executor
}

// New constructs a 7-Zip client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("7z binary required")
	}
	client := &Client{binary: binary, exec: services.CommandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Extract unpacks archive into destDir, creating it first. 7z treats NSIS
// installers and nupkg files alike, which is all the pipeline needs.
func (c *Client) Extract(ctx context.Context, archive, destDir string, onLine func(string)) error {
	if strings.TrimSpace(archive) == "" {
		return errors.New("archive path required")
	}
	if strings.TrimSpace(destDir) == "" {
		return errors.New("destination directory required")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	args := []string{"x", "-y", "-o" + destDir, archive}
	if err := c.exec.Run(ctx, "", c.binary, args, onLine); err != nil {
		return fmt.Errorf("7z extract %s: %w", archive, err)
	}
	return nil
}
