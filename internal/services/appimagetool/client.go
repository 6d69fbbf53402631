package appimagetool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"claudepack/internal/services"
)

// Assembler defines the behaviour required by the AppImage packaging path.
type Assembler interface {
	Assemble(ctx context.Context, appDir, output, updateInfo string, onLine func(string)) error
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

// Client wraps appimagetool CLI interactions.
type Client struct {
	binary string
	exec   services.Executor
}

// New constructs an appimagetool client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("appimagetool binary required")
	}
	client := &Client{binary: binary, exec: services.CommandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Assemble turns the AppDir into a single AppImage at output. updateInfo, when
// non-empty, is embedded so clients can discover newer builds.
func (c *Client) Assemble(ctx context.Context, appDir, output, updateInfo string, onLine func(string)) error {
	if strings.TrimSpace(appDir) == "" {
		return errors.New("AppDir path required")
	}
	if strings.TrimSpace(output) == "" {
		return errors.New("output path required")
	}

	args := []string{"--no-appstream"}
	if strings.TrimSpace(updateInfo) != "" {
		args = append(args, "--updateinformation", updateInfo)
	}
	args = append(args, appDir, output)

	if err := c.exec.Run(ctx, "", c.binary, args, onLine); err != nil {
		return fmt.Errorf("appimagetool: %w", err)
	}
	return nil
}
