package resolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"claudepack/internal/build"
	"claudepack/internal/logging"
	"claudepack/internal/services"
)

const stageName = "resolve"

// Resolver produces exactly one verified installer file for the build: either
// the user-supplied local path or a single-attempt download of the
// architecture-specific installer.
type Resolver struct {
	logger *slog.Logger
	client *http.Client
	// progress suppresses the download bar when false (tests).
	progress bool
}

// Option configures the resolver.
type Option func(*Resolver)

// WithHTTPClient injects a custom HTTP client (primarily for tests).
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		if client != nil {
			r.client = client
		}
	}
}

// WithoutProgress disables the interactive download bar.
func WithoutProgress() Option {
	return func(r *Resolver) {
		r.progress = false
	}
}

// New constructs the resolver stage.
func New(logger *slog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		logger: logging.NewComponentLogger(logger, "resolver"),
		// No client timeout: the download is the pipeline's only network
		// operation and a large installer on a slow link is not an error.
		client:   &http.Client{},
		progress: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Name() string { return stageName }

// Execute resolves the installer artifact onto local disk.
func (r *Resolver) Execute(ctx context.Context, bctx *build.Context) error {
	logger := logging.WithContext(ctx, r.logger)

	if err := os.MkdirAll(bctx.WorkDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, stageName, "prepare work dir", bctx.WorkDir, err)
	}

	if bctx.LocalInstaller != "" {
		info, err := os.Stat(bctx.LocalInstaller)
		if err != nil {
			return services.Wrap(services.ErrInputNotFound, stageName, "local installer", bctx.LocalInstaller, err)
		}
		if info.IsDir() {
			return services.Wrap(services.ErrInputNotFound, stageName, "local installer", fmt.Sprintf("%s is a directory", bctx.LocalInstaller), nil)
		}
		logger.Info("using local installer", logging.String("path", bctx.LocalInstaller))
		return nil
	}

	return r.download(ctx, bctx, logger)
}

func (r *Resolver) download(ctx context.Context, bctx *build.Context, logger *slog.Logger) error {
	target := bctx.InstallerPath()
	logger.Info("downloading installer",
		logging.String("url", bctx.DownloadURL),
		logging.String("target", target),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, bctx.DownloadURL, nil)
	if err != nil {
		return services.Wrap(services.ErrDownloadFailed, stageName, "build request", bctx.DownloadURL, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrDownloadFailed, stageName, "fetch installer", bctx.DownloadURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return services.Wrap(services.ErrDownloadFailed, stageName, "fetch installer",
			fmt.Sprintf("%s returned status %d", bctx.DownloadURL, resp.StatusCode), nil)
	}

	tmp := target + ".partial"
	out, err := os.Create(tmp)
	if err != nil {
		return services.Wrap(services.ErrDownloadFailed, stageName, "create installer file", tmp, err)
	}

	var dst io.Writer = out
	if r.progress {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetDescription("Downloading "+filepath.Base(target)),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(os.Stderr, "\n")
			}),
			progressbar.OptionClearOnFinish(),
		)
		dst = io.MultiWriter(out, bar)
	}

	written, err := io.Copy(dst, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return services.Wrap(services.ErrDownloadFailed, stageName, "write installer", target, err)
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		_ = os.Remove(tmp)
		return services.Wrap(services.ErrDownloadFailed, stageName, "write installer",
			fmt.Sprintf("short read: got %d of %d bytes", written, resp.ContentLength), nil)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return services.Wrap(services.ErrDownloadFailed, stageName, "finalize installer", target, err)
	}

	logger.Info("installer downloaded", logging.Int64("bytes", written))
	return nil
}
