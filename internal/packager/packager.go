package packager

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"claudepack/internal/build"
	"claudepack/internal/config"
	"claudepack/internal/logging"
	"claudepack/internal/services"
	"claudepack/internal/services/appimagetool"
	"claudepack/internal/services/rpmbuild"
)

const stageName = "package"

// State tracks packaging progress. Transitions are linear; any failure is
// terminal for the build invocation.
type State string

const (
	StateIdle                 State = "idle"
	StateStaged               State = "staged"
	StateDescriptorsGenerated State = "descriptors_generated"
	StateInvoked              State = "invoked"
	StateSucceeded            State = "succeeded"
	StateFailed               State = "failed"
)

// Descriptor records every generated path the native packaging tool depends
// on. Each field must exist on disk before the tool is invoked.
type Descriptor struct {
	InstallRoot     string
	LauncherPath    string
	DesktopPath     string
	PostInstallPath string
	SpecPath        string
	AppDirPath      string
}

// Packager assembles the staging tree, generates the launcher, desktop entry
// and packaging descriptors, and drives the native packaging tool for the
// selected build format.
type Packager struct {
	logger     *slog.Logger
	rpm        rpmbuild.Builder
	appimage   appimagetool.Assembler
	updateInfo string
	now        func() time.Time

	state State
}

// Option adjusts packager construction.
type Option func(*Packager)

// WithRPMBuilder injects a custom RPM builder (primarily for tests).
func WithRPMBuilder(b rpmbuild.Builder) Option {
	return func(p *Packager) {
		if b != nil {
			p.rpm = b
		}
	}
}

// WithAppImageAssembler injects a custom AppImage assembler (primarily for
// tests).
func WithAppImageAssembler(a appimagetool.Assembler) Option {
	return func(p *Packager) {
		if a != nil {
			p.appimage = a
		}
	}
}

// WithClock pins the changelog timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Packager) {
		if now != nil {
			p.now = now
		}
	}
}

// New constructs the packaging stage with tool clients built from the
// configuration.
func New(logger *slog.Logger, cfg *config.Config, opts ...Option) (*Packager, error) {
	rpmClient, err := rpmbuild.New(cfg.Tools.RPMBuild)
	if err != nil {
		return nil, err
	}
	appimageClient, err := appimagetool.New(cfg.Tools.AppImageTool)
	if err != nil {
		return nil, err
	}

	p := &Packager{
		logger:     logging.NewComponentLogger(logger, "packager"),
		rpm:        rpmClient,
		appimage:   appimageClient,
		updateInfo: cfg.AppImage.UpdateInformation,
		now:        time.Now,
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Packager) Name() string { return stageName }

// State reports the most recent packaging state.
func (p *Packager) State() State { return p.state }

// Execute stages the install tree, writes the descriptors, and invokes the
// packaging tool. On success the artifact sits at its canonical name in the
// work directory for the cleanup stage to collect.
func (p *Packager) Execute(ctx context.Context, bctx *build.Context) error {
	logger := logging.WithContext(ctx, p.logger)
	p.state = StateIdle

	if err := p.stageTree(logger, bctx); err != nil {
		p.state = StateFailed
		return err
	}
	p.transition(logger, StateStaged)

	desc, err := p.writeDescriptors(logger, bctx)
	if err != nil {
		p.state = StateFailed
		return err
	}
	p.transition(logger, StateDescriptorsGenerated)

	p.transition(logger, StateInvoked)
	switch bctx.Format {
	case build.FormatAppImage:
		err = p.buildAppImage(ctx, logger, bctx, desc)
	default:
		err = p.buildRPM(ctx, logger, bctx, desc)
	}
	if err != nil {
		p.state = StateFailed
		return err
	}

	p.transition(logger, StateSucceeded)
	logger.Info("package built", logging.String("artifact", bctx.ArtifactName()))
	return nil
}

func (p *Packager) transition(logger *slog.Logger, next State) {
	logger.Debug("state transition",
		logging.String("from", string(p.state)),
		logging.String("to", string(next)),
	)
	p.state = next
}

func (p *Packager) toolLogger(logger *slog.Logger, tool string) func(string) {
	return func(line string) {
		if line = strings.TrimSpace(line); line != "" {
			logger.Debug(tool, logging.String("line", line))
		}
	}
}

func wrapBuild(operation, message string, err error) error {
	return services.Wrap(services.ErrPackageBuildFailed, stageName, operation, message, err)
}

func wrapArtifact(message string, err error) error {
	return services.Wrap(services.ErrArtifactNotFound, stageName, "locate artifact", message, err)
}
