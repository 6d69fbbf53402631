package patching

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"claudepack/internal/build"
	"claudepack/internal/logging"
	"claudepack/internal/services"
)

const stageName = "patch"

//go:embed claude_native.js
var nativeStub []byte

// nativeModulePath is the entry the upstream bundle loads its Windows
// bindings through, relative to the asar root.
var nativeModulePath = filepath.Join("node_modules", "claude-native", "index.js")

// Rule rewrites a literal anchor inside one bundled source file. Anchors are
// exact substrings of the upstream build; when upstream changes enough that a
// required anchor disappears, the build must fail loudly rather than ship an
// unpatched bundle.
type Rule struct {
	Name        string
	File        string
	Anchor      string
	Replacement string
	Required    bool
}

// DefaultRules are the source patches applied to every build: hide the
// Windows-style title bar on the main window, and debounce the tray icon
// teardown/recreate cycle that races the StatusNotifier bus on Linux.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:        "hide-native-title-bar",
			File:        ".vite/build/index.js",
			Anchor:      `titleBarStyle:"default"`,
			Replacement: `titleBarStyle:"hidden"`,
			Required:    true,
		},
		{
			Name:        "delay-tray-recreate",
			File:        ".vite/build/index.js",
			Anchor:      `this.tray.destroy(),this.tray=null,this.createTray()`,
			Replacement: `this.tray.destroy(),this.tray=null,setTimeout(()=>this.createTray(),100)`,
			Required:    true,
		},
	}
}

// Patcher rewrites the extracted app.asar: the Windows native-bindings
// module is swapped for a Linux stub and the anchor rules are applied to the
// bundled sources.
type Patcher struct {
	logger *slog.Logger
	rules  []Rule
}

// Option adjusts patcher construction.
type Option func(*Patcher)

// WithRules replaces the default rule set.
func WithRules(rules []Rule) Option {
	return func(p *Patcher) { p.rules = rules }
}

// New constructs the patch stage.
func New(logger *slog.Logger, opts ...Option) *Patcher {
	p := &Patcher{
		logger: logging.NewComponentLogger(logger, "patcher"),
		rules:  DefaultRules(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Patcher) Name() string { return stageName }

// Execute unpacks app.asar into the patch scratch directory, swaps the
// native-bindings module, applies the anchor rules, and repacks the archive
// in place.
func (p *Patcher) Execute(ctx context.Context, bctx *build.Context) error {
	logger := logging.WithContext(ctx, p.logger)
	scratch := bctx.PatchDir()

	// Stage reruns rebuild from scratch rather than resuming.
	if err := os.RemoveAll(scratch); err != nil {
		return services.Wrap(services.ErrExtractionFailed, stageName, "reset patch dir", scratch, err)
	}

	logger.Info("unpacking resource archive", logging.String("asar", bctx.AsarPath()))
	if err := UnpackAsar(bctx.AsarPath(), scratch); err != nil {
		return services.Wrap(services.ErrExtractionFailed, stageName, "unpack app.asar", bctx.AsarPath(), err)
	}

	if err := p.replaceNativeModule(logger, scratch, bctx.UnpackedDir()); err != nil {
		return err
	}
	if err := p.applyRules(logger, scratch); err != nil {
		return err
	}

	if err := PackAsar(scratch, bctx.AsarPath()); err != nil {
		return services.Wrap(services.ErrExtractionFailed, stageName, "repack app.asar", bctx.AsarPath(), err)
	}
	logger.Info("resource archive patched", logging.Int("rules", len(p.rules)))
	return nil
}

// replaceNativeModule writes the stub over the claude-native entry point in
// the unpacked asar sources and, when present, in the app.asar.unpacked tree
// Electron loads native modules from.
func (p *Patcher) replaceNativeModule(logger *slog.Logger, scratch, unpackedDir string) error {
	targets := []string{filepath.Join(scratch, nativeModulePath)}
	if info, err := os.Stat(unpackedDir); err == nil && info.IsDir() {
		targets = append(targets, filepath.Join(unpackedDir, nativeModulePath))
	}
	for _, target := range targets {
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return services.Wrap(services.ErrPatchTargetMissing, stageName, "replace native module", target, err)
		}
		if err := os.WriteFile(target, nativeStub, 0o644); err != nil {
			return services.Wrap(services.ErrPatchTargetMissing, stageName, "replace native module", target, err)
		}
		logger.Info("native bindings replaced with stub", logging.String("path", target))
	}
	return nil
}

func (p *Patcher) applyRules(logger *slog.Logger, scratch string) error {
	for _, rule := range p.rules {
		target := filepath.Join(scratch, filepath.FromSlash(rule.File))
		source, err := os.ReadFile(target)
		if err != nil {
			if !rule.Required && os.IsNotExist(err) {
				logger.Warn("patch file missing, skipping optional rule",
					logging.String("rule", rule.Name),
					logging.String("file", rule.File),
				)
				continue
			}
			return services.Wrap(services.ErrPatchTargetMissing, stageName, "read patch file",
				fmt.Sprintf("rule %s: %s", rule.Name, rule.File), err)
		}

		hits := strings.Count(string(source), rule.Anchor)
		if hits == 0 {
			if !rule.Required {
				logger.Warn("anchor not found, skipping optional rule",
					logging.String("rule", rule.Name),
					logging.String("file", rule.File),
				)
				continue
			}
			// Upstream moved; shipping without this patch would be broken.
			return services.Wrap(services.ErrPatchTargetMissing, stageName, "apply rule",
				fmt.Sprintf("rule %s: anchor not found in %s", rule.Name, rule.File), nil)
		}

		patched := strings.ReplaceAll(string(source), rule.Anchor, rule.Replacement)
		if err := os.WriteFile(target, []byte(patched), 0o644); err != nil {
			return services.Wrap(services.ErrPatchTargetMissing, stageName, "write patch file", target, err)
		}
		logger.Info("rule applied",
			logging.String("rule", rule.Name),
			logging.String("file", rule.File),
			logging.Int("occurrences", hits),
		)
	}
	return nil
}
