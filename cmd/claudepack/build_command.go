package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"claudepack/internal/build"
	"claudepack/internal/extractor"
	"claudepack/internal/history"
	"claudepack/internal/logging"
	"claudepack/internal/packager"
	"claudepack/internal/patching"
	"claudepack/internal/pipeline"
	"claudepack/internal/preflight"
	"claudepack/internal/resolver"
	"claudepack/internal/services/sevenzip"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var (
		formatFlag  string
		cleanFlag   string
		exeFlag     string
		versionFlag string
		archFlag    string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run the packaging pipeline",
		Long: `Run the full pipeline: resolve the installer, extract the application
bundle, patch it for Linux, and package it as an RPM or AppImage.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			bctx, err := build.New(cfg, build.Options{
				Format:         formatFlag,
				Clean:          cleanFlag,
				Arch:           archFlag,
				Version:        versionFlag,
				LocalInstaller: exeFlag,
			})
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if failed := preflight.Failed(preflight.RunAll(runCtx, cfg, string(bctx.Format))); len(failed) > 0 {
				details := make([]string, 0, len(failed))
				for _, result := range failed {
					details = append(details, fmt.Sprintf("%s: %s", result.Name, result.Detail))
				}
				return fmt.Errorf("preflight failed:\n  %s", strings.Join(details, "\n  "))
			}

			zip, err := sevenzip.New(cfg.Tools.SevenZip)
			if err != nil {
				return err
			}
			pkg, err := packager.New(logger, cfg)
			if err != nil {
				return err
			}

			stages := []pipeline.Stage{
				resolver.New(logger),
				extractor.New(logger, zip),
				patching.New(logger),
				pkg,
			}

			var opts []pipeline.Option
			if cfg.History.Enabled {
				store, err := history.Open(cfg)
				if err != nil {
					return fmt.Errorf("open history store: %w", err)
				}
				defer store.Close()
				opts = append(opts, pipeline.WithHistory(store))
			}

			artifact, err := pipeline.NewRunner(logger, stages, opts...).Run(runCtx, bctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), artifact)
			return nil
		},
	}

	cmd.Flags().StringVar(&formatFlag, "build", "rpm", "Output format: rpm or appimage")
	cmd.Flags().StringVar(&cleanFlag, "clean", "yes", "Remove intermediate build output: yes or no")
	cmd.Flags().StringVar(&exeFlag, "exe", "", "Use a local installer instead of downloading")
	cmd.Flags().StringVar(&versionFlag, "version", "", "Package version to stamp (defaults to the configured version)")
	cmd.Flags().StringVar(&archFlag, "arch", "", "Target architecture: x86_64 or aarch64 (defaults to the host)")
	return cmd
}
