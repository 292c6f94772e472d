package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/pacmancoder/cargo-monorepo/pkg/config"
	"github.com/pacmancoder/cargo-monorepo/pkg/env"
	"github.com/pacmancoder/cargo-monorepo/pkg/mirror"
	"github.com/pacmancoder/cargo-monorepo/pkg/process"
	"github.com/pacmancoder/cargo-monorepo/pkg/publish"
	"github.com/pacmancoder/cargo-monorepo/pkg/registry"
	"github.com/pacmancoder/cargo-monorepo/pkg/release"
	"github.com/pacmancoder/cargo-monorepo/pkg/reporter"
	"github.com/pacmancoder/cargo-monorepo/pkg/vcs"
	"github.com/pacmancoder/cargo-monorepo/pkg/workspace"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "cargo-monorepo",
		Short:             "Release automation for cargo workspaces",
		Long:              `Validates and publishes every crate of a cargo workspace in dependency order, then tags and documents the release on GitHub.`,
		Version:           fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupLogging,
	}
	rootCmd.PersistentFlags().String("manifest-path", "monorepo.yml", "Path to the monorepo config file")
	rootCmd.PersistentFlags().Bool("verbose", false, "Print debug logs to stderr")

	releaseCmd := &cobra.Command{
		Use:   "release",
		Short: "Automatically prepare new repo release",
		Args:  cobra.NoArgs,
		RunE:  runRelease,
	}
	releaseCmd.Flags().Bool("confirm", false, "Actually execute command instead of dry run")
	releaseCmd.Flags().Bool("nopublish", false, "Do not publish packages to the registry")
	releaseCmd.Flags().String("output", "table", "Summary format: table | json")
	rootCmd.AddCommand(releaseCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		reporter.NewConsole(os.Stderr).Failure(err.Error())
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func runRelease(cmd *cobra.Command, _ []string) error {
	manifest, _ := cmd.Flags().GetString("manifest-path")
	cfg, err := config.Load(manifest)
	if err != nil {
		return err
	}
	cfg = config.MergeFlags(cfg, cmd.Flags())
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", manifest, err)
	}

	if dir := filepath.Dir(manifest); dir != "." {
		if err := os.Chdir(dir); err != nil {
			return fmt.Errorf("change directory to %s: %w", dir, err)
		}
	}

	timeout, err := env.Duration("CARGO_MONOREPO_HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return err
	}

	out := reporter.NewConsole(os.Stdout)
	svc := newServices(out, timeout)
	state := release.NewState(cfg.Workspace.RootPackage, cfg.DryRun, cfg.NoPublish)
	slog.Debug("release configured", "run_id", state.RunID, "manifest", manifest, "dry_run", cfg.DryRun)

	runErr := release.Build(cfg, svc).Run(cmd.Context(), state)
	if err := reporter.New(cfg.Output).Report(out.Writer(), state.Summary()); err != nil {
		return errors.Join(runErr, fmt.Errorf("write summary: %w", err))
	}
	return runErr
}

func newServices(out *reporter.Console, timeout time.Duration) *release.Services {
	runner := &process.Exec{}
	httpClient := &http.Client{Timeout: timeout}
	return &release.Services{
		Env:       env.OS,
		Metadata:  &workspace.CargoMetadata{Runner: runner},
		Commits:   &vcs.Git{Runner: runner},
		Lookup:    registry.NewCratesIO(timeout),
		Publisher: &registry.Cargo{Runner: runner},
		NewHost: func(ctx context.Context, token string, repo vcs.Repo) vcs.ReleaseHost {
			return vcs.NewGitHubClient(context.WithValue(ctx, oauth2.HTTPClient, httpClient), token, repo)
		},
		NewMirror: func(cfg mirror.Config) (mirror.Store, error) {
			return mirror.NewMinioStore(cfg)
		},
		Sleep: publish.Sleep,
		Out:   out,
	}
}
