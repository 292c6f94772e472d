// Package release runs the ordered steps of a workspace release.
package release

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pacmancoder/cargo-monorepo/pkg/config"
	"github.com/pacmancoder/cargo-monorepo/pkg/env"
	"github.com/pacmancoder/cargo-monorepo/pkg/mirror"
	"github.com/pacmancoder/cargo-monorepo/pkg/publish"
	"github.com/pacmancoder/cargo-monorepo/pkg/registry"
	"github.com/pacmancoder/cargo-monorepo/pkg/reporter"
	"github.com/pacmancoder/cargo-monorepo/pkg/vcs"
	"github.com/pacmancoder/cargo-monorepo/pkg/workspace"
)

// Step is a single stage of the release. Messages are computed from the
// state right before and right after Execute.
type Step interface {
	Name() string
	StartMessage(s *State) (string, error)
	Execute(ctx context.Context, s *State) error
	SuccessMessage(s *State) (string, error)
}

// WorkspaceLoader reads the workspace metadata.
type WorkspaceLoader interface {
	Load(ctx context.Context) (*workspace.Workspace, error)
}

// Services are the collaborators steps talk to.
type Services struct {
	Env       env.Source
	Metadata  WorkspaceLoader
	Commits   vcs.CommitSource
	Lookup    registry.VersionLookup
	Publisher registry.Publisher
	// NewHost connects to the source host once the token is known.
	NewHost func(ctx context.Context, token string, repo vcs.Repo) vcs.ReleaseHost
	// NewMirror connects to the artifacts mirror once credentials are known.
	NewMirror func(cfg mirror.Config) (mirror.Store, error)
	Sleep     publish.SleepFunc
	Out       *reporter.Console
}

type Pipeline struct {
	steps []Step
	out   *reporter.Console
}

// Build assembles the steps enabled by cfg. The configuration must be valid.
func Build(cfg *config.Config, svc *Services) *Pipeline {
	p := &Pipeline{out: svc.Out}
	add := func(s Step) { p.steps = append(p.steps, s) }

	add(&initStep{cfg: cfg, svc: svc})
	if cfg.Artifacts != nil {
		add(&collectArtifactsStep{cfg: cfg.Artifacts, out: svc.Out})
	}
	if cfg.Changelog != nil {
		add(&captureChangelogStep{cfg: cfg.Changelog, out: svc.Out})
	}
	gh := cfg.Release.GitHub
	if gh != nil && gh.CheckCommitPushed {
		add(&checkCommitPushedStep{repo: cfg.GitHub.Repo})
	}
	add(&validateVersionStep{cfg: cfg, svc: svc})

	driver := &publish.Driver{
		Publisher: svc.Publisher,
		Out:       svc.Out,
		Sleep:     svc.Sleep,
		Registry:  cfg.Release.Registry,
	}
	add(&publishStep{driver: driver, validate: true})
	if !cfg.DryRun && !cfg.NoPublish {
		add(&publishStep{driver: driver, interval: cfg.Release.PublishInterval()})
	}

	if gh != nil && gh.CreateTag {
		add(&createTagStep{cfg: gh, out: svc.Out})
	}
	if gh != nil && gh.CreateReleasePage {
		add(&createReleaseStep{cfg: gh, out: svc.Out})
	}
	if cfg.Artifacts != nil && cfg.Artifacts.Mirror != nil {
		add(&mirrorArtifactsStep{cfg: cfg.Artifacts.Mirror, out: svc.Out})
	}
	return p
}

func (p *Pipeline) Steps() []Step {
	return p.steps
}

// Run executes the steps in order and stops at the first failure. Side
// effects of completed steps are left in place.
func (p *Pipeline) Run(ctx context.Context, s *State) error {
	if s.DryRun {
		p.out.Banner("🤖", "Running release in dry-run mode!")
	} else {
		p.out.Banner("📦", "Running release in production mode!")
	}
	slog.Debug("release started", "run_id", s.RunID, "steps", len(p.steps))

	for _, step := range p.steps {
		msg, err := step.StartMessage(s)
		if err != nil {
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
		p.out.Start(msg)

		if err := step.Execute(ctx, s); err != nil {
			return fmt.Errorf("%s: %w", step.Name(), err)
		}

		msg, err = step.SuccessMessage(s)
		if err != nil {
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
		p.out.Success(msg)
	}

	v, err := s.Version()
	if err != nil {
		return err
	}
	p.out.Banner("🚀", fmt.Sprintf("Workspace version %s has been released!", v))
	return nil
}
