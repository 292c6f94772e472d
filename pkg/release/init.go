package release

import (
	"context"
	"errors"
	"fmt"

	"github.com/pacmancoder/cargo-monorepo/pkg/config"
	"github.com/pacmancoder/cargo-monorepo/pkg/mirror"
	"github.com/pacmancoder/cargo-monorepo/pkg/registry"
)

const githubTokenVar = "GITHUB_TOKEN"

type initStep struct {
	cfg *config.Config
	svc *Services
}

func (st *initStep) Name() string { return "init" }

func (st *initStep) StartMessage(s *State) (string, error) {
	return fmt.Sprintf("Initializing release process for %s", s.RootPackage), nil
}

func (st *initStep) SuccessMessage(*State) (string, error) {
	return "Initialization completed", nil
}

func (st *initStep) Execute(ctx context.Context, s *State) error {
	if err := st.acquireTokens(ctx, s); err != nil {
		return err
	}
	if err := st.readCommit(ctx, s); err != nil {
		return err
	}
	return st.readMetadata(ctx, s)
}

func (st *initStep) acquireTokens(ctx context.Context, s *State) error {
	tokenVar := registry.TokenVar(st.cfg.Release.Registry)
	token, err := st.svc.Env.Required(tokenVar, "Crate registry token")
	if err != nil {
		return err
	}
	s.SetRegistryToken(token)

	if st.cfg.GitHub != nil {
		token, err := st.svc.Env.Required(githubTokenVar, "GitHub token")
		if err != nil {
			return err
		}
		s.SetHost(st.svc.NewHost(ctx, token, st.cfg.GitHub.Repo))
	}

	if a := st.cfg.Artifacts; a != nil && a.Mirror != nil {
		mc, err := mirror.Config{
			Endpoint: a.Mirror.Endpoint,
			Region:   a.Mirror.Region,
			Bucket:   a.Mirror.Bucket,
			Prefix:   a.Mirror.Prefix,
			UseSSL:   a.Mirror.UseSSL,
		}.WithCredentials(st.svc.Env)
		if err != nil {
			return err
		}
		store, err := st.svc.NewMirror(mc)
		if err != nil {
			return fmt.Errorf("connect to artifacts mirror: %w", err)
		}
		s.SetMirror(store)
	}
	return nil
}

func (st *initStep) readCommit(ctx context.Context, s *State) error {
	if !st.svc.Commits.Available(ctx) {
		return errors.New("git is missing")
	}
	commit, err := st.svc.Commits.CurrentCommit(ctx)
	if err != nil {
		return fmt.Errorf("get current git commit: %w", err)
	}
	st.svc.Out.Infof("Current commit is %s", commit)
	s.SetCommit(commit)
	return nil
}

func (st *initStep) readMetadata(ctx context.Context, s *State) error {
	ws, err := st.svc.Metadata.Load(ctx)
	if err != nil {
		return err
	}
	root, ok := ws.Member(s.RootPackage)
	if !ok {
		return fmt.Errorf("find root crate (%s) in workspace: not a workspace member", s.RootPackage)
	}
	st.svc.Out.Infof("Pending version of %s to release is %s", root.Name, root.Version)

	s.SetWorkspace(ws)
	return s.SetVersion(root.Version)
}
