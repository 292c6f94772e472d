package release

import (
	"context"
	"fmt"

	"github.com/pacmancoder/cargo-monorepo/pkg/config"
	"github.com/pacmancoder/cargo-monorepo/pkg/reporter"
	"github.com/pacmancoder/cargo-monorepo/pkg/vcs"
)

type checkCommitPushedStep struct {
	repo vcs.Repo
}

func (st *checkCommitPushedStep) Name() string { return "check-commit-pushed" }

func (st *checkCommitPushedStep) StartMessage(s *State) (string, error) {
	commit, err := s.Commit()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Checking that commit %s is pushed to %s", vcs.ShortCommit(commit), st.repo), nil
}

func (st *checkCommitPushedStep) SuccessMessage(*State) (string, error) {
	return "Success! Current commit is pushed to the remote", nil
}

func (st *checkCommitPushedStep) Execute(ctx context.Context, s *State) error {
	host, err := s.Host()
	if err != nil {
		return err
	}
	commit, err := s.Commit()
	if err != nil {
		return err
	}
	if err := host.CheckCommit(ctx, commit); err != nil {
		return fmt.Errorf("current commit is missing in the GitHub remote: %w", err)
	}
	return nil
}

type createTagStep struct {
	cfg *config.GitHubRelease
	out *reporter.Console
}

func (st *createTagStep) Name() string { return "create-tag" }

func (st *createTagStep) StartMessage(s *State) (string, error) {
	v, err := s.Version()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Creating new tag for version %s", v), nil
}

func (st *createTagStep) SuccessMessage(s *State) (string, error) {
	if s.DryRun {
		return "Tag name has been checked", nil
	}
	return "Tag has been created", nil
}

func (st *createTagStep) Execute(ctx context.Context, s *State) error {
	tctx, err := s.TemplateContext()
	if err != nil {
		return err
	}
	tag, err := st.cfg.TagNameTemplate.Render(tctx)
	if err != nil {
		return err
	}
	host, err := s.Host()
	if err != nil {
		return err
	}
	commit, err := s.Commit()
	if err != nil {
		return err
	}
	s.SetTag(tag)
	st.out.Infof("Tag `%s` will be created for commit %s", tag, commit)

	if s.DryRun {
		exists, err := host.TagExists(ctx, tag)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("tag %s already exists in the GitHub repo", tag)
		}
		st.out.Infof("Skipping tag creation in dry run mode")
		return nil
	}

	if err := host.CreateTag(ctx, tag, commit); err != nil {
		return fmt.Errorf("create new tag in GitHub repo: %w", err)
	}
	return nil
}

type createReleaseStep struct {
	cfg *config.GitHubRelease
	out *reporter.Console
}

func (st *createReleaseStep) Name() string { return "create-release" }

func (st *createReleaseStep) StartMessage(s *State) (string, error) {
	tag, err := s.Tag()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Creating new GitHub release for tag `%s`", tag), nil
}

func (st *createReleaseStep) SuccessMessage(s *State) (string, error) {
	if s.DryRun {
		return "GitHub release has been rendered", nil
	}
	return "GitHub release has been created", nil
}

func (st *createReleaseStep) Execute(ctx context.Context, s *State) error {
	tctx, err := s.TemplateContext()
	if err != nil {
		return err
	}
	title, err := st.cfg.ReleasePageTitleTemplate.Render(tctx)
	if err != nil {
		return err
	}
	body, err := st.cfg.ReleasePageBodyTemplate.Render(tctx)
	if err != nil {
		return err
	}
	tag, err := s.Tag()
	if err != nil {
		return err
	}
	host, err := s.Host()
	if err != nil {
		return err
	}

	if st.cfg.PrintToStdout {
		st.out.Infof("GitHub release title:")
		st.out.Block(title)
		st.out.Infof("GitHub release body:")
		st.out.Block(body)
	}

	var artifacts []string
	if st.cfg.ReleasePageUploadArtifacts {
		if artifacts, err = s.Artifacts(); err != nil {
			return err
		}
	}

	if s.DryRun {
		st.out.Infof("Skipping GitHub release creation in dry run mode")
		return nil
	}

	id, err := host.CreateRelease(ctx, vcs.ReleaseRequest{Tag: tag, Title: title, Body: body})
	if err != nil {
		return fmt.Errorf("create GitHub release: %w", err)
	}
	s.SetReleaseID(id)

	for _, a := range artifacts {
		st.out.Infof("Uploading release artifact %s", a)
		if err := host.UploadAsset(ctx, id, a); err != nil {
			return err
		}
	}
	return nil
}
