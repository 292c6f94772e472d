package release

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pacmancoder/cargo-monorepo/pkg/config"
	"github.com/pacmancoder/cargo-monorepo/pkg/mirror"
	"github.com/pacmancoder/cargo-monorepo/pkg/reporter"
)

type collectArtifactsStep struct {
	cfg *config.Artifacts
	out *reporter.Console
}

func (st *collectArtifactsStep) Name() string { return "collect-artifacts" }

func (st *collectArtifactsStep) StartMessage(*State) (string, error) {
	return fmt.Sprintf("Collecting artifacts from '%s'", st.cfg.Directory), nil
}

func (st *collectArtifactsStep) SuccessMessage(s *State) (string, error) {
	artifacts, err := s.Artifacts()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Collected %d artifact(s)", len(artifacts)), nil
}

func (st *collectArtifactsStep) Execute(_ context.Context, s *State) error {
	dir := st.cfg.Directory
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("artifacts folder %s does not exist", dir)
	}
	if err != nil {
		return fmt.Errorf("read artifacts folder: %w", err)
	}
	if st.cfg.CheckNotEmpty && len(entries) == 0 {
		return fmt.Errorf("artifacts folder %s is empty", dir)
	}

	var artifacts []string
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat artifact: %w", err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		st.out.Infof("Found artifact: %s", path)
		artifacts = append(artifacts, path)
	}
	s.SetArtifacts(artifacts)
	return nil
}

type mirrorArtifactsStep struct {
	cfg *config.Mirror
	out *reporter.Console
}

func (st *mirrorArtifactsStep) Name() string { return "mirror-artifacts" }

func (st *mirrorArtifactsStep) StartMessage(*State) (string, error) {
	return fmt.Sprintf("Mirroring artifacts to %s/%s", st.cfg.Endpoint, st.cfg.Bucket), nil
}

func (st *mirrorArtifactsStep) SuccessMessage(*State) (string, error) {
	return "Artifacts have been mirrored", nil
}

func (st *mirrorArtifactsStep) Execute(ctx context.Context, s *State) error {
	store, err := s.Mirror()
	if err != nil {
		return err
	}
	v, err := s.Version()
	if err != nil {
		return err
	}
	artifacts, err := s.Artifacts()
	if err != nil {
		return err
	}

	if err := store.CheckBucket(ctx); err != nil {
		return err
	}
	if s.DryRun {
		for _, a := range artifacts {
			st.out.Infof("%s would be uploaded to %s", a, store.Location(mirror.ObjectKey(st.cfg.Prefix, v.String(), a)))
		}
		st.out.Infof("Skipping artifacts upload in dry run mode")
		return nil
	}

	for _, a := range artifacts {
		key := mirror.ObjectKey(st.cfg.Prefix, v.String(), a)
		st.out.Infof("Uploading %s to %s", a, store.Location(key))
		if err := store.Upload(ctx, key, a); err != nil {
			return err
		}
	}
	return nil
}
