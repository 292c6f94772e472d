package release

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"

	"github.com/pacmancoder/cargo-monorepo/pkg/mirror"
	"github.com/pacmancoder/cargo-monorepo/pkg/reporter"
	"github.com/pacmancoder/cargo-monorepo/pkg/template"
	"github.com/pacmancoder/cargo-monorepo/pkg/vcs"
	"github.com/pacmancoder/cargo-monorepo/pkg/workspace"
)

// ErrNotReady is returned when a step reads a value an earlier step was
// expected to fill in.
var ErrNotReady = errors.New("not queried yet")

func notReady(what string) error {
	return fmt.Errorf("%s is %w", what, ErrNotReady)
}

// State is shared by all steps of a single run. Steps run one at a time, so
// it is not safe for concurrent use.
type State struct {
	RunID       string
	DryRun      bool
	NoPublish   bool
	RootPackage string

	registryToken string
	host          vcs.ReleaseHost
	mirror        mirror.Store

	commit          string
	workspace       *workspace.Workspace
	version         *semver.Version
	previous        *semver.Version
	previousQueried bool
	changelog       *string
	artifacts       []string
	collected       bool
	publishOrder    []string
	published       []string
	tag             string
	releaseID       int64
}

func NewState(rootPackage string, dryRun, noPublish bool) *State {
	return &State{
		RunID:       uuid.NewString(),
		DryRun:      dryRun,
		NoPublish:   noPublish,
		RootPackage: rootPackage,
	}
}

func (s *State) SetRegistryToken(token string) { s.registryToken = token }

func (s *State) RegistryToken() (string, error) {
	if s.registryToken == "" {
		return "", notReady("crate registry token")
	}
	return s.registryToken, nil
}

func (s *State) SetHost(h vcs.ReleaseHost) { s.host = h }

func (s *State) Host() (vcs.ReleaseHost, error) {
	if s.host == nil {
		return nil, errors.New("GitHub client is not initialized")
	}
	return s.host, nil
}

func (s *State) SetMirror(m mirror.Store) { s.mirror = m }

func (s *State) Mirror() (mirror.Store, error) {
	if s.mirror == nil {
		return nil, errors.New("artifacts mirror client is not initialized")
	}
	return s.mirror, nil
}

func (s *State) SetCommit(sha string) { s.commit = sha }

func (s *State) Commit() (string, error) {
	if s.commit == "" {
		return "", notReady("current commit")
	}
	return s.commit, nil
}

func (s *State) SetWorkspace(ws *workspace.Workspace) { s.workspace = ws }

func (s *State) Workspace() (*workspace.Workspace, error) {
	if s.workspace == nil {
		return nil, notReady("cargo metadata")
	}
	return s.workspace, nil
}

// SetVersion records the pending version. It can be set only once.
func (s *State) SetVersion(v *semver.Version) error {
	if s.version != nil {
		return fmt.Errorf("pending version is already set to %s", s.version)
	}
	s.version = v
	return nil
}

func (s *State) Version() (*semver.Version, error) {
	if s.version == nil {
		return nil, notReady("pending version")
	}
	return s.version, nil
}

// SetPrevious records the result of the previous version lookup; v is nil
// for a first release.
func (s *State) SetPrevious(v *semver.Version) {
	s.previous = v
	s.previousQueried = true
}

// Previous returns the previously released version. ok is false when the
// registry was not asked.
func (s *State) Previous() (v *semver.Version, ok bool) {
	return s.previous, s.previousQueried
}

func (s *State) SetChangelog(text string) { s.changelog = &text }

func (s *State) Changelog() (string, bool) {
	if s.changelog == nil {
		return "", false
	}
	return *s.changelog, true
}

func (s *State) SetArtifacts(paths []string) {
	s.artifacts = paths
	s.collected = true
}

func (s *State) Artifacts() ([]string, error) {
	if !s.collected {
		return nil, notReady("artifacts list")
	}
	return s.artifacts, nil
}

func (s *State) SetPublishOrder(names []string) { s.publishOrder = names }

func (s *State) AddPublished(names ...string) {
	s.published = append(s.published, names...)
}

func (s *State) SetTag(tag string) { s.tag = tag }

func (s *State) Tag() (string, error) {
	if s.tag == "" {
		return "", errors.New("GitHub tag is not created yet")
	}
	return s.tag, nil
}

func (s *State) SetReleaseID(id int64) { s.releaseID = id }

// TemplateContext exposes the state to user templates. The changelog is
// included once captured.
func (s *State) TemplateContext() (template.Context, error) {
	v, err := s.Version()
	if err != nil {
		return template.Context{}, err
	}
	return template.Context{RootPackage: s.RootPackage, Version: v, Changelog: s.changelog}, nil
}

func (s *State) Summary() reporter.Summary {
	sum := reporter.Summary{
		RunID:        s.RunID,
		RootPackage:  s.RootPackage,
		Commit:       s.commit,
		DryRun:       s.DryRun,
		NoPublish:    s.NoPublish,
		PublishOrder: s.publishOrder,
		Published:    s.published,
		Tag:          s.tag,
		ReleaseID:    s.releaseID,
	}
	if s.version != nil {
		sum.Version = s.version.String()
	}
	if s.previous != nil {
		sum.PreviousVersion = s.previous.String()
	}
	for _, a := range s.artifacts {
		sum.Artifacts = append(sum.Artifacts, filepath.Base(a))
	}
	return sum
}
