package vcs

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Repo identifies a hosted repository as "owner/name".
type Repo struct {
	Owner string
	Name  string
}

func ParseRepo(s string) (Repo, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repo{}, fmt.Errorf("invalid repo name %q, expected owner/name", s)
	}
	return Repo{Owner: parts[0], Name: parts[1]}, nil
}

func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

func (r *Repo) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseRepo(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*r = parsed
	return nil
}

func (r Repo) MarshalYAML() (any, error) {
	return r.String(), nil
}

// ShortCommit returns the abbreviated form of a commit id used for display.
func ShortCommit(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// CommitSource reports the commit the release is being cut from.
type CommitSource interface {
	// Available reports whether the version-control binary can be used.
	Available(ctx context.Context) bool
	// CurrentCommit returns the full id of the checked out commit.
	CurrentCommit(ctx context.Context) (string, error)
}

// ReleaseRequest describes a release page to create.
type ReleaseRequest struct {
	Tag   string
	Title string
	Body  string
}

// ReleaseHost is the source-hosting side of a release.
type ReleaseHost interface {
	// CheckCommit fails when the commit is unknown to the remote.
	CheckCommit(ctx context.Context, sha string) error
	TagExists(ctx context.Context, tag string) (bool, error)
	CreateTag(ctx context.Context, tag, sha string) error
	// CreateRelease returns the id of the created release.
	CreateRelease(ctx context.Context, req ReleaseRequest) (int64, error)
	UploadAsset(ctx context.Context, releaseID int64, path string) error
}
