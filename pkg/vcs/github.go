package vcs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"
)

// GitHubClient implements ReleaseHost for a single GitHub repository.
type GitHubClient struct {
	client *github.Client
	repo   Repo
}

// NewGitHubClient authenticates with a personal access token.
func NewGitHubClient(ctx context.Context, token string, repo Repo) *GitHubClient {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return NewGitHubClientWith(github.NewClient(oauth2.NewClient(ctx, ts)), repo)
}

func NewGitHubClientWith(client *github.Client, repo Repo) *GitHubClient {
	return &GitHubClient{client: client, repo: repo}
}

func (g *GitHubClient) CheckCommit(ctx context.Context, sha string) error {
	slog.Debug("github combined status", "repo", g.repo.String(), "commit", sha)
	if _, _, err := g.client.Repositories.GetCombinedStatus(ctx, g.repo.Owner, g.repo.Name, sha, nil); err != nil {
		return fmt.Errorf("combined status for %s in %s: %w", ShortCommit(sha), g.repo, err)
	}
	return nil
}

func (g *GitHubClient) TagExists(ctx context.Context, tag string) (bool, error) {
	_, _, err := g.client.Git.GetRef(ctx, g.repo.Owner, g.repo.Name, "tags/"+tag)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get tag %s in %s: %w", tag, g.repo, err)
	}
	return true, nil
}

func (g *GitHubClient) CreateTag(ctx context.Context, tag, sha string) error {
	slog.Debug("github create ref", "repo", g.repo.String(), "tag", tag, "commit", sha)
	ref := &github.Reference{
		Ref:    github.String("refs/tags/" + tag),
		Object: &github.GitObject{SHA: github.String(sha)},
	}
	if _, _, err := g.client.Git.CreateRef(ctx, g.repo.Owner, g.repo.Name, ref); err != nil {
		return fmt.Errorf("create tag %s in %s: %w", tag, g.repo, err)
	}
	return nil
}

func (g *GitHubClient) CreateRelease(ctx context.Context, req ReleaseRequest) (int64, error) {
	slog.Debug("github create release", "repo", g.repo.String(), "tag", req.Tag)
	release, _, err := g.client.Repositories.CreateRelease(ctx, g.repo.Owner, g.repo.Name, &github.RepositoryRelease{
		TagName:    github.String(req.Tag),
		Name:       github.String(req.Title),
		Body:       github.String(req.Body),
		Draft:      github.Bool(false),
		Prerelease: github.Bool(false),
	})
	if err != nil {
		return 0, fmt.Errorf("create release %s in %s: %w", req.Tag, g.repo, err)
	}
	return release.GetID(), nil
}

// UploadAsset streams the file to the release, named after its base name.
func (g *GitHubClient) UploadAsset(ctx context.Context, releaseID int64, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open asset: %w", err)
	}
	defer f.Close()

	name := filepath.Base(path)
	slog.Debug("github upload asset", "repo", g.repo.String(), "release", releaseID, "name", name)
	opts := &github.UploadOptions{Name: name}
	if _, _, err := g.client.Repositories.UploadReleaseAsset(ctx, g.repo.Owner, g.repo.Name, releaseID, opts, f); err != nil {
		return fmt.Errorf("upload asset %s: %w", name, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var errResp *github.ErrorResponse
	return errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound
}
