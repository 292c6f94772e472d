package vcs

import (
	"context"
	"fmt"
	"strings"

	"github.com/pacmancoder/cargo-monorepo/pkg/process"
)

// Git reads repository state through the git binary.
type Git struct {
	Runner process.Runner
}

func (g *Git) Available(ctx context.Context) bool {
	_, err := g.Runner.Output(ctx, process.Command{Name: "git", Args: []string{"--version"}})
	return err == nil
}

func (g *Git) CurrentCommit(ctx context.Context) (string, error) {
	out, err := g.Runner.Output(ctx, process.Command{Name: "git", Args: []string{"rev-parse", "--verify", "HEAD"}})
	if err != nil {
		return "", fmt.Errorf("get current git commit: %w", err)
	}
	sha := strings.TrimSpace(string(out))
	if sha == "" {
		return "", fmt.Errorf("get current git commit: empty output")
	}
	return sha, nil
}
