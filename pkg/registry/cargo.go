package registry

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/pacmancoder/cargo-monorepo/pkg/process"
)

// Cargo publishes packages with `cargo publish`.
type Cargo struct {
	Runner process.Runner
}

func (c *Cargo) Publish(ctx context.Context, req PublishRequest) error {
	args := []string{"publish", "--manifest-path", req.ManifestPath}
	if req.Registry != "" {
		args = append(args, "--registry", req.Registry)
	}
	if req.DryRun {
		args = append(args, "--dry-run", "--no-verify")
	}

	var env []string
	if req.Token != "" {
		env = append(env, TokenVar(req.Registry)+"="+req.Token)
	}

	cmd := process.Command{Name: "cargo", Args: args, Env: env}
	if err := c.Runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("cargo publish %s: %w", req.ManifestPath, err)
	}
	return nil
}

// TokenVar returns the environment variable cargo reads the registry token
// from: CARGO_REGISTRY_TOKEN for the default registry, otherwise
// CARGO_REGISTRIES_<NAME>_TOKEN with the name in upper snake case.
func TokenVar(registry string) string {
	if registry == "" {
		return "CARGO_REGISTRY_TOKEN"
	}
	return "CARGO_REGISTRIES_" + upperSnake(registry) + "_TOKEN"
}

func upperSnake(s string) string {
	var b strings.Builder
	prev := rune(0)
	for _, r := range s {
		switch {
		case r == '-' || r == '.' || r == ' ' || r == '_':
			if prev != '_' && b.Len() > 0 {
				b.WriteRune('_')
			}
			prev = '_'
			continue
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			b.WriteRune('_')
		}
		b.WriteRune(unicode.ToUpper(r))
		prev = r
	}
	return strings.TrimSuffix(b.String(), "_")
}
