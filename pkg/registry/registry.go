// Package registry talks to the package registry: it looks up what was
// already released and publishes workspace packages.
package registry

import (
	"context"

	"github.com/Masterminds/semver/v3"
)

// VersionLookup queries the latest published version of a package.
type VersionLookup interface {
	// LatestVersion returns nil without error when the package was never
	// published.
	LatestVersion(ctx context.Context, name string) (*semver.Version, error)
}

// PublishRequest describes a single package publish.
type PublishRequest struct {
	ManifestPath string
	// Registry is empty for the default registry.
	Registry string
	DryRun   bool
	Token    string
}

// Publisher uploads a package to the registry.
type Publisher interface {
	Publish(ctx context.Context, req PublishRequest) error
}
