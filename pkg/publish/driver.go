// Package publish pushes workspace packages to the registry in publish order.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pacmancoder/cargo-monorepo/pkg/registry"
	"github.com/pacmancoder/cargo-monorepo/pkg/reporter"
	"github.com/pacmancoder/cargo-monorepo/pkg/workspace"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Driver publishes packages strictly one at a time.
type Driver struct {
	Publisher registry.Publisher
	Out       *reporter.Console
	Sleep     SleepFunc
	// Registry is empty for the default registry.
	Registry string
	Token    string
}

// Validate dry-runs the publish of every package. Packages building a binary
// are skipped with a warning.
func (d *Driver) Validate(ctx context.Context, pkgs []*workspace.Package) ([]string, error) {
	var validated []string
	for _, p := range pkgs {
		if p.HasBinary() {
			d.Out.Warnf("Skipped validation of bin crate %s", p.Name)
			continue
		}
		d.Out.Infof("Validating %s...", p.Name)
		if err := d.Publisher.Publish(ctx, d.request(p, true)); err != nil {
			return validated, fmt.Errorf("validate publish of %s: %w", p.FullName(), err)
		}
		validated = append(validated, p.Name)
		d.Out.Passf("%s has been successfully validated", p.Name)
	}
	return validated, nil
}

// Publish publishes every package, waiting interval between two publishes.
// The first failure stops the run; packages published before it stay
// published.
func (d *Driver) Publish(ctx context.Context, pkgs []*workspace.Package, interval time.Duration) ([]string, error) {
	sleep := d.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var published []string
	for _, p := range pkgs {
		if len(published) > 0 {
			d.Out.Infof("Waiting for %s before publishing next crate...", interval)
			if err := sleep(ctx, interval); err != nil {
				return published, fmt.Errorf("wait before publishing %s: %w", p.Name, err)
			}
		}
		d.Out.Infof("Publishing %s...", p.Name)
		if err := d.Publisher.Publish(ctx, d.request(p, false)); err != nil {
			return published, fmt.Errorf("publish %s: %w", p.FullName(), err)
		}
		published = append(published, p.Name)
		slog.Debug("package published", "package", p.Name, "registry", d.Registry)
		d.Out.Passf("%s has been successfully published", p.Name)
	}
	return published, nil
}

func (d *Driver) request(p *workspace.Package, dryRun bool) registry.PublishRequest {
	return registry.PublishRequest{
		ManifestPath: p.ManifestPath,
		Registry:     d.Registry,
		DryRun:       dryRun,
		Token:        d.Token,
	}
}
