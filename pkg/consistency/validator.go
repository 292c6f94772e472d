// Package consistency checks that a workspace is ready to be released at the
// pending version before anything is published.
package consistency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/pacmancoder/cargo-monorepo/pkg/registry"
	"github.com/pacmancoder/cargo-monorepo/pkg/reporter"
	"github.com/pacmancoder/cargo-monorepo/pkg/workspace"
)

type Options struct {
	// Registry is the target registry, empty for the default one.
	Registry                    string
	RootPackage                 string
	CheckVersionRaised          bool
	AllowNonPathDevDependencies bool
}

type Result struct {
	// PreviousVersion is nil when the root package was never released.
	PreviousVersion *semver.Version
	// PreviousQueried is set once the registry answered for the root package.
	PreviousQueried bool
}

// Validator runs every check and reports all violations together.
type Validator struct {
	Lookup  registry.VersionLookup
	Out     *reporter.Console
	Options Options
}

func (v *Validator) Validate(ctx context.Context, ws *workspace.Workspace, pending *semver.Version) (Result, error) {
	if v.Options.Registry != "" && v.Options.CheckVersionRaised {
		return Result{}, ErrCustomRegistryVersionCheck
	}
	if pending == nil {
		return Result{}, errors.New("validate workspace: pending version is not set")
	}

	candidates := ws.PublishCandidates()
	violations := &Error{}

	v.checkRegistry(candidates, violations)
	res, lookupErr := v.checkVersionRaised(ctx, pending, violations)
	v.checkDevDependencies(ws, candidates, violations)
	v.checkVersions(ws, candidates, pending, violations)

	slog.Debug("consistency validation finished",
		"candidates", len(candidates),
		"violations", len(violations.Violations),
	)
	return res, errors.Join(lookupErr, violations.OrNil())
}

func (v *Validator) registryName() string {
	if v.Options.Registry == "" {
		return workspace.DefaultRegistry
	}
	return v.Options.Registry
}

func (v *Validator) checkRegistry(candidates []*workspace.Package, violations *Error) {
	v.Out.Infof("Checking package registry consistency...")
	name := v.registryName()
	for _, p := range candidates {
		if p.AllowsRegistry(name) {
			continue
		}
		v.Out.Failf("%s does not allow publish to `%s` registry", p.FullName(), name)
		violations.Add(CheckRegistry, p.Name, fmt.Sprintf("publish is not allowed to %s", name))
	}
}

func (v *Validator) checkVersionRaised(ctx context.Context, pending *semver.Version, violations *Error) (Result, error) {
	if !v.Options.CheckVersionRaised {
		v.Out.Infof("Version raise check was skipped")
		return Result{}, nil
	}
	v.Out.Infof("Checking that version has been raised...")

	root := v.Options.RootPackage
	prev, err := v.Lookup.LatestVersion(ctx, root)
	if err != nil {
		v.Out.Failf("Failed to query previous version of %s", root)
		return Result{}, fmt.Errorf("query last released version of %s: %w", root, err)
	}
	res := Result{PreviousVersion: prev, PreviousQueried: true}
	if prev == nil {
		v.Out.Warnf("Previously published root crate not found")
		return res, nil
	}

	v.Out.Infof("Queried previous crate version: %s", prev)
	if !pending.GreaterThan(prev) {
		v.Out.Failf("Pending version %s is lower or equal to already published version %s", pending, prev)
		violations.Add(CheckVersionRaised, root, fmt.Sprintf("%s is not greater than %s", pending, prev))
	}
	return res, nil
}

func (v *Validator) checkDevDependencies(ws *workspace.Workspace, candidates []*workspace.Package, violations *Error) {
	if v.Options.AllowNonPathDevDependencies {
		return
	}
	v.Out.Infof("Checking crate workspace dev-dependencies...")

	for _, p := range candidates {
		var broken []string
		for _, dep := range p.Dependencies {
			if dep.Kind != workspace.KindDevelopment || !ws.HasMember(dep.Name) {
				continue
			}
			if !dep.Req.IsEmpty() {
				broken = append(broken, dep.Name)
				violations.Add(CheckDevDependencies, p.Name, fmt.Sprintf("%s %s", dep.Name, dep.Req))
			}
		}
		if len(broken) > 0 {
			v.Out.Failf("%s has invalid dev-dependencies (%s)", p.FullName(), strings.Join(broken, ", "))
		}
	}
}

func (v *Validator) checkVersions(ws *workspace.Workspace, candidates []*workspace.Package, pending *semver.Version, violations *Error) {
	v.Out.Infof("Checking for crates version consistency...")

	for _, p := range candidates {
		if p.Version == nil || !p.Version.Equal(pending) {
			v.Out.Failf("%s has inconsistent version", p.FullName())
			violations.Add(CheckVersion, p.Name, fmt.Sprintf("version %s differs from %s", p.Version, pending))
			continue
		}

		var mismatched []string
		for _, dep := range p.Dependencies {
			if dep.Kind == workspace.KindDevelopment || !ws.HasMember(dep.Name) {
				continue
			}
			if !dep.Req.Matches(pending) {
				mismatched = append(mismatched, fmt.Sprintf("%s %s", dep.Name, dep.Req))
			}
		}
		if len(mismatched) > 0 {
			v.Out.Failf("%s has inconsistent monorepo dependencies (%s)", p.FullName(), strings.Join(mismatched, ", "))
			violations.Add(CheckVersion, p.Name, strings.Join(mismatched, ", "))
			continue
		}

		v.Out.Passf("%s is OK", p.FullName())
	}
}
