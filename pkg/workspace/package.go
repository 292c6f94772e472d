// Package workspace models the members of a cargo workspace and the order in
// which they have to be published.
package workspace

import (
	"fmt"
	"slices"

	"github.com/Masterminds/semver/v3"
)

// DefaultRegistry is the registry cargo publishes to when none is given.
const DefaultRegistry = "crates-io"

// DependencyKind mirrors the dependency sections of a cargo manifest.
type DependencyKind string

const (
	KindNormal      DependencyKind = "normal"
	KindBuild       DependencyKind = "build"
	KindDevelopment DependencyKind = "dev"
)

type Dependency struct {
	Name string
	Kind DependencyKind
	Req  Requirement
}

type Target struct {
	Name string
	Kind []string
}

type Package struct {
	ID           string
	Name         string
	Version      *semver.Version
	ManifestPath string
	Dependencies []Dependency
	Targets      []Target
	// Publish lists the registries the package may be published to. A nil
	// slice allows every registry, an empty non-nil slice forbids publishing.
	Publish []string
}

// Publishable reports whether the package may be published anywhere.
func (p *Package) Publishable() bool {
	return p.Publish == nil || len(p.Publish) > 0
}

// AllowsRegistry reports whether the package may be published to registry.
func (p *Package) AllowsRegistry(registry string) bool {
	if p.Publish == nil {
		return true
	}
	return slices.Contains(p.Publish, registry)
}

// HasBinary reports whether the package builds at least one binary target.
func (p *Package) HasBinary() bool {
	for _, t := range p.Targets {
		if slices.Contains(t.Kind, "bin") {
			return true
		}
	}
	return false
}

// FullName renders the package as "name vX.Y.Z" for diagnostics.
func (p *Package) FullName() string {
	if p.Version == nil {
		return p.Name
	}
	return fmt.Sprintf("%s v%s", p.Name, p.Version)
}

// Workspace is a snapshot of the workspace metadata taken once per run.
type Workspace struct {
	// Members holds package ids in the order cargo lists workspace members.
	Members  []string
	Packages []Package
}

// Package returns the package with the given id.
func (w *Workspace) Package(id string) (*Package, bool) {
	for i := range w.Packages {
		if w.Packages[i].ID == id {
			return &w.Packages[i], true
		}
	}
	return nil, false
}

// IsMember reports whether id belongs to the workspace.
func (w *Workspace) IsMember(id string) bool {
	return slices.Contains(w.Members, id)
}

// Member looks a workspace member up by package name.
func (w *Workspace) Member(name string) (*Package, bool) {
	for i := range w.Packages {
		p := &w.Packages[i]
		if p.Name == name && w.IsMember(p.ID) {
			return p, true
		}
	}
	return nil, false
}

// HasMember reports whether a workspace member is called name.
func (w *Workspace) HasMember(name string) bool {
	_, ok := w.Member(name)
	return ok
}

// PublishCandidates returns the publishable workspace members in listing
// order.
func (w *Workspace) PublishCandidates() []*Package {
	var out []*Package
	for i := range w.Packages {
		p := &w.Packages[i]
		if w.IsMember(p.ID) && p.Publishable() {
			out = append(out, p)
		}
	}
	return out
}

// PublishOrder returns the publish candidates sorted so that every package
// comes after the in-workspace packages it depends on. Non-publishable
// members still contribute ordering edges but never appear in the result.
func (w *Workspace) PublishOrder() ([]*Package, error) {
	order, err := NewGraph(w).Order()
	if err != nil {
		return nil, err
	}
	candidates := make(map[string]*Package)
	for _, p := range w.PublishCandidates() {
		candidates[p.ID] = p
	}
	out := make([]*Package, 0, len(candidates))
	for _, id := range order {
		if p, ok := candidates[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
