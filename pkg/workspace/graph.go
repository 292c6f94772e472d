package workspace

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrCycleDetected = errors.New("workspace: dependency cycle detected")

// Graph holds the workspace members and, for each, the members it depends
// on. Path-only development dependencies are left out: cargo strips them from
// the published manifest, and they may point back at their dependents. A
// development dependency with a version requirement stays in the published
// manifest, so it is an edge like any other.
type Graph struct {
	members []string
	names   map[string]string
	deps    map[string][]string
}

// NewGraph builds the in-workspace dependency graph. Dependencies outside the
// workspace are ignored, they are assumed to be published already.
func NewGraph(w *Workspace) *Graph {
	g := &Graph{
		names: make(map[string]string),
		deps:  make(map[string][]string),
	}

	byName := make(map[string]string)
	for _, id := range w.Members {
		p, ok := w.Package(id)
		if !ok {
			continue
		}
		g.members = append(g.members, id)
		g.names[id] = p.Name
		byName[p.Name] = id
	}

	for _, id := range g.members {
		p, _ := w.Package(id)
		var deps []string
		for _, dep := range p.Dependencies {
			if dep.Kind == KindDevelopment && dep.Req.IsEmpty() {
				continue
			}
			depID, ok := byName[dep.Name]
			if !ok || depID == id || slices.Contains(deps, depID) {
				continue
			}
			deps = append(deps, depID)
		}
		g.deps[id] = deps
	}
	return g
}

// Order returns member ids in depth-first post-order: every member follows
// all of its in-workspace dependencies. Members are visited in listing order
// so the result is stable for a given workspace.
func (g *Graph) Order() ([]string, error) {
	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	state := make(map[string]int, len(g.members))
	sorted := make([]string, 0, len(g.members))
	var stack []string

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case visited:
			return nil
		case visiting:
			return g.cycleError(stack, id)
		}
		state[id] = visiting
		stack = append(stack, id)
		for _, dep := range g.deps[id] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = visited
		sorted = append(sorted, id)
		return nil
	}

	for _, id := range g.members {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}

func (g *Graph) cycleError(stack []string, id string) error {
	start := slices.Index(stack, id)
	path := make([]string, 0, len(stack)-start+1)
	for _, s := range stack[start:] {
		path = append(path, g.names[s])
	}
	path = append(path, g.names[id])
	return fmt.Errorf("%w: %s", ErrCycleDetected, strings.Join(path, " -> "))
}
