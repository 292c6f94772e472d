package workspace

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/pacmancoder/cargo-monorepo/pkg/process"
)

// CargoMetadata queries workspace metadata with `cargo metadata`.
type CargoMetadata struct {
	Runner process.Runner
}

func (c *CargoMetadata) Load(ctx context.Context) (*Workspace, error) {
	args := []string{"metadata", "--format-version", "1", "--no-deps"}
	out, err := c.Runner.Output(ctx, process.Command{Name: "cargo", Args: args})
	if err != nil {
		return nil, fmt.Errorf("query cargo metadata: %w", err)
	}
	ws, err := ParseMetadata(out)
	if err != nil {
		return nil, fmt.Errorf("parse cargo metadata: %w", err)
	}
	return ws, nil
}

// ParseMetadata decodes the JSON printed by `cargo metadata --format-version 1`.
func ParseMetadata(data []byte) (*Workspace, error) {
	var meta struct {
		Packages []struct {
			ID           string `json:"id"`
			Name         string `json:"name"`
			Version      string `json:"version"`
			ManifestPath string `json:"manifest_path"`
			Dependencies []struct {
				Name string  `json:"name"`
				Req  string  `json:"req"`
				Kind *string `json:"kind"`
			} `json:"dependencies"`
			Targets []struct {
				Name string   `json:"name"`
				Kind []string `json:"kind"`
			} `json:"targets"`
			Publish *[]string `json:"publish"`
		} `json:"packages"`
		WorkspaceMembers []string `json:"workspace_members"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	ws := &Workspace{Members: meta.WorkspaceMembers}
	for _, mp := range meta.Packages {
		version, err := semver.StrictNewVersion(mp.Version)
		if err != nil {
			return nil, fmt.Errorf("package %s: invalid version %q: %w", mp.Name, mp.Version, err)
		}
		p := Package{
			ID:           mp.ID,
			Name:         mp.Name,
			Version:      version,
			ManifestPath: mp.ManifestPath,
		}
		for _, md := range mp.Dependencies {
			req, err := ParseRequirement(md.Req)
			if err != nil {
				return nil, fmt.Errorf("package %s dependency %s: %w", mp.Name, md.Name, err)
			}
			p.Dependencies = append(p.Dependencies, Dependency{
				Name: md.Name,
				Kind: parseKind(md.Kind),
				Req:  req,
			})
		}
		for _, mt := range mp.Targets {
			p.Targets = append(p.Targets, Target{Name: mt.Name, Kind: mt.Kind})
		}
		if mp.Publish != nil {
			p.Publish = append(make([]string, 0, len(*mp.Publish)), *mp.Publish...)
		}
		ws.Packages = append(ws.Packages, p)
	}
	return ws, nil
}

func parseKind(kind *string) DependencyKind {
	if kind == nil {
		return KindNormal
	}
	switch *kind {
	case "dev":
		return KindDevelopment
	case "build":
		return KindBuild
	default:
		return KindNormal
	}
}
