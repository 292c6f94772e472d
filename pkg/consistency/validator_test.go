package consistency_test

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"

	"github.com/pacmancoder/cargo-monorepo/pkg/consistency"
	"github.com/pacmancoder/cargo-monorepo/pkg/reporter"
	"github.com/pacmancoder/cargo-monorepo/pkg/workspace"
)

type fakeLookup struct {
	versions map[string]string
	err      error
	calls    []string
}

func (f *fakeLookup) LatestVersion(_ context.Context, name string) (*semver.Version, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.versions[name]
	if !ok {
		return nil, nil
	}
	return semver.MustParse(v), nil
}

func member(name, version string, deps ...workspace.Dependency) workspace.Package {
	return workspace.Package{
		ID:           name + " " + version + " (path+file:///ws/" + name + ")",
		Name:         name,
		Version:      semver.MustParse(version),
		Dependencies: deps,
	}
}

func requires(name, req string, kind workspace.DependencyKind) workspace.Dependency {
	return workspace.Dependency{Name: name, Kind: kind, Req: workspace.MustRequirement(req)}
}

func newWorkspace(packages ...workspace.Package) *workspace.Workspace {
	ws := &workspace.Workspace{Packages: packages}
	for _, p := range packages {
		ws.Members = append(ws.Members, p.ID)
	}
	return ws
}

func newValidator(lookup *fakeLookup, opts consistency.Options) (*consistency.Validator, *bytes.Buffer) {
	var out bytes.Buffer
	if opts.RootPackage == "" {
		opts.RootPackage = "root"
	}
	return &consistency.Validator{Lookup: lookup, Out: reporter.NewConsole(&out), Options: opts}, &out
}

func violationsOf(t *testing.T, err error) *consistency.Error {
	t.Helper()
	var verr *consistency.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *consistency.Error, got %v", err)
	}
	return verr
}

var pending = semver.MustParse("1.2.0")

func TestValidate_VersionConsistency(t *testing.T) {
	ws := newWorkspace(
		member("root", "1.2.0"),
		member("lib", "1.2.0", requires("root", "=1.2.0", workspace.KindNormal)),
	)
	v, _ := newValidator(&fakeLookup{}, consistency.Options{AllowNonPathDevDependencies: true})
	if _, err := v.Validate(context.Background(), ws, pending); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	ws.Packages[1].Dependencies[0].Req = workspace.MustRequirement("=1.1.0")
	_, err := v.Validate(context.Background(), ws, pending)
	verr := violationsOf(t, err)
	if got := verr.Packages(consistency.CheckVersion); !slices.Equal(got, []string{"lib"}) {
		t.Errorf("inconsistent packages = %v, want [lib]", got)
	}
}

func TestValidate_PackageVersionMismatch(t *testing.T) {
	ws := newWorkspace(member("root", "1.2.0"), member("lib", "1.1.9"))
	v, out := newValidator(&fakeLookup{}, consistency.Options{AllowNonPathDevDependencies: true})

	_, err := v.Validate(context.Background(), ws, pending)
	verr := violationsOf(t, err)
	if got := verr.Packages(consistency.CheckVersion); !slices.Equal(got, []string{"lib"}) {
		t.Errorf("inconsistent packages = %v", got)
	}
	if !strings.Contains(out.String(), "lib v1.1.9 has inconsistent version") {
		t.Errorf("output = %q", out.String())
	}
	if !strings.Contains(out.String(), "root v1.2.0 is OK") {
		t.Errorf("output = %q", out.String())
	}
}

func TestValidate_VersionRaised(t *testing.T) {
	ws := newWorkspace(member("root", "1.0.0"))
	opts := consistency.Options{CheckVersionRaised: true, AllowNonPathDevDependencies: true}

	v, _ := newValidator(&fakeLookup{versions: map[string]string{"root": "1.0.0"}}, opts)
	_, err := v.Validate(context.Background(), ws, semver.MustParse("1.0.0"))
	verr := violationsOf(t, err)
	if !verr.Failed(consistency.CheckVersionRaised) {
		t.Fatalf("expected version raise failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "lower or equal") {
		t.Errorf("error = %q", err)
	}

	ws = newWorkspace(member("root", "1.1.0"))
	lookup := &fakeLookup{versions: map[string]string{"root": "1.0.0"}}
	v, _ = newValidator(lookup, opts)
	res, err := v.Validate(context.Background(), ws, semver.MustParse("1.1.0"))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.PreviousVersion == nil || res.PreviousVersion.String() != "1.0.0" {
		t.Errorf("previous version = %v", res.PreviousVersion)
	}
	if !slices.Equal(lookup.calls, []string{"root"}) {
		t.Errorf("lookups = %v, only the root package should be queried", lookup.calls)
	}
}

func TestValidate_FirstRelease(t *testing.T) {
	ws := newWorkspace(member("root", "1.2.0"))
	v, out := newValidator(&fakeLookup{}, consistency.Options{CheckVersionRaised: true, AllowNonPathDevDependencies: true})

	res, err := v.Validate(context.Background(), ws, pending)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !res.PreviousQueried || res.PreviousVersion != nil {
		t.Errorf("result = %+v, want queried with no previous version", res)
	}
	if !strings.Contains(out.String(), "WARN: Previously published root crate not found") {
		t.Errorf("output = %q", out.String())
	}
}

func TestValidate_VersionRaisedSkipped(t *testing.T) {
	lookup := &fakeLookup{}
	v, _ := newValidator(lookup, consistency.Options{AllowNonPathDevDependencies: true})

	res, err := v.Validate(context.Background(), newWorkspace(member("root", "1.2.0")), pending)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.PreviousQueried || len(lookup.calls) != 0 {
		t.Errorf("lookup should not run, calls = %v", lookup.calls)
	}
}

func TestValidate_CustomRegistryWithVersionCheck(t *testing.T) {
	lookup := &fakeLookup{}
	v, _ := newValidator(lookup, consistency.Options{Registry: "internal", CheckVersionRaised: true})

	_, err := v.Validate(context.Background(), newWorkspace(member("root", "1.2.0")), pending)
	if !errors.Is(err, consistency.ErrCustomRegistryVersionCheck) {
		t.Fatalf("err = %v", err)
	}
	if len(lookup.calls) != 0 {
		t.Error("no check should run")
	}
}

func TestValidate_DevDependencies(t *testing.T) {
	ws := newWorkspace(
		member("root", "1.2.0"),
		member("lib", "1.2.0", requires("root", "1.2.0", workspace.KindDevelopment)),
		member("cli", "1.2.0", requires("root", "", workspace.KindDevelopment), requires("serde", "1", workspace.KindDevelopment)),
	)
	v, _ := newValidator(&fakeLookup{}, consistency.Options{})

	_, err := v.Validate(context.Background(), ws, pending)
	verr := violationsOf(t, err)
	if got := verr.Packages(consistency.CheckDevDependencies); !slices.Equal(got, []string{"lib"}) {
		t.Errorf("flagged packages = %v, want [lib]", got)
	}

	v.Options.AllowNonPathDevDependencies = true
	if _, err := v.Validate(context.Background(), ws, pending); err != nil {
		t.Fatalf("allowed dev dependencies, got %v", err)
	}
}

func TestValidate_RegistryConsistency(t *testing.T) {
	internal := member("internal", "1.2.0")
	internal.Publish = []string{"internal"}
	hidden := member("hidden", "1.2.0")
	hidden.Publish = []string{}
	ws := newWorkspace(member("root", "1.2.0"), internal, hidden)

	v, out := newValidator(&fakeLookup{}, consistency.Options{AllowNonPathDevDependencies: true})
	_, err := v.Validate(context.Background(), ws, pending)
	verr := violationsOf(t, err)
	if got := verr.Packages(consistency.CheckRegistry); !slices.Equal(got, []string{"internal"}) {
		t.Errorf("flagged packages = %v, want [internal]", got)
	}
	if !strings.Contains(out.String(), "does not allow publish to `crates-io` registry") {
		t.Errorf("output = %q", out.String())
	}

	v.Options.Registry = "internal"
	_, err = v.Validate(context.Background(), ws, pending)
	if err != nil {
		t.Fatalf("custom registry: %v", err)
	}
}

func TestValidate_RunsEveryCheck(t *testing.T) {
	internal := member("internal", "1.0.0")
	internal.Publish = []string{"internal"}
	ws := newWorkspace(
		member("root", "1.0.0"),
		internal,
		member("lib", "1.0.0", requires("root", "1.0.0", workspace.KindDevelopment)),
		member("tool", "0.9.0"),
	)
	v, _ := newValidator(&fakeLookup{versions: map[string]string{"root": "1.0.0"}}, consistency.Options{CheckVersionRaised: true})

	_, err := v.Validate(context.Background(), ws, semver.MustParse("1.0.0"))
	verr := violationsOf(t, err)
	for _, check := range []consistency.Check{
		consistency.CheckRegistry,
		consistency.CheckVersionRaised,
		consistency.CheckDevDependencies,
		consistency.CheckVersion,
	} {
		if !verr.Failed(check) {
			t.Errorf("check %s did not report", check)
		}
	}
}

func TestValidate_LookupFailure(t *testing.T) {
	boom := errors.New("registry down")
	ws := newWorkspace(member("root", "1.2.0"), member("lib", "1.0.0"))
	v, _ := newValidator(&fakeLookup{err: boom}, consistency.Options{CheckVersionRaised: true, AllowNonPathDevDependencies: true})

	_, err := v.Validate(context.Background(), ws, pending)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want lookup error", err)
	}
	if got := violationsOf(t, err).Packages(consistency.CheckVersion); !slices.Equal(got, []string{"lib"}) {
		t.Errorf("remaining checks should still run, got %v", got)
	}
}
