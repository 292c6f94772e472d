package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/pacmancoder/cargo-monorepo/pkg/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "monorepo.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
workspace:
  root_package: app
github:
  repo: acme/monorepo
artifacts:
  directory: dist
release:
  github:
    create_tag: true
    create_release_page: true
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if !cfg.DryRun {
		t.Error("expected dry run by default")
	}
	if !cfg.Release.CheckVersionRaised || !cfg.Release.AllowNonPathDevDependencies {
		t.Error("expected release checks enabled by default")
	}
	if got := cfg.Release.PublishInterval(); got != 30*time.Second {
		t.Errorf("PublishInterval = %s", got)
	}
	if !cfg.Artifacts.CheckNotEmpty {
		t.Error("expected check_not_empty by default")
	}

	g := cfg.Release.GitHub
	if !g.CheckCommitPushed || !g.ReleasePageUploadArtifacts {
		t.Error("expected github release defaults to be applied")
	}
	if g.TagNameTemplate.String() != "v{{ .Version }}" {
		t.Errorf("tag template = %q", g.TagNameTemplate.String())
	}
	if cfg.GitHub.Repo.String() != "acme/monorepo" {
		t.Errorf("repo = %q", cfg.GitHub.Repo.String())
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
workspace:
  root_package: app
changelog:
  file: CHANGELOG.md
  start_marker_template: "## {{ .Version }}"
  end_marker_template: "<!-- end {{ .Version }} -->"
release:
  check_version_raised: false
  registry: internal
  publish_interval_seconds: 0
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Release.Registry != "internal" || cfg.Release.CheckVersionRaised {
		t.Errorf("release = %+v", cfg.Release)
	}
	if cfg.Release.PublishInterval() != 0 {
		t.Errorf("PublishInterval = %s", cfg.Release.PublishInterval())
	}
	if cfg.Changelog.StartMarkerTemplate == nil || cfg.Changelog.EndMarkerTemplate == nil {
		t.Fatal("expected marker templates")
	}
}

func TestLoad_InvalidTemplate(t *testing.T) {
	_, err := config.Load(writeConfig(t, `
workspace:
  root_package: app
release:
  github:
    tag_name_template: "v{{ .Version"
`))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := config.Default()
	cfg.Release.Registry = "internal"
	cfg.Release.GitHub = &config.GitHubRelease{CreateReleasePage: true, ReleasePageUploadArtifacts: true}
	cfg.Changelog = &config.Changelog{File: "CHANGELOG.md", StartMarkerTemplate: nil}
	cfg.Artifacts = &config.Artifacts{Directory: "dist", Mirror: &config.Mirror{Endpoint: "https://s3", Bucket: "b"}}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{
		"workspace.root_package is required",
		"custom registries",
		"github.repo should be specified",
		"create_tag should be enabled",
		"endpoint must not include scheme",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
	if strings.Contains(err.Error(), "artifacts should be specified") {
		t.Errorf("artifacts are configured, got %q", err)
	}
}

func TestValidate_UploadWithoutArtifacts(t *testing.T) {
	cfg := config.Default()
	cfg.Workspace.RootPackage = "app"
	cfg.GitHub = &config.GitHub{}
	cfg.Release.GitHub = &config.GitHubRelease{CreateTag: true, CreateReleasePage: true, ReleasePageUploadArtifacts: true}

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "artifacts should be specified") {
		t.Fatalf("err = %v", err)
	}

	cfg.Release.GitHub.CreateReleasePage = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("no release page, got %v", err)
	}
}

func TestValidate_ChangelogMarkersInPairs(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
workspace:
  root_package: app
changelog:
  file: CHANGELOG.md
  start_marker_template: "## {{ .Version }}"
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "both changelog") {
		t.Fatalf("err = %v", err)
	}
}

func TestValidate_OutputFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Workspace.RootPackage = "app"
	cfg.Output = "json"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("json output: %v", err)
	}

	cfg.Output = "sarif"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), `unknown output format "sarif"`) {
		t.Fatalf("err = %v", err)
	}
}

func TestMergeFlags(t *testing.T) {
	flags := pflag.NewFlagSet("release", pflag.ContinueOnError)
	flags.Bool("confirm", false, "")
	flags.Bool("nopublish", false, "")
	flags.String("output", "", "")
	if err := flags.Parse([]string{"--confirm", "--nopublish", "--output", "json"}); err != nil {
		t.Fatal(err)
	}

	cfg := config.MergeFlags(config.Default(), flags)
	if cfg.DryRun || !cfg.NoPublish || cfg.Output != "json" {
		t.Errorf("cfg = %+v", cfg)
	}
}
