package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/pacmancoder/cargo-monorepo/pkg/consistency"
	"github.com/pacmancoder/cargo-monorepo/pkg/template"
	"github.com/pacmancoder/cargo-monorepo/pkg/vcs"
)

type Config struct {
	Workspace Workspace  `yaml:"workspace"`
	GitHub    *GitHub    `yaml:"github"`
	Changelog *Changelog `yaml:"changelog"`
	Artifacts *Artifacts `yaml:"artifacts"`
	Release   Release    `yaml:"release"`
	DryRun    bool       `yaml:"-"`
	NoPublish bool       `yaml:"-"`
	Output    string     `yaml:"-"`
}

type Workspace struct {
	// RootPackage drives the version of the whole release.
	RootPackage string `yaml:"root_package"`
}

type GitHub struct {
	Repo vcs.Repo `yaml:"repo"`
}

type Release struct {
	CheckVersionRaised          bool           `yaml:"check_version_raised"`
	AllowNonPathDevDependencies bool           `yaml:"allow_non_path_dev_dependencies"`
	Registry                    string         `yaml:"registry"`
	PublishIntervalSeconds      int            `yaml:"publish_interval_seconds"`
	GitHub                      *GitHubRelease `yaml:"github"`
}

// PublishInterval is the pause between two consecutive package publishes.
func (r Release) PublishInterval() time.Duration {
	return time.Duration(r.PublishIntervalSeconds) * time.Second
}

type GitHubRelease struct {
	CheckCommitPushed          bool               `yaml:"check_commit_pushed"`
	CreateTag                  bool               `yaml:"create_tag"`
	TagNameTemplate            *template.Template `yaml:"tag_name_template"`
	CreateReleasePage          bool               `yaml:"create_release_page"`
	ReleasePageUploadArtifacts bool               `yaml:"release_page_upload_artifacts"`
	ReleasePageTitleTemplate   *template.Template `yaml:"release_page_title_template"`
	ReleasePageBodyTemplate    *template.Template `yaml:"release_page_body_template"`
	PrintToStdout              bool               `yaml:"print_to_stdout"`
}

type Changelog struct {
	File                string             `yaml:"file"`
	StartMarkerTemplate *template.Template `yaml:"start_marker_template"`
	EndMarkerTemplate   *template.Template `yaml:"end_marker_template"`
	PrintToStdout       bool               `yaml:"print_to_stdout"`
	AllowEmptyChangelog bool               `yaml:"allow_empty_changelog"`
}

type Artifacts struct {
	Directory     string  `yaml:"directory"`
	CheckNotEmpty bool    `yaml:"check_not_empty"`
	Mirror        *Mirror `yaml:"mirror"`
}

// Mirror is an S3-compatible bucket receiving a copy of the artifacts.
type Mirror struct {
	Endpoint string `yaml:"endpoint"`
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	UseSSL   bool   `yaml:"use_ssl"`
}

func Default() *Config {
	return &Config{
		Release: Release{
			CheckVersionRaised:          true,
			AllowNonPathDevDependencies: true,
			PublishIntervalSeconds:      30,
		},
		DryRun: true,
		Output: "table",
	}
}

func defaultGitHubRelease() GitHubRelease {
	return GitHubRelease{
		CheckCommitPushed:          true,
		TagNameTemplate:            template.Must("v{{ .Version }}"),
		ReleasePageUploadArtifacts: true,
		ReleasePageTitleTemplate:   template.Must("{{ .RootPackage }} v{{ .Version }}"),
		ReleasePageBodyTemplate:    template.Must("{{ .Changelog }}"),
	}
}

func (g *GitHubRelease) UnmarshalYAML(node *yaml.Node) error {
	type plain GitHubRelease
	p := plain(defaultGitHubRelease())
	if err := node.Decode(&p); err != nil {
		return err
	}
	*g = GitHubRelease(p)
	return nil
}

func (a *Artifacts) UnmarshalYAML(node *yaml.Node) error {
	type plain Artifacts
	p := plain{CheckNotEmpty: true}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*a = Artifacts(p)
	return nil
}

func (m *Mirror) UnmarshalYAML(node *yaml.Node) error {
	type plain Mirror
	p := plain{Region: "us-east-1", UseSSL: true}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*m = Mirror(p)
	return nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every contradiction in the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Workspace.RootPackage) == "" {
		errs = append(errs, errors.New("workspace.root_package is required"))
	}

	switch c.Output {
	case "table", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown output format %q, expected table or json", c.Output))
	}

	r := c.Release
	if r.Registry != "" && r.CheckVersionRaised {
		errs = append(errs, consistency.ErrCustomRegistryVersionCheck)
	}
	if r.PublishIntervalSeconds < 0 {
		errs = append(errs, errors.New("release.publish_interval_seconds must not be negative"))
	}
	if g := r.GitHub; g != nil {
		if c.GitHub == nil {
			errs = append(errs, errors.New("github.repo should be specified to be able to use release.github"))
		}
		if g.CreateReleasePage && !g.CreateTag {
			errs = append(errs, errors.New("release.github.create_tag should be enabled when release.github.create_release_page is set"))
		}
		if g.CreateReleasePage && g.ReleasePageUploadArtifacts && c.Artifacts == nil {
			errs = append(errs, errors.New("artifacts should be specified when release.github.release_page_upload_artifacts is set"))
		}
	}

	if ch := c.Changelog; ch != nil {
		if strings.TrimSpace(ch.File) == "" {
			errs = append(errs, errors.New("changelog.file is required"))
		}
		if (ch.StartMarkerTemplate == nil) != (ch.EndMarkerTemplate == nil) {
			errs = append(errs, errors.New("both changelog.start_marker_template and changelog.end_marker_template should be specified"))
		}
	}

	if a := c.Artifacts; a != nil {
		if strings.TrimSpace(a.Directory) == "" {
			errs = append(errs, errors.New("artifacts.directory is required"))
		}
		if a.Mirror != nil {
			if err := a.Mirror.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("artifacts.mirror: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

func (m Mirror) Validate() error {
	if strings.TrimSpace(m.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	if strings.Contains(m.Endpoint, "://") {
		return fmt.Errorf("endpoint must not include scheme: %q", m.Endpoint)
	}
	if strings.TrimSpace(m.Bucket) == "" {
		return errors.New("bucket is required")
	}
	return nil
}

// MergeFlags applies command-line flags on top of the file configuration.
func MergeFlags(cfg *Config, flags *pflag.FlagSet) *Config {
	if v, err := flags.GetBool("confirm"); err == nil {
		cfg.DryRun = !v
	}
	if v, err := flags.GetBool("nopublish"); err == nil {
		cfg.NoPublish = v
	}
	if v, err := flags.GetString("output"); err == nil && v != "" {
		cfg.Output = v
	}
	return cfg
}
