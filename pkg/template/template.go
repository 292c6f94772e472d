// Package template renders the short user-configured strings of a release:
// tag names, release titles and bodies, changelog markers.
package template

import (
	"bytes"
	"fmt"
	texttemplate "text/template"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Context holds the values a template may reference as .RootPackage,
// .Version and .Changelog. A nil Changelog leaves .Changelog undefined.
type Context struct {
	RootPackage string
	Version     *semver.Version
	Changelog   *string
}

// Template is a strict text/template: referencing an undefined value is a
// rendering error instead of an empty string.
type Template struct {
	source string
	tmpl   *texttemplate.Template
}

func New(source string) (*Template, error) {
	tmpl, err := texttemplate.New("t").Option("missingkey=error").Parse(source)
	if err != nil {
		return nil, fmt.Errorf("invalid template %q: %w", source, err)
	}
	return &Template{source: source, tmpl: tmpl}, nil
}

// Must is New for built-in defaults.
func Must(source string) *Template {
	t, err := New(source)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Template) Render(ctx Context) (string, error) {
	data := map[string]any{
		"RootPackage": ctx.RootPackage,
	}
	if ctx.Version != nil {
		data["Version"] = ctx.Version.String()
	}
	if ctx.Changelog != nil {
		data["Changelog"] = *ctx.Changelog
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %q: %w", t.source, err)
	}
	return buf.String(), nil
}

func (t *Template) String() string {
	return t.source
}

func (t *Template) UnmarshalYAML(node *yaml.Node) error {
	var source string
	if err := node.Decode(&source); err != nil {
		return err
	}
	parsed, err := New(source)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*t = *parsed
	return nil
}

func (t *Template) MarshalYAML() (any, error) {
	return t.source, nil
}
