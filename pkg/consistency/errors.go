package consistency

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrCustomRegistryVersionCheck aborts validation before any check runs: a
// custom registry cannot be asked for the previously released version.
var ErrCustomRegistryVersionCheck = errors.New("querying the last released version is not supported for custom registries, " +
	"set release.check_version_raised to false to skip this check")

type Check string

const (
	CheckRegistry        Check = "registry"
	CheckVersionRaised   Check = "version-raised"
	CheckDevDependencies Check = "dev-dependencies"
	CheckVersion         Check = "version"
)

func (c Check) summary() string {
	switch c {
	case CheckRegistry:
		return "package registry inconsistency detected"
	case CheckVersionRaised:
		return "pending version is lower or equal to already published version"
	case CheckDevDependencies:
		return "detected invalid dev dependencies: version field should not be specified for in-workspace dev-dependencies"
	case CheckVersion:
		return "detected version inconsistency in crates"
	default:
		return string(c)
	}
}

type Violation struct {
	Check   Check
	Package string
	Detail  string
}

// Error aggregates the violations of every check of one validation run.
type Error struct {
	Violations []Violation
}

func (e *Error) Add(check Check, pkg, detail string) {
	e.Violations = append(e.Violations, Violation{Check: check, Package: pkg, Detail: detail})
}

// OrNil returns e as an error only when something was recorded.
func (e *Error) OrNil() error {
	if e == nil || len(e.Violations) == 0 {
		return nil
	}
	return e
}

// Packages lists the distinct packages that failed check, in reporting order.
func (e *Error) Packages(check Check) []string {
	var out []string
	for _, v := range e.Violations {
		if v.Check == check && !slices.Contains(out, v.Package) {
			out = append(out, v.Package)
		}
	}
	return out
}

// Failed reports whether check recorded at least one violation.
func (e *Error) Failed(check Check) bool {
	return len(e.Packages(check)) > 0
}

func (e *Error) Error() string {
	var seen []Check
	for _, v := range e.Violations {
		if !slices.Contains(seen, v.Check) {
			seen = append(seen, v.Check)
		}
	}
	msgs := make([]string, 0, len(seen))
	for _, c := range seen {
		msgs = append(msgs, fmt.Sprintf("%s (%s)", c.summary(), strings.Join(e.Packages(c), ", ")))
	}
	return "consistency validation failed: " + strings.Join(msgs, "; ")
}
