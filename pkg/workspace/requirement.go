package workspace

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Requirement is a cargo version requirement such as "^1.2", "=1.2.0" or
// ">=1, <2". The zero value is the empty requirement, which matches every
// version and is what cargo reports for path-only dependencies.
type Requirement struct {
	raw         string
	constraints *semver.Constraints
}

// ParseRequirement parses a cargo requirement. Bare versions are caret
// requirements, as in cargo.
func ParseRequirement(s string) (Requirement, error) {
	raw := strings.TrimSpace(s)
	if raw == "" || raw == "*" {
		return Requirement{}, nil
	}

	parts := strings.Split(raw, ",")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return Requirement{}, fmt.Errorf("invalid version requirement %q", s)
		}
		if isBareVersion(part) {
			part = "^" + part
		}
		parts[i] = part
	}

	c, err := semver.NewConstraint(strings.Join(parts, ", "))
	if err != nil {
		return Requirement{}, fmt.Errorf("invalid version requirement %q: %w", s, err)
	}
	return Requirement{raw: raw, constraints: c}, nil
}

// MustRequirement is ParseRequirement for literals known to be valid.
func MustRequirement(s string) Requirement {
	r, err := ParseRequirement(s)
	if err != nil {
		panic(err)
	}
	return r
}

func isBareVersion(part string) bool {
	if part[0] < '0' || part[0] > '9' {
		return false
	}
	return !strings.ContainsAny(part, "*xX")
}

// IsEmpty reports whether the requirement has no comparators.
func (r Requirement) IsEmpty() bool {
	return r.constraints == nil
}

// Matches reports whether v satisfies the requirement.
func (r Requirement) Matches(v *semver.Version) bool {
	if r.constraints == nil {
		return true
	}
	return r.constraints.Check(v)
}

func (r Requirement) String() string {
	if r.constraints == nil {
		return "*"
	}
	return r.raw
}
