package env_test

import (
	"strings"
	"testing"
	"time"

	"github.com/pacmancoder/cargo-monorepo/pkg/env"
)

func TestDuration_Override(t *testing.T) {
	t.Setenv("CARGO_MONOREPO_ENV_DURATION", "250ms")
	got, err := env.Duration("CARGO_MONOREPO_ENV_DURATION", 5*time.Second)
	if err != nil {
		t.Fatalf("Duration() err=%v", err)
	}
	if got != 250*time.Millisecond {
		t.Fatalf("Duration()=%v, want 250ms", got)
	}
}

func TestDuration_Invalid(t *testing.T) {
	src := env.Map(map[string]string{"TIMEOUT": "soon"})
	if _, err := src.Duration("TIMEOUT", time.Second); err == nil {
		t.Fatalf("Duration() expected error")
	}
}

func TestRequired(t *testing.T) {
	src := env.Map(map[string]string{"GITHUB_TOKEN": "secret", "EMPTY": ""})

	got, err := src.Required("GITHUB_TOKEN", "GitHub token")
	if err != nil {
		t.Fatalf("Required() err=%v", err)
	}
	if got != "secret" {
		t.Fatalf("Required()=%q, want secret", got)
	}

	_, err = src.Required("EMPTY", "GitHub token")
	if err == nil || !strings.Contains(err.Error(), "via EMPTY env var") {
		t.Fatalf("Required() err=%v, want hint about EMPTY", err)
	}
	if _, err := src.Required("MISSING", "registry token"); err == nil {
		t.Fatalf("Required() expected error for missing key")
	}
}
