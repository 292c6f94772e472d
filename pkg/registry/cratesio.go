package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Masterminds/semver/v3"
)

const (
	cratesIOBaseURL   = "https://crates.io"
	cratesIOUserAgent = "cargo-monorepo (https://github.com/pacmancoder/cargo-monorepo)"
)

// CratesIO looks package versions up through the crates.io web API.
type CratesIO struct {
	BaseURL string
	client  *http.Client
}

func NewCratesIO(timeout time.Duration) *CratesIO {
	return &CratesIO{
		BaseURL: cratesIOBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *CratesIO) LatestVersion(ctx context.Context, name string) (*semver.Version, error) {
	u := fmt.Sprintf("%s/api/v1/crates/%s", r.BaseURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("crates.io lookup: %w", err)
	}
	// crates.io rejects anonymous clients.
	req.Header.Set("User-Agent", cratesIOUserAgent)
	req.Header.Set("Accept", "application/json")

	slog.Debug("crates.io lookup", "crate", name)
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("crates.io lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crates.io returned %d for %s", resp.StatusCode, name)
	}

	var body struct {
		Crate struct {
			MaxVersion       string `json:"max_version"`
			MaxStableVersion string `json:"max_stable_version"`
		} `json:"crate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode crates.io response: %w", err)
	}

	raw := body.Crate.MaxStableVersion
	if raw == "" {
		raw = body.Crate.MaxVersion
	}
	if raw == "" {
		return nil, nil
	}
	v, err := semver.StrictNewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("crates.io version %q of %s: %w", raw, name, err)
	}
	return v, nil
}
