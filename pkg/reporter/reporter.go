// Package reporter prints release progress and the final run summary.
package reporter

import "io"

// Summary describes the outcome of a release run.
type Summary struct {
	RunID           string   `json:"run_id"`
	RootPackage     string   `json:"root_package"`
	Version         string   `json:"version"`
	PreviousVersion string   `json:"previous_version,omitempty"`
	Commit          string   `json:"commit,omitempty"`
	DryRun          bool     `json:"dry_run"`
	NoPublish       bool     `json:"no_publish"`
	PublishOrder    []string `json:"publish_order"`
	Published       []string `json:"published"`
	Tag             string   `json:"tag,omitempty"`
	ReleaseID       int64    `json:"release_id,omitempty"`
	Artifacts       []string `json:"artifacts,omitempty"`
}

type Reporter interface {
	Report(w io.Writer, s Summary) error
}

func New(format string) Reporter {
	switch format {
	case "json":
		return &JSONReporter{}
	default:
		return &TableReporter{}
	}
}
