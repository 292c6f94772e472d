package reporter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

type TableReporter struct{}

func (r *TableReporter) Report(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE")
	fmt.Fprintln(tw, "-----\t-----")

	mode := "release"
	switch {
	case s.DryRun:
		mode = "dry-run"
	case s.NoPublish:
		mode = "release (no publish)"
	}

	rows := [][2]string{
		{"run", s.RunID},
		{"mode", mode},
		{"package", s.RootPackage},
		{"version", s.Version},
		{"previous version", orUnknown(s.PreviousVersion)},
		{"commit", orUnknown(shortSHA(s.Commit))},
		{"publish order", orNone(strings.Join(s.PublishOrder, ", "))},
		{"published", orNone(strings.Join(s.Published, ", "))},
		{"tag", orNone(s.Tag)},
	}
	if s.ReleaseID != 0 {
		rows = append(rows, [2]string{"release id", fmt.Sprint(s.ReleaseID)})
	}
	if len(s.Artifacts) > 0 {
		rows = append(rows, [2]string{"artifacts", fmt.Sprint(len(s.Artifacts))})
	}

	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}

func orUnknown(s string) string {
	if s == "" {
		return "(unknown)"
	}
	return s
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
