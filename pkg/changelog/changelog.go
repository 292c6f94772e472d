// Package changelog cuts the notes for a single release out of a changelog
// file using begin and end marker lines.
package changelog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBeginMarkerMissing = errors.New("changelog: begin marker not found")
	ErrEndMarkerMissing   = errors.New("changelog: end marker not found")
	ErrMarkersMissing     = errors.New("changelog: begin and end markers not found")
	ErrEndBeforeBegin     = errors.New("changelog: end marker should be placed after the begin marker")
	ErrEmpty              = errors.New("changelog: no content between markers")
)

// Markers select the section to extract. When both are empty the whole text
// is returned.
type Markers struct {
	Begin string
	End   string
	// AllowEmpty accepts markers on adjacent lines and yields an empty section.
	AllowEmpty bool
}

// Extract returns the lines strictly between the first line containing the
// begin marker and the first line containing the end marker.
func Extract(text string, m Markers) (string, error) {
	if m.Begin == "" && m.End == "" {
		return text, nil
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	begin := indexOf(lines, m.Begin)
	end := indexOf(lines, m.End)

	switch {
	case begin < 0 && end < 0:
		return "", fmt.Errorf("%w: %q and %q", ErrMarkersMissing, m.Begin, m.End)
	case begin < 0:
		return "", fmt.Errorf("%w: %q", ErrBeginMarkerMissing, m.Begin)
	case end < 0:
		return "", fmt.Errorf("%w: %q", ErrEndMarkerMissing, m.End)
	case end <= begin:
		return "", ErrEndBeforeBegin
	}

	first := begin + 1
	if first == end {
		if !m.AllowEmpty {
			return "", ErrEmpty
		}
		return "", nil
	}
	return strings.Join(lines[first:end], "\n"), nil
}

func indexOf(lines []string, marker string) int {
	if marker == "" {
		return -1
	}
	for i, l := range lines {
		if strings.Contains(l, marker) {
			return i
		}
	}
	return -1
}
