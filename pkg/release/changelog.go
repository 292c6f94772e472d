package release

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/pacmancoder/cargo-monorepo/pkg/changelog"
	"github.com/pacmancoder/cargo-monorepo/pkg/config"
	"github.com/pacmancoder/cargo-monorepo/pkg/reporter"
)

type captureChangelogStep struct {
	cfg *config.Changelog
	out *reporter.Console
}

func (st *captureChangelogStep) Name() string { return "capture-changelog" }

func (st *captureChangelogStep) StartMessage(*State) (string, error) {
	return fmt.Sprintf("Capturing changelog from '%s'", st.cfg.File), nil
}

func (st *captureChangelogStep) SuccessMessage(*State) (string, error) {
	return "Changelog has been captured", nil
}

func (st *captureChangelogStep) Execute(_ context.Context, s *State) error {
	data, err := os.ReadFile(st.cfg.File)
	if err != nil {
		return fmt.Errorf("read changelog: %w", err)
	}
	if !utf8.Valid(data) {
		return errors.New("changelog is not a text file")
	}

	markers := changelog.Markers{AllowEmpty: st.cfg.AllowEmptyChangelog}
	if st.cfg.StartMarkerTemplate != nil && st.cfg.EndMarkerTemplate != nil {
		// Markers are rendered before the changelog exists, so they cannot
		// reference it.
		tctx, err := s.TemplateContext()
		if err != nil {
			return err
		}
		tctx.Changelog = nil
		if markers.Begin, err = st.cfg.StartMarkerTemplate.Render(tctx); err != nil {
			return err
		}
		if markers.End, err = st.cfg.EndMarkerTemplate.Render(tctx); err != nil {
			return err
		}
	}

	text, err := changelog.Extract(string(data), markers)
	if err != nil {
		return err
	}
	if text == "" && markers.Begin != "" {
		st.out.Warnf("empty changelog")
	}
	if st.cfg.PrintToStdout {
		st.out.Block(text)
	}
	s.SetChangelog(text)
	return nil
}
