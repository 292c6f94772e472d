package release

import (
	"context"
	"errors"
	"time"

	"github.com/pacmancoder/cargo-monorepo/pkg/config"
	"github.com/pacmancoder/cargo-monorepo/pkg/consistency"
	"github.com/pacmancoder/cargo-monorepo/pkg/publish"
)

type validateVersionStep struct {
	cfg *config.Config
	svc *Services
}

func (st *validateVersionStep) Name() string { return "validate-version" }

func (st *validateVersionStep) StartMessage(*State) (string, error) {
	return "Validating repo versioning", nil
}

func (st *validateVersionStep) SuccessMessage(*State) (string, error) {
	return "Version validation done", nil
}

func (st *validateVersionStep) Execute(ctx context.Context, s *State) error {
	ws, err := s.Workspace()
	if err != nil {
		return err
	}
	v, err := s.Version()
	if err != nil {
		return err
	}

	validator := &consistency.Validator{
		Lookup: st.svc.Lookup,
		Out:    st.svc.Out,
		Options: consistency.Options{
			Registry:                    st.cfg.Release.Registry,
			RootPackage:                 s.RootPackage,
			CheckVersionRaised:          st.cfg.Release.CheckVersionRaised,
			AllowNonPathDevDependencies: st.cfg.Release.AllowNonPathDevDependencies,
		},
	}
	res, err := validator.Validate(ctx, ws, v)
	if res.PreviousQueried {
		s.SetPrevious(res.PreviousVersion)
	}
	return err
}

// publishStep dry-runs every publish when validate is set, otherwise
// publishes for real.
type publishStep struct {
	driver   *publish.Driver
	validate bool
	interval time.Duration
}

func (st *publishStep) Name() string {
	if st.validate {
		return "validate-publish"
	}
	return "publish"
}

func (st *publishStep) StartMessage(*State) (string, error) {
	if st.validate {
		return "Validating cargo publish (with --dry-run)", nil
	}
	return "Running cargo publish", nil
}

func (st *publishStep) SuccessMessage(*State) (string, error) {
	if st.validate {
		return "Cargo publish validation passed", nil
	}
	return "Cargo publish succeeded", nil
}

func (st *publishStep) Execute(ctx context.Context, s *State) error {
	if s.DryRun && !st.validate {
		return errors.New("BUG: real publish must not run in dry-run mode")
	}
	ws, err := s.Workspace()
	if err != nil {
		return err
	}
	token, err := s.RegistryToken()
	if err != nil {
		return err
	}
	pkgs, err := ws.PublishOrder()
	if err != nil {
		return err
	}
	st.driver.Token = token

	if st.validate {
		names := make([]string, 0, len(pkgs))
		st.driver.Out.Infof("Package publish order:")
		for _, p := range pkgs {
			st.driver.Out.Infof("- %s", p.Name)
			names = append(names, p.Name)
		}
		s.SetPublishOrder(names)
		_, err := st.driver.Validate(ctx, pkgs)
		return err
	}

	published, err := st.driver.Publish(ctx, pkgs, st.interval)
	s.AddPublished(published...)
	return err
}
