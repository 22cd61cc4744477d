package cli

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/ipa-fxm-rc/moveit-core/config"
	"github.com/ipa-fxm-rc/moveit-core/constraintsamplers"
	"github.com/ipa-fxm-rc/moveit-core/kinematicconstraints"
	"github.com/ipa-fxm-rc/moveit-core/logging"
	"github.com/ipa-fxm-rc/moveit-core/motionplan/ik"
	"github.com/ipa-fxm-rc/moveit-core/planningscene"
	"github.com/ipa-fxm-rc/moveit-core/referenceframe"
)

// SelectAction is the entry point of the sampler-select command.
func SelectAction(c *cli.Context) error {
	logger := logging.NewBlankLogger("sampler-select")
	logger.SetLevel(logging.INFO)
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	defer func() {
		//nolint:errcheck
		logger.Sync()
	}()

	cfg, err := config.Read(c.String(flagConfig), logger)
	if err != nil {
		return err
	}
	if cfg.Debug || c.Bool(flagDebug) {
		logger.SetLevel(logging.DEBUG)
	}

	session, err := newSelectSession(cfg, logger)
	if err != nil {
		return err
	}

	constraints, err := kinematicconstraints.ReadConstraintsFile(c.String(flagConstraints))
	if err != nil {
		return err
	}
	logger.Debugw("read constraints", "constraints", constraints.String())

	samples := c.Int(flagSamples)
	if samples < 0 {
		return errors.Errorf("--%s must not be negative, got %d", flagSamples, samples)
	}
	parallel := c.Int(flagParallel)
	if parallel < 1 {
		return errors.Errorf("--%s must be at least 1, got %d", flagParallel, parallel)
	}
	return session.run(c.App.Writer, c.String(flagGroup), constraints, samples, c.Int64(flagSeed), parallel, c.Bool(flagDefault))
}

// selectSession holds everything loaded from one configuration.
type selectSession struct {
	logger  logging.Logger
	scene   *planningscene.Scene
	manager *constraintsamplers.Manager
}

func newSelectSession(cfg *config.Config, logger logging.Logger) (*selectSession, error) {
	model, err := referenceframe.ParseModelJSONFile(cfg.Model, "")
	if err != nil {
		return nil, err
	}

	solvers := ik.NewJacobianSolverAllocator(cfg.IK.JacobianOptions(), logger.Sublogger("ik"))
	if err := ik.AttachSolvers(model, cfg.IKGroups, solvers); err != nil {
		return nil, err
	}

	manager, err := constraintsamplers.NewManagerFromConfig(logger.Sublogger("samplers"), cfg.Allocators, cfg.ManagerOptions()...)
	if err != nil {
		return nil, err
	}
	return &selectSession{
		logger:  logger,
		scene:   planningscene.NewScene(model.Name(), model),
		manager: manager,
	}, nil
}

// run selects a sampler, draws the samples and writes the report.
func (s *selectSession) run(
	out io.Writer,
	group string,
	constraints kinematicconstraints.Constraints,
	samples int,
	seed int64,
	parallel int,
	defaultOnly bool,
) error {
	selectFn := s.manager.SelectSampler
	if defaultOnly {
		selectFn = s.manager.SelectDefaultSampler
	}
	sampler, err := selectFn(s.scene, group, constraints)
	if err != nil {
		return errors.Wrapf(err, "cannot select a sampler for group %q", group)
	}
	printf(out, "sampler: %s", sampler)

	checker := kinematicconstraints.NewSet(s.scene.Model())
	if err := checker.Add(constraints, s.scene.Transforms()); err != nil {
		for _, e := range multierr.Errors(err) {
			s.logger.Warnw("constraint ignored when checking samples", "error", e)
		}
	}

	rows := make([]table.Row, samples)
	failed := make([]bool, samples)
	variables := sampler.ControlledVariables()
	var workers errgroup.Group
	workers.SetLimit(parallel)
	for i := 0; i < samples; i++ {
		i := i
		workers.Go(func() error {
			// one state and one source per draw
			rSeed := rand.New(rand.NewSource(seed + int64(i))) //nolint:gosec
			state := s.scene.CurrentState().Clone()
			row := table.Row{fmt.Sprintf("%d", i+1)}
			if err := sampler.Sample(state, rSeed); err != nil {
				failed[i] = true
				for range variables {
					row = append(row, "")
				}
				rows[i] = append(row, "", "", err.Error())
				return nil
			}
			for _, v := range variables {
				value, err := state.Variable(v)
				if err != nil {
					return err
				}
				row = append(row, fmt.Sprintf("%.4f", value))
			}
			ok, dist := checker.Decide(state)
			rows[i] = append(row, fmt.Sprintf("%t", ok), fmt.Sprintf("%.4g", dist), "")
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return err
	}

	header := table.Row{"#"}
	for _, v := range variables {
		header = append(header, v)
	}
	header = append(header, "Satisfied", "Distance", "Error")

	t := table.NewWriter()
	t.AppendHeader(header)
	t.AppendRows(rows)
	printf(out, "%s", t.Render())

	if failures := lo.Count(failed, true); samples > 0 && failures == samples {
		return errors.Errorf("all %d samples failed", samples)
	}
	return nil
}

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}
