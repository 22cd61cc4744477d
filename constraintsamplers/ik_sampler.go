package constraintsamplers

import (
	"fmt"
	"math/rand"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/num/quat"

	"github.com/ipa-fxm-rc/moveit-core/kinematicconstraints"
	"github.com/ipa-fxm-rc/moveit-core/referenceframe"
	spatial "github.com/ipa-fxm-rc/moveit-core/spatialmath"
)

const defaultIKAttempts = 10

// SamplingPose is the goal region of an IK sampler: a position constraint, an orientation
// constraint, or both on the same link.
type SamplingPose struct {
	Position    *kinematicconstraints.PositionConstraint
	Orientation *kinematicconstraints.OrientationConstraint
}

// Link returns the constrained link, or "" when the pose is empty.
func (p SamplingPose) Link() string {
	if p.Position != nil {
		return p.Position.LinkName()
	}
	if p.Orientation != nil {
		return p.Orientation.LinkName()
	}
	return ""
}

// IKSampler draws goal poses from a sampling pose and turns them into group states with the
// group's IK solver.
type IKSampler struct {
	group    *referenceframe.JointGroup
	attempts int
	alloc    referenceframe.IKSolverAllocator

	configured bool
	pose       SamplingPose
	solver     referenceframe.IKSolver
	volume     float64
}

// IKSamplerOption configures an IKSampler.
type IKSamplerOption func(*IKSampler)

// WithAttempts sets how many goal poses Sample tries before giving up.
func WithAttempts(attempts int) IKSamplerOption {
	return func(s *IKSampler) {
		if attempts > 0 {
			s.attempts = attempts
		}
	}
}

// WithSolverAllocator makes Configure allocate the solver with alloc instead of the group's own
// IK allocator. A nil alloc keeps the group's.
func WithSolverAllocator(alloc referenceframe.IKSolverAllocator) IKSamplerOption {
	return func(s *IKSampler) {
		s.alloc = alloc
	}
}

// NewIKSampler returns an unconfigured IK sampler for a group of the scene's model.
func NewIKSampler(scene Scene, groupName string, opts ...IKSamplerOption) (*IKSampler, error) {
	group, err := lookupGroup(scene, groupName)
	if err != nil {
		return nil, err
	}
	s := &IKSampler{group: group, attempts: defaultIKAttempts}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Configure validates the sampling pose against the group and allocates its IK solver.
func (s *IKSampler) Configure(pose SamplingPose) error {
	*s = IKSampler{group: s.group, attempts: s.attempts, alloc: s.alloc}

	if pose.Position == nil && pose.Orientation == nil {
		return errors.New("sampling pose has neither a position nor an orientation constraint")
	}
	if (pose.Position != nil && !pose.Position.Enabled()) || (pose.Orientation != nil && !pose.Orientation.Enabled()) {
		return errors.New("sampling pose holds an unconfigured constraint")
	}
	if pose.Position != nil && pose.Orientation != nil && pose.Position.LinkName() != pose.Orientation.LinkName() {
		return errors.Errorf("position constraint on %q and orientation constraint on %q are on different links",
			pose.Position.LinkName(), pose.Orientation.LinkName())
	}
	link := pose.Link()
	if !s.group.HasLinkModel(link) {
		return errors.Errorf("link %q is not part of group %q", link, s.group.Name())
	}
	if pose.Position != nil && pose.Position.HasLinkOffset() && pose.Orientation == nil {
		return errors.Errorf("position constraint on %q has a link offset but no orientation constraint", link)
	}

	alloc := s.alloc
	if alloc == nil {
		alloc, _ = s.group.SolverAllocators()
	}
	if alloc == nil {
		return errors.Errorf("group %q has no ik solver", s.group.Name())
	}
	solver, err := alloc(s.group)
	if err != nil {
		return errors.Wrapf(err, "cannot allocate ik solver for group %q", s.group.Name())
	}

	volume := 1.
	if pose.Position != nil {
		volume *= pose.Position.Region().Volume()
	}
	if pose.Orientation != nil {
		x, y, z := pose.Orientation.Tolerances()
		volume *= x * y * z
	}

	s.pose = pose
	s.solver = solver
	s.volume = volume
	s.configured = true
	return nil
}

// Name returns "ik".
func (s *IKSampler) Name() string {
	return "ik"
}

// GroupName returns the group the sampler was built for.
func (s *IKSampler) GroupName() string {
	return s.group.Name()
}

// ControlledVariables returns every variable of the group.
func (s *IKSampler) ControlledVariables() []string {
	return s.group.VariableNames()
}

// Link returns the link whose pose is sampled.
func (s *IKSampler) Link() string {
	return s.pose.Link()
}

// SamplingPose returns the configured goal region.
func (s *IKSampler) SamplingPose() SamplingPose {
	return s.pose
}

// SamplingVolume is the region volume times the product of the orientation tolerances, using
// whichever parts are present. Smaller means tighter.
func (s *IKSampler) SamplingVolume() float64 {
	return s.volume
}

// Attempts returns the number of goal poses tried per Sample call.
func (s *IKSampler) Attempts() int {
	return s.attempts
}

// Sample draws goal poses and solves for them, seeded with the state's group values, until a
// solution satisfies the sampling pose.
func (s *IKSampler) Sample(state *referenceframe.RobotState, rSeed *rand.Rand) error {
	if !s.configured {
		return ErrNotConfigured
	}

	var solveErrs error
	for attempt := 0; attempt < s.attempts; attempt++ {
		goal := s.drawGoal(rSeed)
		values, err := s.solver.Solve(goal, state, rSeed)
		if err != nil {
			if !errors.Is(err, referenceframe.ErrNoSolution) {
				solveErrs = multierr.Append(solveErrs, err)
			}
			continue
		}
		candidate := state.Clone()
		if err := candidate.SetGroupValues(s.group, values); err != nil {
			return err
		}
		if !s.satisfied(candidate) {
			continue
		}
		return state.CopyFrom(candidate)
	}
	return multierr.Combine(
		errors.Wrapf(ErrNoIKSolution, "group %q link %q after %d attempts", s.group.Name(), s.Link(), s.attempts),
		solveErrs,
	)
}

func (s *IKSampler) satisfied(state *referenceframe.RobotState) bool {
	if s.pose.Position != nil {
		if ok, _ := s.pose.Position.Decide(state); !ok {
			return false
		}
	}
	if s.pose.Orientation != nil {
		if ok, _ := s.pose.Orientation.Decide(state); !ok {
			return false
		}
	}
	return true
}

// drawGoal samples an orientation within the tolerances and a point within the region. With a
// link offset the point is moved back to the link origin using the sampled orientation.
func (s *IKSampler) drawGoal(rSeed *rand.Rand) referenceframe.IKGoal {
	goal := referenceframe.IKGoal{Link: s.Link()}
	if oc := s.pose.Orientation; oc != nil {
		x, y, z := oc.Tolerances()
		perturb := &spatial.EulerAngles{
			Roll:  (2*rSeed.Float64() - 1) * x,
			Pitch: (2*rSeed.Float64() - 1) * y,
			Yaw:   (2*rSeed.Float64() - 1) * z,
		}
		goal.Orientation = spatial.NewOrientationFromQuat(quat.Mul(oc.DesiredOrientation().Quaternion(), perturb.Quaternion()))
	}
	if pc := s.pose.Position; pc != nil {
		pt := pc.Region().Sample(rSeed)
		if pc.HasLinkOffset() {
			pt = pt.Sub(spatial.RotatePoint(goal.Orientation.Quaternion(), pc.Offset()))
		}
		goal.Position = &r3.Vector{X: pt.X, Y: pt.Y, Z: pt.Z}
	}
	return goal
}

func (s *IKSampler) String() string {
	return fmt.Sprintf("ik(%s)@%s v=%.4g", s.group.Name(), s.Link(), s.volume)
}
