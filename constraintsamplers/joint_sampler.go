package constraintsamplers

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/pkg/errors"

	"github.com/ipa-fxm-rc/moveit-core/kinematicconstraints"
	"github.com/ipa-fxm-rc/moveit-core/referenceframe"
)

// JointSampler draws uniformly from the bands of joint constraints on a group's variables and
// leaves every other variable alone.
type JointSampler struct {
	group *referenceframe.JointGroup

	configured bool
	variables  []string
	bands      []referenceframe.Limit
	continuous []bool
}

// NewJointSampler returns an unconfigured joint sampler for a group of the scene's model.
func NewJointSampler(scene Scene, groupName string) (*JointSampler, error) {
	group, err := lookupGroup(scene, groupName)
	if err != nil {
		return nil, err
	}
	return &JointSampler{group: group}, nil
}

// Configure sets the constraints to sample from. Every constraint must be configured and target a
// variable of the group. Several constraints on one variable are intersected and the intersection
// must not be empty.
func (s *JointSampler) Configure(constraints []*kinematicconstraints.JointConstraint) error {
	*s = JointSampler{group: s.group}
	if len(constraints) == 0 {
		return errors.Errorf("joint sampler for %q needs at least one joint constraint", s.group.Name())
	}

	bands := map[string]referenceframe.Limit{}
	continuous := map[string]bool{}
	for _, c := range constraints {
		if !c.Enabled() {
			return errors.Errorf("joint sampler for %q was given an unconfigured constraint", s.group.Name())
		}
		name := c.VariableName()
		if !s.group.HasVariable(name) {
			return errors.Errorf("variable %q is not part of group %q", name, s.group.Name())
		}
		band := c.Band()
		if prev, ok := bands[name]; ok {
			if c.Continuous() {
				// bring the band to the same turn as the previous one before intersecting
				shift := 2 * math.Pi * math.Round(((prev.Min+prev.Max)/2-(band.Min+band.Max)/2)/(2*math.Pi))
				band = referenceframe.Limit{Min: band.Min + shift, Max: band.Max + shift}
			}
			merged, ok := prev.Intersect(band)
			if !ok {
				return errors.Errorf("joint constraints on %q do not overlap", name)
			}
			band = merged
		}
		bands[name] = band
		continuous[name] = c.Continuous()
	}

	for _, name := range s.group.VariableNames() {
		band, ok := bands[name]
		if !ok {
			continue
		}
		s.variables = append(s.variables, name)
		s.bands = append(s.bands, band)
		s.continuous = append(s.continuous, continuous[name])
	}
	s.configured = true
	return nil
}

// Name returns "joint".
func (s *JointSampler) Name() string {
	return "joint"
}

// GroupName returns the group the sampler was built for.
func (s *JointSampler) GroupName() string {
	return s.group.Name()
}

// ControlledVariables returns the constrained variables in group order.
func (s *JointSampler) ControlledVariables() []string {
	return append([]string(nil), s.variables...)
}

// Band returns the sampled interval of a controlled variable.
func (s *JointSampler) Band(variable string) (referenceframe.Limit, bool) {
	for i, name := range s.variables {
		if name == variable {
			return s.bands[i], true
		}
	}
	return referenceframe.Limit{}, false
}

// Sample draws every controlled variable uniformly from its band.
func (s *JointSampler) Sample(state *referenceframe.RobotState, rSeed *rand.Rand) error {
	if !s.configured {
		return ErrNotConfigured
	}
	values := make([]float64, len(s.variables))
	for i, band := range s.bands {
		values[i] = band.Sample(rSeed)
		if s.continuous[i] {
			values[i] = referenceframe.WrapAngle(values[i])
		}
	}
	for i, name := range s.variables {
		if err := state.SetVariable(name, values[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *JointSampler) String() string {
	return fmt.Sprintf("joint(%s){%s}", s.group.Name(), strings.Join(s.variables, ", "))
}
