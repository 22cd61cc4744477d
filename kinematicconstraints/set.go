package kinematicconstraints

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/ipa-fxm-rc/moveit-core/referenceframe"
)

// Set is a configured collection of constraints that can check a state against all of them.
type Set struct {
	model        *referenceframe.Model
	joints       []*JointConstraint
	positions    []*PositionConstraint
	orientations []*OrientationConstraint
}

// NewSet returns an empty set for a model.
func NewSet(model *referenceframe.Model) *Set {
	return &Set{model: model}
}

// Add configures every constraint in c. Constraints that fail to configure are skipped and their
// errors combined in the result.
func (s *Set) Add(c Constraints, tf *referenceframe.Transforms) error {
	var errs error
	for i, spec := range c.JointConstraints {
		jc := NewJointConstraint(s.model)
		if err := jc.Configure(spec); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "joint constraint %d", i))
			continue
		}
		s.joints = append(s.joints, jc)
	}
	for i, spec := range c.PositionConstraints {
		pc := NewPositionConstraint(s.model)
		if err := pc.Configure(spec, tf); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "position constraint %d", i))
			continue
		}
		s.positions = append(s.positions, pc)
	}
	for i, spec := range c.OrientationConstraints {
		oc := NewOrientationConstraint(s.model)
		if err := oc.Configure(spec, tf); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "orientation constraint %d", i))
			continue
		}
		s.orientations = append(s.orientations, oc)
	}
	return errs
}

// Empty reports whether no constraint is configured.
func (s *Set) Empty() bool {
	return len(s.joints) == 0 && len(s.positions) == 0 && len(s.orientations) == 0
}

// JointConstraints returns the configured joint constraints.
func (s *Set) JointConstraints() []*JointConstraint {
	return s.joints
}

// PositionConstraints returns the configured position constraints.
func (s *Set) PositionConstraints() []*PositionConstraint {
	return s.positions
}

// OrientationConstraints returns the configured orientation constraints.
func (s *Set) OrientationConstraints() []*OrientationConstraint {
	return s.orientations
}

// Decide reports whether the state satisfies every constraint and the summed distance.
func (s *Set) Decide(state *referenceframe.RobotState) (bool, float64) {
	ok, total := true, 0.
	for _, c := range s.joints {
		sat, d := c.Decide(state)
		ok, total = ok && sat, total+d
	}
	for _, c := range s.positions {
		sat, d := c.Decide(state)
		ok, total = ok && sat, total+d
	}
	for _, c := range s.orientations {
		sat, d := c.Decide(state)
		ok, total = ok && sat, total+d
	}
	return ok, total
}
