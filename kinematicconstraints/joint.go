package kinematicconstraints

import (
	"math"

	"github.com/pkg/errors"

	"github.com/ipa-fxm-rc/moveit-core/referenceframe"
)

// JointConstraint keeps one variable inside a band around a target position.
type JointConstraint struct {
	model *referenceframe.Model

	enabled    bool
	variable   string
	position   float64
	above      float64
	below      float64
	continuous bool
	band       referenceframe.Limit
	weight     float64
}

// NewJointConstraint returns an unconfigured joint constraint for a model.
func NewJointConstraint(model *referenceframe.Model) *JointConstraint {
	return &JointConstraint{model: model}
}

// Configure validates a spec against the model. On error the constraint is left disabled.
// Bands of bounded variables are intersected with the variable bounds; continuous joints wrap and
// ignore bounds.
func (c *JointConstraint) Configure(spec JointConstraintSpec) error {
	*c = JointConstraint{model: c.model}

	if _, ok := c.model.VariableIndex(spec.JointName); !ok {
		if j, ok := c.model.Joint(spec.JointName); ok && len(j.Variables()) != 1 {
			return errors.Errorf("joint %q has %d variables, constrain one of %v", spec.JointName, len(j.Variables()), j.Variables())
		}
		return referenceframe.NewUnknownVariableError(spec.JointName)
	}
	for _, v := range []float64{spec.Position, spec.ToleranceAbove, spec.ToleranceBelow} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Errorf("joint constraint on %q has a non-finite value", spec.JointName)
		}
	}
	if spec.ToleranceAbove < 0 || spec.ToleranceBelow < 0 {
		return errors.Errorf("joint constraint on %q has negative tolerance", spec.JointName)
	}

	joint, _ := c.model.VariableJoint(spec.JointName)
	c.variable = spec.JointName
	c.above = spec.ToleranceAbove
	c.below = spec.ToleranceBelow
	c.weight = spec.Weight
	c.continuous = joint.IsContinuous()
	if c.continuous {
		c.position = referenceframe.WrapAngle(spec.Position)
		c.band = referenceframe.Limit{Min: c.position - c.below, Max: c.position + c.above}
	} else {
		c.position = spec.Position
		bounds, _ := c.model.VariableBounds(spec.JointName)
		band, ok := referenceframe.Limit{Min: c.position - c.below, Max: c.position + c.above}.Intersect(bounds)
		if !ok {
			return errors.Errorf("joint constraint on %q at %v does not overlap bounds [%v, %v]",
				spec.JointName, spec.Position, bounds.Min, bounds.Max)
		}
		c.band = band
	}
	c.enabled = true
	return nil
}

// Enabled reports whether the last Configure succeeded.
func (c *JointConstraint) Enabled() bool {
	return c.enabled
}

// VariableName returns the constrained variable.
func (c *JointConstraint) VariableName() string {
	return c.variable
}

// Position returns the target value.
func (c *JointConstraint) Position() float64 {
	return c.position
}

// Continuous reports whether values drawn from Band must be wrapped.
func (c *JointConstraint) Continuous() bool {
	return c.continuous
}

// Band returns the allowed interval. For continuous joints it may extend past [-pi, pi].
func (c *JointConstraint) Band() referenceframe.Limit {
	return c.band
}

// Weight returns the constraint weight.
func (c *JointConstraint) Weight() float64 {
	return c.weight
}

// Decide reports whether the state satisfies the constraint and how far the variable is from
// the target.
func (c *JointConstraint) Decide(state *referenceframe.RobotState) (bool, float64) {
	if !c.enabled {
		return true, 0
	}
	v, err := state.Variable(c.variable)
	if err != nil {
		return false, math.Inf(1)
	}
	if c.continuous {
		if c.above+c.below >= 2*math.Pi {
			return true, math.Abs(referenceframe.WrapAngle(v - c.position))
		}
		diff := referenceframe.WrapAngle(v - c.position)
		return diff <= c.above+defaultEpsilon && diff >= -c.below-defaultEpsilon, math.Abs(diff)
	}
	return v >= c.band.Min-defaultEpsilon && v <= c.band.Max+defaultEpsilon, math.Abs(v - c.position)
}
