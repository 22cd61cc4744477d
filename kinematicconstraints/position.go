package kinematicconstraints

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/ipa-fxm-rc/moveit-core/referenceframe"
	spatial "github.com/ipa-fxm-rc/moveit-core/spatialmath"
)

const defaultEpsilon = 1e-9

// PositionConstraint keeps a point on a link inside a region.
type PositionConstraint struct {
	model *referenceframe.Model

	enabled bool
	link    string
	offset  r3.Vector
	region  *Region
	weight  float64
}

// NewPositionConstraint returns an unconfigured position constraint for a model.
func NewPositionConstraint(model *referenceframe.Model) *PositionConstraint {
	return &PositionConstraint{model: model}
}

// Configure validates a spec, resolving its header frame through tf. On error the constraint is
// left disabled.
func (c *PositionConstraint) Configure(spec PositionConstraintSpec, tf *referenceframe.Transforms) error {
	*c = PositionConstraint{model: c.model}

	if !c.model.HasLink(spec.LinkName) {
		return referenceframe.NewUnknownLinkError(spec.LinkName)
	}
	frame, err := tf.Transform(spec.FrameID)
	if err != nil {
		return errors.Wrapf(err, "position constraint on %q", spec.LinkName)
	}
	region, err := newRegion(spec.Region, frame)
	if err != nil {
		return errors.Wrapf(err, "position constraint on %q", spec.LinkName)
	}

	c.link = spec.LinkName
	c.offset = spec.TargetPointOffset
	c.region = region
	c.weight = spec.Weight
	c.enabled = true
	return nil
}

// Enabled reports whether the last Configure succeeded.
func (c *PositionConstraint) Enabled() bool {
	return c.enabled
}

// LinkName returns the constrained link.
func (c *PositionConstraint) LinkName() string {
	return c.link
}

// Offset returns the constrained point in the link frame.
func (c *PositionConstraint) Offset() r3.Vector {
	return c.offset
}

// HasLinkOffset reports whether the constrained point differs from the link origin.
func (c *PositionConstraint) HasLinkOffset() bool {
	return c.offset.Norm() > defaultEpsilon
}

// Region returns the target region in the root frame.
func (c *PositionConstraint) Region() *Region {
	return c.region
}

// Weight returns the constraint weight.
func (c *PositionConstraint) Weight() float64 {
	return c.weight
}

// Decide reports whether the state satisfies the constraint and the distance of the constrained
// point from the region center.
func (c *PositionConstraint) Decide(state *referenceframe.RobotState) (bool, float64) {
	if !c.enabled {
		return true, 0
	}
	pose, err := state.LinkPose(c.link)
	if err != nil {
		return false, math.Inf(1)
	}
	pt := spatial.TransformPoint(pose, c.offset)
	return c.region.Contains(pt), pt.Sub(c.region.Center()).Norm()
}
