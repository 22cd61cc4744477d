package kinematicconstraints

import (
	"math"

	"github.com/pkg/errors"

	"github.com/ipa-fxm-rc/moveit-core/referenceframe"
	spatial "github.com/ipa-fxm-rc/moveit-core/spatialmath"
)

// OrientationConstraint keeps a link's orientation within roll, pitch and yaw tolerances of a
// target. The deviation is the rotation from the target to the actual orientation.
type OrientationConstraint struct {
	model *referenceframe.Model

	enabled    bool
	link       string
	desired    spatial.Orientation
	tolerances [3]float64
	weight     float64
}

// NewOrientationConstraint returns an unconfigured orientation constraint for a model.
func NewOrientationConstraint(model *referenceframe.Model) *OrientationConstraint {
	return &OrientationConstraint{model: model}
}

// Configure validates a spec, resolving its header frame through tf. On error the constraint is
// left disabled.
func (c *OrientationConstraint) Configure(spec OrientationConstraintSpec, tf *referenceframe.Transforms) error {
	*c = OrientationConstraint{model: c.model}

	if !c.model.HasLink(spec.LinkName) {
		return referenceframe.NewUnknownLinkError(spec.LinkName)
	}
	tols := [3]float64{spec.AbsoluteXAxisTolerance, spec.AbsoluteYAxisTolerance, spec.AbsoluteZAxisTolerance}
	for _, t := range tols {
		if math.IsNaN(t) || math.IsInf(t, 0) || t <= 0 {
			return errors.Errorf("orientation constraint on %q needs finite positive tolerances, got %v", spec.LinkName, tols)
		}
	}
	q := spec.Orientation.Quat()
	if q.Real == 0 && q.Imag == 0 && q.Jmag == 0 && q.Kmag == 0 {
		return errors.Errorf("orientation constraint on %q has a zero quaternion", spec.LinkName)
	}
	frame, err := tf.Transform(spec.FrameID)
	if err != nil {
		return errors.Wrapf(err, "orientation constraint on %q", spec.LinkName)
	}

	c.link = spec.LinkName
	c.desired = spatial.Compose(frame, spatial.NewPoseFromOrientation(spatial.NewOrientationFromQuat(q))).Orientation()
	c.tolerances = tols
	c.weight = spec.Weight
	c.enabled = true
	return nil
}

// Enabled reports whether the last Configure succeeded.
func (c *OrientationConstraint) Enabled() bool {
	return c.enabled
}

// LinkName returns the constrained link.
func (c *OrientationConstraint) LinkName() string {
	return c.link
}

// DesiredOrientation returns the target orientation in the root frame.
func (c *OrientationConstraint) DesiredOrientation() spatial.Orientation {
	return c.desired
}

// Tolerances returns the roll, pitch and yaw tolerances.
func (c *OrientationConstraint) Tolerances() (x, y, z float64) {
	return c.tolerances[0], c.tolerances[1], c.tolerances[2]
}

// Weight returns the constraint weight.
func (c *OrientationConstraint) Weight() float64 {
	return c.weight
}

// Decide reports whether the state satisfies the constraint and the summed absolute deviation.
func (c *OrientationConstraint) Decide(state *referenceframe.RobotState) (bool, float64) {
	if !c.enabled {
		return true, 0
	}
	pose, err := state.LinkPose(c.link)
	if err != nil {
		return false, math.Inf(1)
	}
	diff := spatial.OrientationBetween(c.desired, pose.Orientation()).EulerAngles()
	dev := [3]float64{math.Abs(diff.Roll), math.Abs(diff.Pitch), math.Abs(diff.Yaw)}
	ok := true
	for i, d := range dev {
		if d > c.tolerances[i]+defaultEpsilon {
			ok = false
		}
	}
	return ok, dev[0] + dev[1] + dev[2]
}
