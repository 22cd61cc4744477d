package referenceframe

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	spatial "github.com/ipa-fxm-rc/moveit-core/spatialmath"
)

// JointType is the kind of motion a joint allows.
type JointType string

// The supported joint types.
const (
	RevoluteJoint   JointType = "revolute"
	ContinuousJoint JointType = "continuous"
	PrismaticJoint  JointType = "prismatic"
	PlanarJoint     JointType = "planar"
	FixedJoint      JointType = "fixed"
)

// Joint connects a parent link to a child link. Single-DOF joints have one variable named after
// the joint; a planar joint has three, "<name>/x", "<name>/y" and "<name>/theta".
type Joint struct {
	name   string
	typ    JointType
	parent string
	child  string
	axis   r3.Vector
	origin spatial.Pose
	limits []Limit

	variables []string
	offset    int
}

// NewJoint creates a joint. limits must have one entry per variable; continuous joints are
// always limited to [-pi, pi] and fixed joints take no limits.
func NewJoint(name string, typ JointType, parent, child string, axis r3.Vector, origin spatial.Pose, limits []Limit) (*Joint, error) {
	if name == "" {
		return nil, errors.New("joint must have a name")
	}
	if origin == nil {
		origin = spatial.NewZeroPose()
	}
	j := &Joint{name: name, typ: typ, parent: parent, child: child, origin: origin}

	switch typ {
	case RevoluteJoint, ContinuousJoint, PrismaticJoint:
		if axis.Norm() == 0 {
			return nil, errors.Errorf("joint %q needs a non-zero axis", name)
		}
		j.axis = axis.Normalize()
		j.variables = []string{name}
	case PlanarJoint:
		j.variables = []string{name + "/x", name + "/y", name + "/theta"}
	case FixedJoint:
	default:
		return nil, errors.Errorf("joint %q has unsupported type %q", name, typ)
	}

	switch {
	case typ == ContinuousJoint:
		j.limits = []Limit{{Min: -math.Pi, Max: math.Pi}}
	case len(limits) != len(j.variables):
		return nil, errors.Wrapf(NewIncorrectDoFError(len(limits), len(j.variables)), "joint %q limits", name)
	default:
		for _, l := range limits {
			if math.IsNaN(l.Min) || math.IsNaN(l.Max) || l.Min > l.Max {
				return nil, errors.Errorf("joint %q has invalid limit [%v, %v]", name, l.Min, l.Max)
			}
		}
		j.limits = append([]Limit(nil), limits...)
	}
	return j, nil
}

// Name returns the joint name.
func (j *Joint) Name() string { return j.name }

// Type returns the joint type.
func (j *Joint) Type() JointType { return j.typ }

// ParentLink returns the name of the link this joint hangs from.
func (j *Joint) ParentLink() string { return j.parent }

// ChildLink returns the name of the link this joint moves.
func (j *Joint) ChildLink() string { return j.child }

// Variables returns the joint's variable names.
func (j *Joint) Variables() []string { return append([]string(nil), j.variables...) }

// Limits returns the joint's variable limits.
func (j *Joint) Limits() []Limit { return append([]Limit(nil), j.limits...) }

// IsContinuous reports whether the joint's single variable wraps around.
func (j *Joint) IsContinuous() bool { return j.typ == ContinuousJoint }

// Transform returns the pose of the child link in the parent link's frame for the given values.
func (j *Joint) Transform(values []float64) (spatial.Pose, error) {
	if len(values) != len(j.variables) {
		return nil, NewIncorrectDoFError(len(values), len(j.variables))
	}
	var motion spatial.Pose
	switch j.typ {
	case RevoluteJoint, ContinuousJoint:
		motion = spatial.NewPoseFromOrientation(&spatial.R4AA{Theta: values[0], RX: j.axis.X, RY: j.axis.Y, RZ: j.axis.Z})
	case PrismaticJoint:
		motion = spatial.NewPoseFromPoint(j.axis.Mul(values[0]))
	case PlanarJoint:
		motion = spatial.NewPose(r3.Vector{X: values[0], Y: values[1]}, &spatial.R4AA{Theta: values[2], RZ: 1})
	default:
		return j.origin, nil
	}
	return spatial.Compose(j.origin, motion), nil
}
