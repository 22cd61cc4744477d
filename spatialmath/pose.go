package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a 6dof pose, position and orientation, with respect to the origin.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

type basicPose struct {
	point       r3.Vector
	orientation quat.Number
}

// NewZeroPose returns a pose at (0,0,0) with the same orientation as whatever frame it is placed in.
func NewZeroPose() Pose {
	return &basicPose{orientation: quat.Number{Real: 1}}
}

// NewPose returns a pose at the given point with the given orientation. A nil orientation is the
// zero orientation.
func NewPose(p r3.Vector, o Orientation) Pose {
	if o == nil {
		o = NewZeroOrientation()
	}
	return &basicPose{point: p, orientation: NewOrientationFromQuat(o.Quaternion()).Quaternion()}
}

// NewPoseFromPoint returns a pose at the given point with the zero orientation.
func NewPoseFromPoint(p r3.Vector) Pose {
	return &basicPose{point: p, orientation: quat.Number{Real: 1}}
}

// NewPoseFromOrientation returns a pose at the origin with the given orientation.
func NewPoseFromOrientation(o Orientation) Pose {
	return NewPose(r3.Vector{}, o)
}

func (p *basicPose) Point() r3.Vector {
	return p.point
}

func (p *basicPose) Orientation() Orientation {
	o := quaternion(p.orientation)
	return &o
}

func (p *basicPose) String() string {
	r4 := QuatToR4AA(p.orientation)
	return fmt.Sprintf("{X:%.4f Y:%.4f Z:%.4f TH:%.4f RX:%.4f RY:%.4f RZ:%.4f}",
		p.point.X, p.point.Y, p.point.Z, r4.Theta, r4.RX, r4.RY, r4.RZ)
}

// Compose treats Poses as functions A(x) and B(x), and produces a new function C(x) = A(B(x)).
// Put another way, b is expressed in the frame of a.
func Compose(a, b Pose) Pose {
	qa := a.Orientation().Quaternion()
	return &basicPose{
		point:       a.Point().Add(RotatePoint(qa, b.Point())),
		orientation: quat.Mul(qa, b.Orientation().Quaternion()),
	}
}

// PoseInverse returns a pose such that Compose(p, PoseInverse(p)) is the zero pose.
func PoseInverse(p Pose) Pose {
	inv := quat.Conj(p.Orientation().Quaternion())
	return &basicPose{
		point:       RotatePoint(inv, p.Point()).Mul(-1),
		orientation: inv,
	}
}

// PoseBetween returns the pose of b expressed in the frame of a.
func PoseBetween(a, b Pose) Pose {
	return Compose(PoseInverse(a), b)
}

// TransformPoint applies the pose to a point expressed in the pose's frame.
func TransformPoint(p Pose, pt r3.Vector) r3.Vector {
	return p.Point().Add(RotatePoint(p.Orientation().Quaternion(), pt))
}

// PoseAlmostEqual will return a bool describing whether 2 poses are approximately the same.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, 1e-6)
}

// PoseAlmostEqualEps will return a bool describing whether 2 poses are approximately the same
// within the given tolerance.
func PoseAlmostEqualEps(a, b Pose, epsilon float64) bool {
	return a.Point().Sub(b.Point()).Norm() < epsilon &&
		QuaternionAlmostEqual(a.Orientation().Quaternion(), b.Orientation().Quaternion(), epsilon)
}
