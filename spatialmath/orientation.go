package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Orientation is an interface used to express the different parameterizations of the orientation
// of a rigid object or a frame of reference in 3D Euclidean space.
type Orientation interface {
	AxisAngles() *R4AA
	Quaternion() quat.Number
	EulerAngles() *EulerAngles
}

type quaternion quat.Number

// NewZeroOrientation returns an orientation which signifies no rotation.
func NewZeroOrientation() Orientation {
	return &quaternion{1, 0, 0, 0}
}

// NewOrientationFromQuat normalizes q and wraps it as an Orientation. A zero quaternion yields the
// zero orientation.
func NewOrientationFromQuat(q quat.Number) Orientation {
	n := quat.Abs(q)
	if n == 0 {
		return NewZeroOrientation()
	}
	o := quaternion(quat.Scale(1/n, q))
	return &o
}

func (q *quaternion) AxisAngles() *R4AA {
	r4 := QuatToR4AA(q.Quaternion())
	return &r4
}

func (q *quaternion) Quaternion() quat.Number {
	return quat.Number(*q)
}

func (q *quaternion) EulerAngles() *EulerAngles {
	return QuatToEulerAngles(q.Quaternion())
}

// OrientationAlmostEqual will return a bool describing whether 2 orientations are approximately the same.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	return QuaternionAlmostEqual(o1.Quaternion(), o2.Quaternion(), 1e-5)
}

// OrientationBetween returns the orientation representing the difference between the two given
// Orientations, expressed in the frame of o1: o2 = o1 * between.
func OrientationBetween(o1, o2 Orientation) Orientation {
	q := quaternion(quat.Mul(quat.Conj(o1.Quaternion()), o2.Quaternion()))
	return &q
}

// QuaternionAlmostEqual is an equality test for two quaternions. q and -q describe the same rotation.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	same := math.Abs(a.Real-b.Real) < tol &&
		math.Abs(a.Imag-b.Imag) < tol &&
		math.Abs(a.Jmag-b.Jmag) < tol &&
		math.Abs(a.Kmag-b.Kmag) < tol
	flipped := math.Abs(a.Real+b.Real) < tol &&
		math.Abs(a.Imag+b.Imag) < tol &&
		math.Abs(a.Jmag+b.Jmag) < tol &&
		math.Abs(a.Kmag+b.Kmag) < tol
	return same || flipped
}

// Norm returns the norm of the imaginary part of a quaternion.
func Norm(q quat.Number) float64 {
	return math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
}

// RotatePoint rotates the point p by the unit quaternion q.
func RotatePoint(q quat.Number, p r3.Vector) r3.Vector {
	pq := quat.Number{Imag: p.X, Jmag: p.Y, Kmag: p.Z}
	res := quat.Mul(quat.Mul(q, pq), quat.Conj(q))
	return r3.Vector{X: res.Imag, Y: res.Jmag, Z: res.Kmag}
}

// QuatToR3AA converts a quat to an R3 axis angle whose length is the rotation angle in (-pi, pi].
func QuatToR3AA(q quat.Number) r3.Vector {
	r4 := QuatToR4AA(q)
	return r4.ToR3()
}
