package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// EulerAngles are three rotations applied about the moving X, then Y, then Z axes, so that
// R = Rx(Roll) * Ry(Pitch) * Rz(Yaw).
type EulerAngles struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// AxisAngles returns the orientation in axis angle representation.
func (ea *EulerAngles) AxisAngles() *R4AA {
	r4 := QuatToR4AA(ea.Quaternion())
	return &r4
}

// Quaternion returns orientation in quaternion representation.
func (ea *EulerAngles) Quaternion() quat.Number {
	qx := quat.Number{Real: math.Cos(ea.Roll / 2), Imag: math.Sin(ea.Roll / 2)}
	qy := quat.Number{Real: math.Cos(ea.Pitch / 2), Jmag: math.Sin(ea.Pitch / 2)}
	qz := quat.Number{Real: math.Cos(ea.Yaw / 2), Kmag: math.Sin(ea.Yaw / 2)}
	return quat.Mul(quat.Mul(qx, qy), qz)
}

// EulerAngles returns itself.
func (ea *EulerAngles) EulerAngles() *EulerAngles {
	return ea
}

// QuatToEulerAngles converts a unit quaternion to XYZ euler angles. The pitch is in [-pi/2, pi/2].
func QuatToEulerAngles(q quat.Number) *EulerAngles {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	r00 := 1 - 2*(y*y+z*z)
	r01 := 2 * (x*y - w*z)
	r02 := 2 * (x*z + w*y)
	r11 := 1 - 2*(x*x+z*z)
	r12 := 2 * (y*z - w*x)
	r21 := 2 * (y*z + w*x)
	r22 := 1 - 2*(x*x+y*y)

	pitch := math.Asin(math.Max(-1, math.Min(1, r02)))
	if math.Abs(r02) > 1-1e-9 {
		// gimbal lock, fold all of the remaining rotation into roll
		return &EulerAngles{Roll: math.Atan2(r21, r11), Pitch: pitch, Yaw: 0}
	}
	return &EulerAngles{
		Roll:  math.Atan2(-r12, r22),
		Pitch: pitch,
		Yaw:   math.Atan2(-r01, r00),
	}
}
