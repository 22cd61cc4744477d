// Package kinematicconstraints turns raw joint, position and orientation constraint
// specifications into configured constraint objects that can be evaluated against robot states.
package kinematicconstraints

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/num/quat"
)

// JointConstraintSpec restricts one variable to [Position-ToleranceBelow, Position+ToleranceAbove].
// JointName is a variable name; for single-DOF joints that is the joint name.
type JointConstraintSpec struct {
	JointName      string  `json:"joint_name"`
	Position       float64 `json:"position"`
	ToleranceAbove float64 `json:"tolerance_above"`
	ToleranceBelow float64 `json:"tolerance_below"`
	Weight         float64 `json:"weight,omitempty"`
}

// RegionShape names a bounding region primitive.
type RegionShape string

// The supported region shapes.
const (
	SphereRegion RegionShape = "sphere"
	BoxRegion    RegionShape = "box"
)

// RegionSpec is a bounding region expressed in a constraint's header frame. A sphere has one
// dimension, its radius; a box has three full side lengths.
type RegionSpec struct {
	Shape      RegionShape `json:"shape"`
	Dimensions []float64   `json:"dimensions"`
	Center     r3.Vector   `json:"center"`
}

// PositionConstraintSpec requires a point on a link, TargetPointOffset in the link frame, to lie
// inside a region.
type PositionConstraintSpec struct {
	LinkName          string     `json:"link_name"`
	FrameID           string     `json:"frame_id,omitempty"`
	TargetPointOffset r3.Vector  `json:"target_point_offset"`
	Region            RegionSpec `json:"region"`
	Weight            float64    `json:"weight,omitempty"`
}

// QuaternionSpec is a raw, not necessarily normalized, quaternion.
type QuaternionSpec struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quat returns the gonum quaternion.
func (q QuaternionSpec) Quat() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

// OrientationConstraintSpec requires a link's orientation to stay within per-axis tolerances of a
// target orientation expressed in the header frame.
type OrientationConstraintSpec struct {
	LinkName               string         `json:"link_name"`
	FrameID                string         `json:"frame_id,omitempty"`
	Orientation            QuaternionSpec `json:"orientation"`
	AbsoluteXAxisTolerance float64        `json:"absolute_x_axis_tolerance"`
	AbsoluteYAxisTolerance float64        `json:"absolute_y_axis_tolerance"`
	AbsoluteZAxisTolerance float64        `json:"absolute_z_axis_tolerance"`
	Weight                 float64        `json:"weight,omitempty"`
}

// Constraints is an unordered collection of raw constraint specifications.
type Constraints struct {
	Name                   string                      `json:"name,omitempty"`
	JointConstraints       []JointConstraintSpec       `json:"joint_constraints,omitempty"`
	PositionConstraints    []PositionConstraintSpec    `json:"position_constraints,omitempty"`
	OrientationConstraints []OrientationConstraintSpec `json:"orientation_constraints,omitempty"`
}

// Empty reports whether there are no constraints at all.
func (c Constraints) Empty() bool {
	return len(c.JointConstraints) == 0 && len(c.PositionConstraints) == 0 && len(c.OrientationConstraints) == 0
}

// String summarizes the constrained joints and links.
func (c Constraints) String() string {
	joints := lo.Map(c.JointConstraints, func(j JointConstraintSpec, _ int) string { return j.JointName })
	positions := lo.Map(c.PositionConstraints, func(p PositionConstraintSpec, _ int) string { return p.LinkName })
	orientations := lo.Map(c.OrientationConstraints, func(o OrientationConstraintSpec, _ int) string { return o.LinkName })
	return fmt.Sprintf("joints=[%s] positions=[%s] orientations=[%s]",
		strings.Join(joints, " "), strings.Join(positions, " "), strings.Join(orientations, " "))
}

// UnmarshalConstraintsJSON parses a JSON constraint set.
func UnmarshalConstraintsJSON(data []byte) (Constraints, error) {
	var c Constraints
	if err := json.Unmarshal(data, &c); err != nil {
		return Constraints{}, errors.Wrap(err, "failed to unmarshal constraints")
	}
	return c, nil
}

// ReadConstraintsFile reads a JSON constraint set from disk.
func ReadConstraintsFile(path string) (Constraints, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return Constraints{}, errors.Wrap(err, "failed to read constraints file")
	}
	return UnmarshalConstraintsJSON(data)
}
