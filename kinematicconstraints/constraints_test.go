package kinematicconstraints

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.uber.org/multierr"
	"go.viam.com/test"

	"github.com/ipa-fxm-rc/moveit-core/referenceframe"
	spatial "github.com/ipa-fxm-rc/moveit-core/spatialmath"
)

func dualArm(t *testing.T) *referenceframe.Model {
	t.Helper()
	model, err := referenceframe.ParseModelJSONFile("../referenceframe/testjson/dual_arm.json", "")
	test.That(t, err, test.ShouldBeNil)
	return model
}

func TestReadConstraintsFile(t *testing.T) {
	c, err := ReadConstraintsFile("testdata/reach.json")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Name, test.ShouldEqual, "reach")
	test.That(t, c.Empty(), test.ShouldBeFalse)
	test.That(t, c.String(), test.ShouldEqual, "joints=[head_pan] positions=[left_tool_link] orientations=[left_tool_link]")
	test.That(t, c.PositionConstraints[0].Region.Shape, test.ShouldEqual, SphereRegion)

	test.That(t, Constraints{}.Empty(), test.ShouldBeTrue)

	_, err = ReadConstraintsFile("testdata/missing.json")
	test.That(t, err, test.ShouldNotBeNil)
	_, err = UnmarshalConstraintsJSON([]byte("{"))
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to unmarshal constraints")
}

func TestRegion(t *testing.T) {
	sphere, err := newRegion(RegionSpec{Shape: SphereRegion, Dimensions: []float64{2}, Center: r3.Vector{X: 1}}, spatial.NewZeroPose())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sphere.Volume(), test.ShouldAlmostEqual, 4./3.*math.Pi*8)
	test.That(t, sphere.Contains(r3.Vector{X: 2.9}), test.ShouldBeTrue)
	test.That(t, sphere.Contains(r3.Vector{X: -1.1}), test.ShouldBeFalse)

	frame := spatial.NewPoseFromPoint(r3.Vector{Z: 10})
	box, err := newRegion(RegionSpec{Shape: BoxRegion, Dimensions: []float64{1, 2, 4}}, frame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, box.Volume(), test.ShouldAlmostEqual, 8)
	test.That(t, box.Center(), test.ShouldResemble, r3.Vector{Z: 10})
	test.That(t, box.Contains(r3.Vector{X: 0.4, Y: 0.9, Z: 11.9}), test.ShouldBeTrue)
	test.That(t, box.Contains(r3.Vector{X: 0.6, Z: 10}), test.ShouldBeFalse)

	rSeed := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		test.That(t, sphere.Contains(sphere.Sample(rSeed)), test.ShouldBeTrue)
		test.That(t, box.Contains(box.Sample(rSeed)), test.ShouldBeTrue)
	}

	t.Run("sphere draws fill the volume", func(t *testing.T) {
		ball, err := newRegion(RegionSpec{Shape: SphereRegion, Dimensions: []float64{1}}, spatial.NewZeroPose())
		test.That(t, err, test.ShouldBeNil)
		const draws = 2000
		inner := 0
		for i := 0; i < draws; i++ {
			pt := ball.Sample(rSeed)
			test.That(t, pt.Norm(), test.ShouldBeLessThanOrEqualTo, 1+1e-12)
			if pt.Norm() < 0.5 {
				inner++
			}
		}
		// the inner half radius ball holds an eighth of the volume
		test.That(t, float64(inner)/draws, test.ShouldAlmostEqual, 0.125, 0.04)
	})

	for _, spec := range []RegionSpec{
		{Shape: SphereRegion, Dimensions: []float64{0}},
		{Shape: SphereRegion, Dimensions: []float64{1, 1}},
		{Shape: BoxRegion, Dimensions: []float64{1, 1}},
		{Shape: BoxRegion, Dimensions: []float64{1, math.NaN(), 1}},
		{Shape: "cone", Dimensions: []float64{1}},
	} {
		_, err := newRegion(spec, spatial.NewZeroPose())
		test.That(t, err, test.ShouldNotBeNil)
	}
}

func TestJointConstraint(t *testing.T) {
	model := dualArm(t)
	state := referenceframe.NewRobotState(model)

	t.Run("bounded band is clipped", func(t *testing.T) {
		jc := NewJointConstraint(model)
		err := jc.Configure(JointConstraintSpec{JointName: "head_pan", Position: 0.05, ToleranceAbove: 0.1, ToleranceBelow: 0.1})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, jc.Enabled(), test.ShouldBeTrue)
		test.That(t, jc.Band().Min, test.ShouldEqual, 0.0)
		test.That(t, jc.Band().Max, test.ShouldAlmostEqual, 0.15)

		ok, dist := jc.Decide(state)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, dist, test.ShouldAlmostEqual, 0.05)
		test.That(t, state.SetVariable("head_pan", 0.2), test.ShouldBeNil)
		ok, _ = jc.Decide(state)
		test.That(t, ok, test.ShouldBeFalse)
	})

	t.Run("continuous joints wrap", func(t *testing.T) {
		jc := NewJointConstraint(model)
		err := jc.Configure(JointConstraintSpec{JointName: "left_wrist", Position: math.Pi, ToleranceAbove: 0.2, ToleranceBelow: 0.2})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, jc.Continuous(), test.ShouldBeTrue)
		test.That(t, state.SetVariable("left_wrist", -math.Pi+0.1), test.ShouldBeNil)
		ok, dist := jc.Decide(state)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, dist, test.ShouldAlmostEqual, 0.1)
	})

	t.Run("planar variables by name", func(t *testing.T) {
		jc := NewJointConstraint(model)
		test.That(t, jc.Configure(JointConstraintSpec{JointName: "base_joint/x", Position: 1}), test.ShouldBeNil)
		test.That(t, jc.Band(), test.ShouldResemble, referenceframe.Limit{Min: 1, Max: 1})

		err := jc.Configure(JointConstraintSpec{JointName: "base_joint"})
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "has 3 variables")
		test.That(t, jc.Enabled(), test.ShouldBeFalse)
	})

	t.Run("invalid", func(t *testing.T) {
		jc := NewJointConstraint(model)
		test.That(t, jc.Configure(JointConstraintSpec{JointName: "nope"}), test.ShouldNotBeNil)
		test.That(t, jc.Configure(JointConstraintSpec{JointName: "left_elbow", ToleranceAbove: -1}), test.ShouldNotBeNil)
		test.That(t, jc.Configure(JointConstraintSpec{JointName: "left_elbow", Position: math.Inf(1)}), test.ShouldNotBeNil)
		err := jc.Configure(JointConstraintSpec{JointName: "head_pan", Position: 2, ToleranceAbove: 0.1, ToleranceBelow: 0.1})
		test.That(t, err.Error(), test.ShouldContainSubstring, "does not overlap bounds")
		ok, _ := jc.Decide(state)
		test.That(t, ok, test.ShouldBeTrue)
	})
}

func TestPositionConstraint(t *testing.T) {
	model := dualArm(t)
	tf := referenceframe.NewTransforms(model.RootLink())
	tf.SetTransform("table", spatial.NewPoseFromPoint(r3.Vector{X: 2}))
	state := referenceframe.NewRobotState(model)

	pc := NewPositionConstraint(model)
	err := pc.Configure(PositionConstraintSpec{
		LinkName: "left_hand",
		FrameID:  "table",
		Region:   RegionSpec{Shape: BoxRegion, Dimensions: []float64{0.4, 0.4, 0.4}, Center: r3.Vector{Y: 0.5}},
	}, tf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pc.LinkName(), test.ShouldEqual, "left_hand")
	test.That(t, pc.HasLinkOffset(), test.ShouldBeFalse)
	test.That(t, pc.Region().Center(), test.ShouldResemble, r3.Vector{X: 2, Y: 0.5})

	ok, dist := pc.Decide(state)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, dist, test.ShouldAlmostEqual, 0)

	err = pc.Configure(PositionConstraintSpec{
		LinkName:          "left_hand",
		TargetPointOffset: r3.Vector{X: 0.5},
		Region:            RegionSpec{Shape: SphereRegion, Dimensions: []float64{0.1}, Center: r3.Vector{X: 2, Y: 0.5}},
	}, tf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pc.HasLinkOffset(), test.ShouldBeTrue)
	ok, dist = pc.Decide(state)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, dist, test.ShouldAlmostEqual, 0.5)

	err = pc.Configure(PositionConstraintSpec{LinkName: "left_hand", FrameID: "shelf",
		Region: RegionSpec{Shape: SphereRegion, Dimensions: []float64{0.1}}}, tf)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, pc.Enabled(), test.ShouldBeFalse)
	err = pc.Configure(PositionConstraintSpec{LinkName: "nope",
		Region: RegionSpec{Shape: SphereRegion, Dimensions: []float64{0.1}}}, tf)
	test.That(t, err, test.ShouldNotBeNil)
	err = pc.Configure(PositionConstraintSpec{LinkName: "left_hand",
		Region: RegionSpec{Shape: SphereRegion, Dimensions: []float64{-1}}}, tf)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestOrientationConstraint(t *testing.T) {
	model := dualArm(t)
	tf := referenceframe.NewTransforms(model.RootLink())
	state := referenceframe.NewRobotState(model)

	oc := NewOrientationConstraint(model)
	spec := OrientationConstraintSpec{
		LinkName:               "left_hand",
		Orientation:            QuaternionSpec{W: 2},
		AbsoluteXAxisTolerance: 0.1,
		AbsoluteYAxisTolerance: 0.1,
		AbsoluteZAxisTolerance: 0.3,
	}
	test.That(t, oc.Configure(spec, tf), test.ShouldBeNil)
	x, y, z := oc.Tolerances()
	test.That(t, []float64{x, y, z}, test.ShouldResemble, []float64{0.1, 0.1, 0.3})
	test.That(t, spatial.OrientationAlmostEqual(oc.DesiredOrientation(), spatial.NewZeroOrientation()), test.ShouldBeTrue)

	ok, _ := oc.Decide(state)
	test.That(t, ok, test.ShouldBeTrue)

	test.That(t, state.SetVariable("left_wrist", 0.2), test.ShouldBeNil)
	ok, dist := oc.Decide(state)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, dist, test.ShouldAlmostEqual, 0.2)

	test.That(t, state.SetVariable("left_wrist", 0.4), test.ShouldBeNil)
	ok, _ = oc.Decide(state)
	test.That(t, ok, test.ShouldBeFalse)

	bad := spec
	bad.Orientation = QuaternionSpec{}
	test.That(t, oc.Configure(bad, tf), test.ShouldNotBeNil)
	bad = spec
	bad.AbsoluteYAxisTolerance = 0
	test.That(t, oc.Configure(bad, tf), test.ShouldNotBeNil)
	bad = spec
	bad.FrameID = "shelf"
	test.That(t, oc.Configure(bad, tf), test.ShouldNotBeNil)
	test.That(t, oc.Enabled(), test.ShouldBeFalse)
}

func TestSet(t *testing.T) {
	model := dualArm(t)
	tf := referenceframe.NewTransforms(model.RootLink())
	c, err := ReadConstraintsFile("testdata/reach.json")
	test.That(t, err, test.ShouldBeNil)

	c.JointConstraints = append(c.JointConstraints, JointConstraintSpec{JointName: "nope"})
	c.OrientationConstraints = append(c.OrientationConstraints, OrientationConstraintSpec{LinkName: "left_hand"})

	set := NewSet(model)
	err = set.Add(c, tf)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, len(multierr.Errors(err)), test.ShouldEqual, 2)
	test.That(t, set.Empty(), test.ShouldBeFalse)
	test.That(t, len(set.JointConstraints()), test.ShouldEqual, 1)
	test.That(t, len(set.PositionConstraints()), test.ShouldEqual, 1)
	test.That(t, len(set.OrientationConstraints()), test.ShouldEqual, 1)

	state := referenceframe.NewRobotState(model)
	ok, _ := set.Decide(state)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, state.SetVariable("head_pan", 0.1), test.ShouldBeNil)
	ok, _ = set.Decide(state)
	test.That(t, ok, test.ShouldBeTrue)

	test.That(t, NewSet(model).Empty(), test.ShouldBeTrue)
}
