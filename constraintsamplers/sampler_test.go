package constraintsamplers

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/ipa-fxm-rc/moveit-core/kinematicconstraints"
	"github.com/ipa-fxm-rc/moveit-core/logging"
	"github.com/ipa-fxm-rc/moveit-core/motionplan/ik"
	"github.com/ipa-fxm-rc/moveit-core/referenceframe"
)

func configuredJoints(t *testing.T, model *referenceframe.Model, specs ...kinematicconstraints.JointConstraintSpec) []*kinematicconstraints.JointConstraint {
	t.Helper()
	out := make([]*kinematicconstraints.JointConstraint, 0, len(specs))
	for _, spec := range specs {
		jc := kinematicconstraints.NewJointConstraint(model)
		test.That(t, jc.Configure(spec), test.ShouldBeNil)
		out = append(out, jc)
	}
	return out
}

func TestJointSampler(t *testing.T) {
	scene := dualArmScene(t)
	model := scene.Model()
	rSeed := rand.New(rand.NewSource(1))

	sampler, err := NewJointSampler(scene, "left_arm")
	test.That(t, err, test.ShouldBeNil)
	state := referenceframe.NewRobotState(model)
	test.That(t, sampler.Sample(state, rSeed), test.ShouldBeError, ErrNotConfigured)

	constraints := configuredJoints(t, model,
		jointAt("left_wrist", math.Pi, 0.1),
		jointAt("left_shoulder", 0.5, 0.2),
		jointAt("left_shoulder", 0.6, 0.2),
	)
	test.That(t, sampler.Configure(constraints), test.ShouldBeNil)
	test.That(t, sampler.ControlledVariables(), test.ShouldResemble, []string{"left_shoulder", "left_wrist"})
	band, ok := sampler.Band("left_shoulder")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, band.Min, test.ShouldAlmostEqual, 0.4)
	test.That(t, band.Max, test.ShouldAlmostEqual, 0.7)
	_, ok = sampler.Band("left_elbow")
	test.That(t, ok, test.ShouldBeFalse)

	for i := 0; i < 50; i++ {
		test.That(t, state.SetVariable("left_elbow", 0.25), test.ShouldBeNil)
		test.That(t, sampler.Sample(state, rSeed), test.ShouldBeNil)
		shoulder, _ := state.Variable("left_shoulder")
		test.That(t, shoulder, test.ShouldBeBetweenOrEqual, 0.4, 0.7)
		wrist, _ := state.Variable("left_wrist")
		test.That(t, math.Abs(wrist), test.ShouldBeGreaterThanOrEqualTo, math.Pi-0.1-1e-9)
		test.That(t, wrist, test.ShouldBeLessThanOrEqualTo, math.Pi)
		elbow, _ := state.Variable("left_elbow")
		test.That(t, elbow, test.ShouldEqual, 0.25)
		test.That(t, state.SatisfiesBounds(), test.ShouldBeTrue)
	}

	t.Run("configure is repeatable", func(t *testing.T) {
		again, err := NewJointSampler(scene, "left_arm")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, again.Configure(constraints), test.ShouldBeNil)
		test.That(t, again.Configure(constraints), test.ShouldBeNil)
		test.That(t, again.ControlledVariables(), test.ShouldResemble, sampler.ControlledVariables())
		test.That(t, again.String(), test.ShouldEqual, sampler.String())
	})

	t.Run("continuous bands intersect across the wrap", func(t *testing.T) {
		wrapped := configuredJoints(t, model, jointAt("left_wrist", math.Pi-0.05, 0.1), jointAt("left_wrist", -math.Pi+0.05, 0.1))
		test.That(t, sampler.Configure(wrapped), test.ShouldBeNil)
		band, _ := sampler.Band("left_wrist")
		test.That(t, band.Max-band.Min, test.ShouldAlmostEqual, 0.1)
	})

	t.Run("invalid", func(t *testing.T) {
		test.That(t, sampler.Configure(nil), test.ShouldNotBeNil)
		test.That(t, sampler.Sample(state, rSeed), test.ShouldBeError, ErrNotConfigured)
		outside := configuredJoints(t, model, jointAt("right_elbow", 0, 0.1))
		test.That(t, sampler.Configure(outside), test.ShouldNotBeNil)
		disjoint := configuredJoints(t, model, jointAt("left_elbow", 1, 0.1), jointAt("left_elbow", -1, 0.1))
		test.That(t, sampler.Configure(disjoint), test.ShouldNotBeNil)
		test.That(t, sampler.Configure([]*kinematicconstraints.JointConstraint{kinematicconstraints.NewJointConstraint(model)}),
			test.ShouldNotBeNil)
	})

	_, err = NewJointSampler(scene, "legs")
	test.That(t, errors.Is(err, ErrNoSampler), test.ShouldBeTrue)
}

func configuredPose(
	t *testing.T,
	scene Scene,
	pspec *kinematicconstraints.PositionConstraintSpec,
	ospec *kinematicconstraints.OrientationConstraintSpec,
) SamplingPose {
	t.Helper()
	var pose SamplingPose
	if pspec != nil {
		pose.Position = kinematicconstraints.NewPositionConstraint(scene.Model())
		test.That(t, pose.Position.Configure(*pspec, scene.Transforms()), test.ShouldBeNil)
	}
	if ospec != nil {
		pose.Orientation = kinematicconstraints.NewOrientationConstraint(scene.Model())
		test.That(t, pose.Orientation.Configure(*ospec, scene.Transforms()), test.ShouldBeNil)
	}
	return pose
}

func TestIKSamplerConfigure(t *testing.T) {
	scene := dualArmScene(t)
	counter := &countingAllocator{solver: &fakeSolver{}}
	test.That(t, ik.AttachSolvers(scene.Model(), []string{"left_arm"}, counter.alloc), test.ShouldBeNil)

	pspec := sphereAt("left_tool_link", r3.Vector{X: 2}, 0.1)
	ospec := yawWithin("left_tool_link", 0.2)
	pose := configuredPose(t, scene, &pspec, &ospec)

	sampler, err := NewIKSampler(scene, "left_arm")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sampler.Configure(pose), test.ShouldBeNil)
	first := sampler.SamplingVolume()
	vars := sampler.ControlledVariables()
	test.That(t, sampler.Configure(pose), test.ShouldBeNil)
	test.That(t, sampler.SamplingVolume(), test.ShouldEqual, first)
	test.That(t, sampler.ControlledVariables(), test.ShouldResemble, vars)
	test.That(t, vars, test.ShouldResemble, []string{"left_shoulder", "left_elbow", "left_wrist"})
	test.That(t, sampler.String(), test.ShouldStartWith, "ik(left_arm)@left_tool_link v=")

	positionOnly := configuredPose(t, scene, &pspec, nil)
	test.That(t, sampler.Configure(positionOnly), test.ShouldBeNil)
	test.That(t, sampler.SamplingVolume(), test.ShouldAlmostEqual, 4./3.*math.Pi*1e-3)
	orientationOnly := configuredPose(t, scene, nil, &ospec)
	test.That(t, sampler.Configure(orientationOnly), test.ShouldBeNil)
	test.That(t, sampler.SamplingVolume(), test.ShouldAlmostEqual, 1e-6*1e-6*0.2)

	t.Run("invalid", func(t *testing.T) {
		rSeed := rand.New(rand.NewSource(1))
		test.That(t, sampler.Configure(SamplingPose{}), test.ShouldNotBeNil)
		test.That(t, sampler.Sample(referenceframe.NewRobotState(scene.Model()), rSeed), test.ShouldBeError, ErrNotConfigured)

		handOrientation := yawWithin("left_hand", 0.2)
		mixed := configuredPose(t, scene, &pspec, &handOrientation)
		test.That(t, sampler.Configure(mixed), test.ShouldNotBeNil)

		rightSpec := sphereAt("right_tool_link", r3.Vector{}, 0.1)
		test.That(t, sampler.Configure(configuredPose(t, scene, &rightSpec, nil)), test.ShouldNotBeNil)

		offsetSpec := pspec
		offsetSpec.TargetPointOffset = r3.Vector{X: 0.1}
		test.That(t, sampler.Configure(configuredPose(t, scene, &offsetSpec, nil)), test.ShouldNotBeNil)
		test.That(t, sampler.Configure(configuredPose(t, scene, &offsetSpec, &ospec)), test.ShouldBeNil)

		noSolver, err := NewIKSampler(scene, "head")
		test.That(t, err, test.ShouldBeNil)
		headSpec := sphereAt("head", r3.Vector{Z: 0.8}, 0.1)
		err = noSolver.Configure(configuredPose(t, scene, &headSpec, nil))
		test.That(t, err.Error(), test.ShouldContainSubstring, "has no ik solver")
	})

	t.Run("allocator failure", func(t *testing.T) {
		left, _ := scene.Model().Group("left_arm")
		left.SetSolverAllocators(func(*referenceframe.JointGroup) (referenceframe.IKSolver, error) {
			return nil, errors.New("no license")
		}, nil)
		err := sampler.Configure(pose)
		test.That(t, err.Error(), test.ShouldContainSubstring, "no license")
	})

	t.Run("explicit allocator", func(t *testing.T) {
		headSpec := sphereAt("head", r3.Vector{Z: 0.8}, 0.1)
		other := &countingAllocator{solver: &fakeSolver{}}
		head, err := NewIKSampler(scene, "head", WithSolverAllocator(other.alloc))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, head.Configure(configuredPose(t, scene, &headSpec, nil)), test.ShouldBeNil)
		test.That(t, head.Configure(configuredPose(t, scene, &headSpec, nil)), test.ShouldBeNil)
		test.That(t, other.groups, test.ShouldResemble, []string{"head", "head"})
	})
}

func TestIKSamplerSample(t *testing.T) {
	scene := dualArmScene(t)
	alloc := ik.NewJacobianSolverAllocator(ik.NewDefaultJacobianOptions(), logging.NewTestLogger(t))
	test.That(t, ik.AttachSolvers(scene.Model(), []string{"left_arm", "right_arm"}, alloc), test.ShouldBeNil)

	pspec := planarBoxAt("left_tool_link", r3.Vector{X: 1.5, Y: 1.2}, 0.1)
	ospec := yawWithin("left_tool_link", 0.2)
	ospec.Orientation = kinematicconstraints.QuaternionSpec{W: math.Cos(0.15), Z: math.Sin(0.15)}
	pose := configuredPose(t, scene, &pspec, &ospec)

	sampler, err := NewIKSampler(scene, "left_arm", WithAttempts(20))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sampler.Configure(pose), test.ShouldBeNil)

	rSeed := rand.New(rand.NewSource(7))
	state := referenceframe.NewRobotState(scene.Model())
	test.That(t, state.SetVariable("right_elbow", 0.7), test.ShouldBeNil)
	for i := 0; i < 5; i++ {
		test.That(t, sampler.Sample(state, rSeed), test.ShouldBeNil)
		ok, _ := pose.Position.Decide(state)
		test.That(t, ok, test.ShouldBeTrue)
		ok, _ = pose.Orientation.Decide(state)
		test.That(t, ok, test.ShouldBeTrue)
		elbow, _ := state.Variable("right_elbow")
		test.That(t, elbow, test.ShouldEqual, 0.7)
	}

	t.Run("failure leaves the state alone", func(t *testing.T) {
		unreachable := planarBoxAt("left_tool_link", r3.Vector{X: 4, Y: 4}, 0.1)
		far := configuredPose(t, scene, &unreachable, nil)
		failing, err := NewIKSampler(scene, "left_arm", WithAttempts(2))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, failing.Configure(far), test.ShouldBeNil)

		before := state.Values()
		err = failing.Sample(state, rSeed)
		test.That(t, errors.Is(err, ErrNoIKSolution), test.ShouldBeTrue)
		test.That(t, state.Values(), test.ShouldResemble, before)
	})

	t.Run("solutions outside the pose are rejected", func(t *testing.T) {
		left, _ := scene.Model().Group("left_arm")
		solver := &fakeSolver{values: []float64{0, 0, 0}}
		left.SetSolverAllocators(func(*referenceframe.JointGroup) (referenceframe.IKSolver, error) { return solver, nil }, nil)
		rejecting, err := NewIKSampler(scene, "left_arm", WithAttempts(4))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, rejecting.Configure(pose), test.ShouldBeNil)
		err = rejecting.Sample(state, rSeed)
		test.That(t, errors.Is(err, ErrNoIKSolution), test.ShouldBeTrue)
		test.That(t, solver.calls, test.ShouldEqual, 4)
	})
}

func TestUnionSampler(t *testing.T) {
	scene := dualArmScene(t)
	model := scene.Model()
	rSeed := rand.New(rand.NewSource(3))

	_, err := NewUnionSampler(scene, "arms", nil)
	test.That(t, err, test.ShouldBeError, ErrEmptyUnion)

	left, err := NewJointSampler(scene, "left_arm")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, left.Configure(configuredJoints(t, model, jointAt("left_elbow", 1, 0.1))), test.ShouldBeNil)
	right, err := NewJointSampler(scene, "right_arm")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, right.Configure(configuredJoints(t, model, jointAt("right_elbow", -1, 0.1), jointAt("right_shoulder", 0, 0.1))),
		test.ShouldBeNil)
	overwrite, err := NewJointSampler(scene, "arms")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, overwrite.Configure(configuredJoints(t, model, jointAt("left_elbow", 2, 0))), test.ShouldBeNil)

	union, err := NewUnionSampler(scene, "arms", []Sampler{left, right, overwrite})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, union.Name(), test.ShouldEqual, "union")
	test.That(t, union.ControlledVariables(), test.ShouldResemble, []string{"left_elbow", "right_shoulder", "right_elbow"})
	test.That(t, union.String(), test.ShouldEqual,
		"union(arms)[joint(left_arm){left_elbow}, joint(right_arm){right_shoulder, right_elbow}, joint(arms){left_elbow}]")

	state := referenceframe.NewRobotState(model)
	test.That(t, union.Sample(state, rSeed), test.ShouldBeNil)
	leftElbow, _ := state.Variable("left_elbow")
	test.That(t, leftElbow, test.ShouldEqual, 2.0)
	rightElbow, _ := state.Variable("right_elbow")
	test.That(t, rightElbow, test.ShouldBeBetweenOrEqual, -1.1, -0.9)

	t.Run("a failing member aborts the whole attempt", func(t *testing.T) {
		unconfigured, err := NewJointSampler(scene, "arms")
		test.That(t, err, test.ShouldBeNil)
		broken, err := NewUnionSampler(scene, "arms", []Sampler{right, unconfigured})
		test.That(t, err, test.ShouldBeNil)

		before := state.Values()
		err = broken.Sample(state, rSeed)
		test.That(t, errors.Is(err, ErrNotConfigured), test.ShouldBeTrue)
		test.That(t, err.Error(), test.ShouldContainSubstring, "union member 1 (joint)")
		test.That(t, state.Values(), test.ShouldResemble, before)
	})
}

func TestSelectedSamplerDrawsValidStates(t *testing.T) {
	scene := dualArmScene(t)
	alloc := ik.NewJacobianSolverAllocator(ik.NewDefaultJacobianOptions(), logging.NewTestLogger(t))
	test.That(t, ik.AttachSolvers(scene.Model(), []string{"left_arm", "right_arm"}, alloc), test.ShouldBeNil)
	manager := NewManager(logging.NewTestLogger(t), WithIKAttempts(20))

	constraints := kinematicconstraints.Constraints{
		JointConstraints:    []kinematicconstraints.JointConstraintSpec{jointAt("right_elbow", 0.5, 0.1)},
		PositionConstraints: []kinematicconstraints.PositionConstraintSpec{planarBoxAt("left_tool_link", r3.Vector{X: 1.8, Y: 0.9}, 0.2)},
	}
	sampler, err := manager.SelectSampler(scene, "arms", constraints)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sampler.Name(), test.ShouldEqual, "union")

	set := kinematicconstraints.NewSet(scene.Model())
	test.That(t, set.Add(constraints, scene.Transforms()), test.ShouldBeNil)

	rSeed := rand.New(rand.NewSource(11))
	for i := 0; i < 5; i++ {
		state := scene.CurrentState().Clone()
		test.That(t, sampler.Sample(state, rSeed), test.ShouldBeNil)
		ok, _ := set.Decide(state)
		test.That(t, ok, test.ShouldBeTrue)
	}
}
