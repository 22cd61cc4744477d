package constraintsamplers

import (
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/ipa-fxm-rc/moveit-core/kinematicconstraints"
	"github.com/ipa-fxm-rc/moveit-core/planningscene"
	"github.com/ipa-fxm-rc/moveit-core/referenceframe"
)

func dualArmScene(t *testing.T) *planningscene.Scene {
	t.Helper()
	model, err := referenceframe.ParseModelJSONFile("../referenceframe/testjson/dual_arm.json", "")
	test.That(t, err, test.ShouldBeNil)
	return planningscene.NewScene("test", model)
}

// fakeSolver returns fixed values, or ErrNoSolution when values is nil.
type fakeSolver struct {
	values []float64
	calls  int
}

func (s *fakeSolver) Solve(goal referenceframe.IKGoal, seed *referenceframe.RobotState, rSeed *rand.Rand) ([]float64, error) {
	s.calls++
	if s.values == nil {
		return nil, referenceframe.ErrNoSolution
	}
	return append([]float64(nil), s.values...), nil
}

// countingAllocator records which groups it allocated solvers for.
type countingAllocator struct {
	solver referenceframe.IKSolver
	groups []string
}

func (a *countingAllocator) alloc(g *referenceframe.JointGroup) (referenceframe.IKSolver, error) {
	a.groups = append(a.groups, g.Name())
	return a.solver, nil
}

func sphereAt(link string, center r3.Vector, radius float64) kinematicconstraints.PositionConstraintSpec {
	return kinematicconstraints.PositionConstraintSpec{
		LinkName: link,
		Region: kinematicconstraints.RegionSpec{
			Shape:      kinematicconstraints.SphereRegion,
			Dimensions: []float64{radius},
			Center:     center,
		},
	}
}

// planarBoxAt is a flat box region, reachable by the planar arms of the test model.
func planarBoxAt(link string, center r3.Vector, side float64) kinematicconstraints.PositionConstraintSpec {
	return kinematicconstraints.PositionConstraintSpec{
		LinkName: link,
		Region: kinematicconstraints.RegionSpec{
			Shape:      kinematicconstraints.BoxRegion,
			Dimensions: []float64{side, side, 1e-9},
			Center:     center,
		},
	}
}

func yawWithin(link string, tolerance float64) kinematicconstraints.OrientationConstraintSpec {
	return kinematicconstraints.OrientationConstraintSpec{
		LinkName:               link,
		Orientation:            kinematicconstraints.QuaternionSpec{W: 1},
		AbsoluteXAxisTolerance: 1e-6,
		AbsoluteYAxisTolerance: 1e-6,
		AbsoluteZAxisTolerance: tolerance,
	}
}

func jointAt(variable string, position, tolerance float64) kinematicconstraints.JointConstraintSpec {
	return kinematicconstraints.JointConstraintSpec{
		JointName:      variable,
		Position:       position,
		ToleranceAbove: tolerance,
		ToleranceBelow: tolerance,
	}
}
