package referenceframe

import (
	"math/rand"

	"github.com/golang/geo/r3"

	spatial "github.com/ipa-fxm-rc/moveit-core/spatialmath"
)

// IKGoal is a full or partial pose target for one link, expressed in the model's root frame.
// A nil Position or nil Orientation leaves that part of the pose free.
type IKGoal struct {
	Link        string
	Position    *r3.Vector
	Orientation spatial.Orientation
}

// IKSolver computes values for a group's variables that bring a link to a goal.
type IKSolver interface {
	// Solve returns group variable values, in group order, reaching the goal. The seed state
	// supplies values for every variable; only group variables are changed. ErrNoSolution is
	// returned when the solver gives up.
	Solve(goal IKGoal, seed *RobotState, rSeed *rand.Rand) ([]float64, error)
}

// IKSolverAllocator creates an IK solver for a group.
type IKSolverAllocator func(g *JointGroup) (IKSolver, error)
