// Package constraintsamplers selects and composes samplers that draw robot states satisfying a set
// of joint, position and orientation constraints.
//
// A Manager first offers a request to its registered allocators in order. When none claims it,
// the default decomposition runs: full joint coverage wins outright, otherwise the tightest
// whole-group IK goal is used, otherwise the constraints are split across IK-capable subgroups
// and the results combined in a UnionSampler. Partial joint coverage is kept as a fallback and
// joins whatever union is built.
package constraintsamplers

import (
	"fmt"
	"math/rand"

	"github.com/ipa-fxm-rc/moveit-core/referenceframe"
)

// Scene supplies the model, the fixed transforms and a state snapshot. Samplers and the Manager
// only read from it.
type Scene interface {
	Model() *referenceframe.Model
	Transforms() *referenceframe.Transforms
	CurrentState() *referenceframe.RobotState
}

// A Sampler draws values for some of a group's variables. Once configured it is immutable; Sample
// only writes to the state it is given, so one sampler may be shared by goroutines that each
// sample into their own state.
type Sampler interface {
	fmt.Stringer

	// Name is the kind of sampler: "joint", "ik" or "union".
	Name() string

	// GroupName is the joint group the sampler was built for.
	GroupName() string

	// ControlledVariables lists the variables Sample may assign, in group order.
	ControlledVariables() []string

	// Sample writes a constraint-satisfying assignment of the controlled variables into state.
	// On error the state is left unchanged.
	Sample(state *referenceframe.RobotState, rSeed *rand.Rand) error
}

func lookupGroup(scene Scene, groupName string) (*referenceframe.JointGroup, error) {
	group, ok := scene.Model().Group(groupName)
	if !ok {
		return nil, newUnknownGroupError(groupName)
	}
	return group, nil
}
