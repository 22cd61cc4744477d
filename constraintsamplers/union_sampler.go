package constraintsamplers

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/ipa-fxm-rc/moveit-core/referenceframe"
)

// UnionSampler runs several samplers in order against one state. Later samplers overwrite the
// variables they share with earlier ones.
type UnionSampler struct {
	group     *referenceframe.JointGroup
	samplers  []Sampler
	variables []string
}

// NewUnionSampler combines already configured samplers for a group.
func NewUnionSampler(scene Scene, groupName string, samplers []Sampler) (*UnionSampler, error) {
	group, err := lookupGroup(scene, groupName)
	if err != nil {
		return nil, err
	}
	if len(samplers) == 0 {
		return nil, ErrEmptyUnion
	}

	controlled := map[string]bool{}
	for _, s := range samplers {
		for _, v := range s.ControlledVariables() {
			controlled[v] = true
		}
	}
	// group order first, then anything a member controls outside the group
	variables := lo.Filter(group.VariableNames(), func(v string, _ int) bool { return controlled[v] })
	for _, s := range samplers {
		for _, v := range s.ControlledVariables() {
			if !lo.Contains(variables, v) {
				variables = append(variables, v)
			}
		}
	}
	return &UnionSampler{group: group, samplers: append([]Sampler(nil), samplers...), variables: variables}, nil
}

// Name returns "union".
func (s *UnionSampler) Name() string {
	return "union"
}

// GroupName returns the group the sampler was built for.
func (s *UnionSampler) GroupName() string {
	return s.group.Name()
}

// ControlledVariables returns the union of the members' variables.
func (s *UnionSampler) ControlledVariables() []string {
	return append([]string(nil), s.variables...)
}

// Samplers returns the members in sampling order.
func (s *UnionSampler) Samplers() []Sampler {
	return append([]Sampler(nil), s.samplers...)
}

// Sample runs every member in order on a copy of the state and commits the copy once all succeed.
// The first failure aborts the attempt.
func (s *UnionSampler) Sample(state *referenceframe.RobotState, rSeed *rand.Rand) error {
	scratch := state.Clone()
	for i, sampler := range s.samplers {
		if err := sampler.Sample(scratch, rSeed); err != nil {
			return errors.Wrapf(err, "union member %d (%s) failed", i, sampler.Name())
		}
	}
	return state.CopyFrom(scratch)
}

func (s *UnionSampler) String() string {
	members := lo.Map(s.samplers, func(m Sampler, _ int) string { return m.String() })
	return fmt.Sprintf("union(%s)[%s]", s.group.Name(), strings.Join(members, ", "))
}
