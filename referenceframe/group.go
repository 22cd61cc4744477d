package referenceframe

import (
	"math/rand"
	"sync"

	"github.com/samber/lo"
)

// SubgroupAllocator pairs a subgroup with the IK allocator that solves for it.
type SubgroupAllocator struct {
	Group *JointGroup
	Alloc IKSolverAllocator
}

// JointGroup is a named subset of a model's joints. Its variables are the variables of its
// joints in model order. Its links are the child links of its joints together with links rigidly
// attached below them by fixed joints.
type JointGroup struct {
	model     *Model
	name      string
	joints    []*Joint
	variables []string
	indices   []int
	links     map[string]bool
	linkOrder []string
	subgroups []string

	mu        sync.RWMutex
	ikAlloc   IKSolverAllocator
	subAllocs []SubgroupAllocator
}

func newJointGroup(m *Model, name string, jointNames, subgroups []string) *JointGroup {
	g := &JointGroup{
		model:     m,
		name:      name,
		links:     map[string]bool{},
		subgroups: append([]string(nil), subgroups...),
	}
	// keep model order rather than declaration order
	for _, j := range m.joints {
		if !lo.Contains(jointNames, j.name) {
			continue
		}
		g.joints = append(g.joints, j)
		for _, v := range j.variables {
			g.variables = append(g.variables, v)
			g.indices = append(g.indices, m.variableIndex[v])
		}
		g.addLink(j.child)
	}
	for _, j := range m.joints {
		if j.typ == FixedJoint && g.links[j.parent] {
			g.addLink(j.child)
		}
	}
	return g
}

func (g *JointGroup) addLink(link string) {
	if !g.links[link] {
		g.links[link] = true
		g.linkOrder = append(g.linkOrder, link)
	}
}

// Name returns the group name.
func (g *JointGroup) Name() string {
	return g.name
}

// Model returns the model the group belongs to.
func (g *JointGroup) Model() *Model {
	return g.model
}

// Joints returns the group's joints in model order.
func (g *JointGroup) Joints() []*Joint {
	return append([]*Joint(nil), g.joints...)
}

// VariableNames returns the group's variables in model order.
func (g *JointGroup) VariableNames() []string {
	return append([]string(nil), g.variables...)
}

// VariableIndices returns the positions of the group's variables in a full state vector.
func (g *JointGroup) VariableIndices() []int {
	return append([]int(nil), g.indices...)
}

// VariableBounds returns the limits of the group's variables in order.
func (g *JointGroup) VariableBounds() []Limit {
	return lo.Map(g.indices, func(idx, _ int) Limit { return g.model.bounds[idx] })
}

// HasVariable reports whether the variable belongs to the group.
func (g *JointGroup) HasVariable(variable string) bool {
	return lo.Contains(g.variables, variable)
}

// HasLinkModel reports whether the link is moved by the group.
func (g *JointGroup) HasLinkModel(link string) bool {
	return g.links[link]
}

// Links returns the links moved by the group.
func (g *JointGroup) Links() []string {
	return append([]string(nil), g.linkOrder...)
}

// Subgroups returns the declared subgroup names.
func (g *JointGroup) Subgroups() []string {
	return append([]string(nil), g.subgroups...)
}

// RandomValues draws a value for each group variable uniformly within its limits.
func (g *JointGroup) RandomValues(rSeed *rand.Rand) []float64 {
	out := make([]float64, len(g.indices))
	for i, idx := range g.indices {
		out[i] = g.model.bounds[idx].Sample(rSeed)
	}
	return out
}

// SetSolverAllocators sets the group's own IK allocator and the allocators of its subgroups.
// This is setup-time configuration.
func (g *JointGroup) SetSolverAllocators(direct IKSolverAllocator, subgroups []SubgroupAllocator) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ikAlloc = direct
	g.subAllocs = append([]SubgroupAllocator(nil), subgroups...)
}

// SolverAllocators returns the group's own IK allocator, which may be nil, and the subgroup
// allocators in registration order.
func (g *JointGroup) SolverAllocators() (IKSolverAllocator, []SubgroupAllocator) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.ikAlloc, append([]SubgroupAllocator(nil), g.subAllocs...)
}
