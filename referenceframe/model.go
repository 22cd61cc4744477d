// Package referenceframe holds the kinematic model consumed by the constraint samplers: joints,
// links, joint groups with their IK capabilities, robot states and fixed frame transforms.
package referenceframe

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	spatial "github.com/ipa-fxm-rc/moveit-core/spatialmath"
)

// World is the reserved name of the fixed frame every model is placed in.
const World = "world"

// Model is a tree of links connected by joints, plus the named joint groups defined over it.
// A Model is immutable once built except for group registration and IK allocator assignment,
// which happen at setup time.
type Model struct {
	name string
	root string

	parentJoint map[string]*Joint // by child link; nil for the root link
	links       []string

	joints       []*Joint // parents before children
	jointsByName map[string]*Joint

	variables     []string
	variableIndex map[string]int
	variableJoint []*Joint
	bounds        []Limit

	groups     map[string]*JointGroup
	groupOrder []string
}

// NewModel builds a model from its joints. The links are the joints' parent and child links; the
// single link that is no joint's child is the root.
func NewModel(name string, joints []*Joint) (*Model, error) {
	m := &Model{
		name:          name,
		parentJoint:   map[string]*Joint{},
		jointsByName:  map[string]*Joint{},
		variableIndex: map[string]int{},
		groups:        map[string]*JointGroup{},
	}

	children := map[string][]*Joint{}
	for _, j := range joints {
		if j.name == World {
			return nil, NewReservedWordError("joint", World)
		}
		if j.parent == World || j.child == World {
			return nil, NewReservedWordError("link", World)
		}
		if _, ok := m.jointsByName[j.name]; ok {
			return nil, NewDuplicateError("joint", j.name)
		}
		if _, ok := m.parentJoint[j.child]; ok {
			return nil, errors.Errorf("link %q has more than one parent joint", j.child)
		}
		m.jointsByName[j.name] = j
		m.parentJoint[j.child] = j
		children[j.parent] = append(children[j.parent], j)
	}

	var roots []string
	for _, j := range joints {
		if _, ok := m.parentJoint[j.parent]; !ok {
			roots = append(roots, j.parent)
		}
	}
	roots = lo.Uniq(roots)
	switch len(roots) {
	case 0:
		if len(joints) == 0 {
			return nil, ErrNoModelInformation
		}
		return nil, ErrCircularReference
	case 1:
		m.root = roots[0]
	default:
		sort.Strings(roots)
		return nil, errors.Errorf("model %q must have exactly one root link, found %v", name, roots)
	}
	m.parentJoint[m.root] = nil

	// breadth first from the root so every joint comes after its parent's joint
	queue := []string{m.root}
	for len(queue) > 0 {
		link := queue[0]
		queue = queue[1:]
		m.links = append(m.links, link)
		for _, j := range children[link] {
			j.offset = len(m.variables)
			for i, v := range j.variables {
				if _, ok := m.variableIndex[v]; ok {
					return nil, NewDuplicateError("variable", v)
				}
				m.variableIndex[v] = len(m.variables)
				m.variables = append(m.variables, v)
				m.variableJoint = append(m.variableJoint, j)
				m.bounds = append(m.bounds, j.limits[i])
			}
			m.joints = append(m.joints, j)
			queue = append(queue, j.child)
		}
	}
	if len(m.joints) != len(joints) {
		return nil, ErrCircularReference
	}
	return m, nil
}

// Name returns the name of this model.
func (m *Model) Name() string {
	return m.name
}

// RootLink returns the link every other link hangs from.
func (m *Model) RootLink() string {
	return m.root
}

// Links returns all link names, root first.
func (m *Model) Links() []string {
	return append([]string(nil), m.links...)
}

// HasLink reports whether the link is part of the model.
func (m *Model) HasLink(link string) bool {
	_, ok := m.parentJoint[link]
	return ok
}

// Joint returns the named joint.
func (m *Model) Joint(name string) (*Joint, bool) {
	j, ok := m.jointsByName[name]
	return j, ok
}

// Joints returns the joints, parents before children.
func (m *Model) Joints() []*Joint {
	return append([]*Joint(nil), m.joints...)
}

// Variables returns every variable of the model in state order.
func (m *Model) Variables() []string {
	return append([]string(nil), m.variables...)
}

// VariableCount returns the number of variables in a full state.
func (m *Model) VariableCount() int {
	return len(m.variables)
}

// VariableIndex returns the position of the variable in a full state vector.
func (m *Model) VariableIndex(variable string) (int, bool) {
	idx, ok := m.variableIndex[variable]
	return idx, ok
}

// VariableBounds returns the limits of the named variable.
func (m *Model) VariableBounds(variable string) (Limit, bool) {
	idx, ok := m.variableIndex[variable]
	if !ok {
		return Limit{}, false
	}
	return m.bounds[idx], true
}

// VariableJoint returns the joint owning the named variable.
func (m *Model) VariableJoint(variable string) (*Joint, bool) {
	idx, ok := m.variableIndex[variable]
	if !ok {
		return nil, false
	}
	return m.variableJoint[idx], true
}

// LinkPose computes the pose of a link in the root link's frame for a full state vector.
func (m *Model) LinkPose(values []float64, link string) (spatial.Pose, error) {
	if len(values) != len(m.variables) {
		return nil, NewIncorrectDoFError(len(values), len(m.variables))
	}
	if !m.HasLink(link) {
		return nil, NewUnknownLinkError(link)
	}

	var chain []*Joint
	for j := m.parentJoint[link]; j != nil; j = m.parentJoint[j.parent] {
		chain = append(chain, j)
	}

	pose := spatial.NewZeroPose()
	for i := len(chain) - 1; i >= 0; i-- {
		j := chain[i]
		local, err := j.Transform(values[j.offset : j.offset+len(j.variables)])
		if err != nil {
			return nil, err
		}
		pose = spatial.Compose(pose, local)
	}
	return pose, nil
}

// AddGroup defines a named joint group. Subgroups must already be defined and must only contain
// joints of the new group.
func (m *Model) AddGroup(name string, jointNames, subgroups []string) (*JointGroup, error) {
	if name == "" {
		return nil, errors.New("group must have a name")
	}
	if _, ok := m.groups[name]; ok {
		return nil, NewDuplicateError("group", name)
	}
	if len(jointNames) == 0 {
		return nil, errors.Errorf("group %q has no joints", name)
	}
	for _, jn := range jointNames {
		if _, ok := m.jointsByName[jn]; !ok {
			return nil, errors.Errorf("group %q references unknown joint %q", name, jn)
		}
	}
	for _, sub := range subgroups {
		sg, ok := m.groups[sub]
		if !ok {
			return nil, errors.Wrapf(NewUnknownGroupError(sub), "subgroup of %q", name)
		}
		for _, j := range sg.joints {
			if !lo.Contains(jointNames, j.name) {
				return nil, errors.Errorf("subgroup %q of %q contains joint %q outside the group", sub, name, j.name)
			}
		}
	}

	g := newJointGroup(m, name, jointNames, subgroups)
	m.groups[name] = g
	m.groupOrder = append(m.groupOrder, name)
	return g, nil
}

// Group returns the named joint group.
func (m *Model) Group(name string) (*JointGroup, bool) {
	g, ok := m.groups[name]
	return g, ok
}

// Groups returns the groups in definition order.
func (m *Model) Groups() []*JointGroup {
	return lo.Map(m.groupOrder, func(name string, _ int) *JointGroup { return m.groups[name] })
}

// AssignSolverAllocators gives each group the IK allocator returned by pick, if any. Groups that
// get no allocator of their own are given the allocators of their declared subgroups, in
// declaration order.
func (m *Model) AssignSolverAllocators(pick func(*JointGroup) IKSolverAllocator) {
	direct := map[string]IKSolverAllocator{}
	for _, g := range m.Groups() {
		if alloc := pick(g); alloc != nil {
			direct[g.name] = alloc
		}
	}
	for _, g := range m.Groups() {
		if alloc, ok := direct[g.name]; ok {
			g.SetSolverAllocators(alloc, nil)
			continue
		}
		var subs []SubgroupAllocator
		for _, sub := range g.subgroups {
			if alloc, ok := direct[sub]; ok {
				subs = append(subs, SubgroupAllocator{Group: m.groups[sub], Alloc: alloc})
			}
		}
		g.SetSolverAllocators(nil, subs)
	}
}
