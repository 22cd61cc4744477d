package constraintsamplers

import (
	"github.com/ipa-fxm-rc/moveit-core/kinematicconstraints"
	"github.com/ipa-fxm-rc/moveit-core/logging"
	"github.com/ipa-fxm-rc/moveit-core/referenceframe"
)

// decomposition is the state of one SelectDefaultSampler call.
type decomposition struct {
	scene    Scene
	logger   logging.Logger
	policy   IKGoalPolicy
	attempts int

	// groups on the current recursion path
	visiting  map[string]bool
	// IK allocators a parent group registered for the subgroup being decomposed
	subAllocs map[string]referenceframe.IKSolverAllocator
}

func (d *decomposition) selectSampler(groupName string, constraints kinematicconstraints.Constraints) (Sampler, error) {
	group, ok := d.scene.Model().Group(groupName)
	if !ok {
		d.logger.Debugf("no group %q in model %q", groupName, d.scene.Model().Name())
		return nil, newUnknownGroupError(groupName)
	}
	if d.visiting[groupName] {
		d.logger.Debugf("group %q is already being decomposed, skipping", groupName)
		return nil, ErrNoSampler
	}
	d.visiting[groupName] = true
	defer delete(d.visiting, groupName)

	d.logger.Debugw("attempting to construct a constrained state sampler", "group", groupName, "constraints", constraints.String())

	var samplers []Sampler
	jointSampler, done := d.jointPass(group, constraints)
	if done {
		return jointSampler, nil
	}
	if jointSampler != nil {
		samplers = append(samplers, jointSampler)
	}

	direct, subs := group.SolverAllocators()
	if alloc := d.subAllocs[groupName]; alloc != nil {
		direct = alloc
	}
	if direct != nil {
		d.logger.Debugf("there is an ik allocator for %q, checking for position and orientation constraints", groupName)
		chosen := d.ikPass(group, direct, constraints)
		switch len(chosen) {
		case 0:
		case 1:
			if len(samplers) == 0 {
				return chosen[0], nil
			}
			return NewUnionSampler(d.scene, groupName, append(samplers, chosen[0]))
		default:
			for _, s := range chosen {
				samplers = append(samplers, s)
			}
			return NewUnionSampler(d.scene, groupName, samplers)
		}
	}

	if len(subs) > 0 {
		d.logger.Debugf("there are ik allocators for subgroups of %q, checking for position and orientation constraints", groupName)
		if sub := d.subgroupPass(group, subs, constraints); len(sub) > 0 {
			samplers = append(samplers, sub...)
			d.logger.Debugf("constructing sampler for group %q as a union of %d samplers", groupName, len(samplers))
			return NewUnionSampler(d.scene, groupName, samplers)
		}
	}

	if jointSampler != nil {
		d.logger.Debugf("allocated a sampler satisfying joint constraints for group %q", groupName)
		return jointSampler, nil
	}
	d.logger.Debugf("no constraint sampler allocated for group %q", groupName)
	return nil, ErrNoSampler
}

// jointPass builds a joint sampler from the joint constraints on group variables. done is true
// when the sampler covers every variable and must be returned as is; otherwise a non-nil sampler
// is a fallback.
func (d *decomposition) jointPass(
	group *referenceframe.JointGroup,
	constraints kinematicconstraints.Constraints,
) (*JointSampler, bool) {
	if len(constraints.JointConstraints) == 0 {
		return nil, false
	}
	d.logger.Debugf("there are joint constraints, attempting to construct a joint sampler for %q", group.Name())

	coverage := newCoverageMap(group)
	var used []*kinematicconstraints.JointConstraint
	for i, spec := range constraints.JointConstraints {
		jc := kinematicconstraints.NewJointConstraint(d.scene.Model())
		if err := jc.Configure(spec); err != nil {
			d.logger.Debugw("dropping joint constraint", "group", group.Name(), "index", i, "error", err)
			continue
		}
		if !coverage.mark(jc.VariableName()) {
			d.logger.Debugw("dropping joint constraint outside the group", "group", group.Name(), "variable", jc.VariableName())
			continue
		}
		used = append(used, jc)
	}

	if coverage.full() {
		sampler, err := NewJointSampler(d.scene, group.Name())
		if err == nil {
			err = sampler.Configure(used)
		}
		if err != nil {
			d.logger.Debugw("joint constraints cover the group but do not configure", "group", group.Name(), "error", err)
			return nil, false
		}
		d.logger.Debugf("allocated a sampler satisfying joint constraints for group %q", group.Name())
		return sampler, true
	}
	if len(used) == 0 {
		return nil, false
	}

	sampler, err := NewJointSampler(d.scene, group.Name())
	if err == nil {
		err = sampler.Configure(used)
	}
	if err != nil {
		d.logger.Debugw("partial joint sampler does not configure", "group", group.Name(), "error", err)
		return nil, false
	}
	d.logger.Debugw("temporary sampler satisfying joint constraints allocated, looking for other constraints",
		"group", group.Name(), "uncovered", coverage.uncovered())
	return sampler, false
}

// ikPass matches position and orientation constraints against the group's own IK solver and
// returns the samplers the goal policy keeps.
func (d *decomposition) ikPass(
	group *referenceframe.JointGroup,
	alloc referenceframe.IKSolverAllocator,
	constraints kinematicconstraints.Constraints,
) []*IKSampler {
	tf := d.scene.Transforms()
	table := newCandidateTable()

	for p, pspec := range constraints.PositionConstraints {
		for o, ospec := range constraints.OrientationConstraints {
			if pspec.LinkName != ospec.LinkName {
				continue
			}
			pc := kinematicconstraints.NewPositionConstraint(d.scene.Model())
			oc := kinematicconstraints.NewOrientationConstraint(d.scene.Model())
			if err := pc.Configure(pspec, tf); err != nil {
				d.logger.Debugw("dropping position constraint", "group", group.Name(), "index", p, "error", err)
				continue
			}
			if err := oc.Configure(ospec, tf); err != nil {
				d.logger.Debugw("dropping orientation constraint", "group", group.Name(), "index", o, "error", err)
				continue
			}
			if d.offer(table, group, alloc, SamplingPose{Position: pc, Orientation: oc}) {
				d.logger.Debugf("allocated an ik-based sampler for group %q satisfying position and orientation constraints on link %q",
					group.Name(), pspec.LinkName)
			}
		}
	}

	fullPose := table.snapshot()

	for p, pspec := range constraints.PositionConstraints {
		if fullPose[pspec.LinkName] {
			continue
		}
		pc := kinematicconstraints.NewPositionConstraint(d.scene.Model())
		if err := pc.Configure(pspec, tf); err != nil {
			d.logger.Debugw("dropping position constraint", "group", group.Name(), "index", p, "error", err)
			continue
		}
		if d.offer(table, group, alloc, SamplingPose{Position: pc}) {
			d.logger.Debugf("allocated an ik-based sampler for group %q satisfying position constraints on link %q",
				group.Name(), pspec.LinkName)
		}
	}

	for o, ospec := range constraints.OrientationConstraints {
		if fullPose[ospec.LinkName] {
			continue
		}
		oc := kinematicconstraints.NewOrientationConstraint(d.scene.Model())
		if err := oc.Configure(ospec, tf); err != nil {
			d.logger.Debugw("dropping orientation constraint", "group", group.Name(), "index", o, "error", err)
			continue
		}
		if d.offer(table, group, alloc, SamplingPose{Orientation: oc}) {
			d.logger.Debugf("allocated an ik-based sampler for group %q satisfying orientation constraints on link %q",
				group.Name(), ospec.LinkName)
		}
	}

	switch table.len() {
	case 0:
		return nil
	case 1:
		return []*IKSampler{table.candidates()[0].Sampler}
	default:
		d.logger.Debugf("too many ik-based samplers for group %q, consulting the goal policy", group.Name())
		return d.policy.Choose(table.candidates())
	}
}

func (d *decomposition) offer(
	table *candidateTable,
	group *referenceframe.JointGroup,
	alloc referenceframe.IKSolverAllocator,
	pose SamplingPose,
) bool {
	sampler, err := NewIKSampler(d.scene, group.Name(), WithAttempts(d.attempts), WithSolverAllocator(alloc))
	if err == nil {
		err = sampler.Configure(pose)
	}
	if err != nil {
		d.logger.Debugw("ik sampler does not configure", "group", group.Name(), "link", pose.Link(), "error", err)
		return false
	}
	return table.offer(sampler)
}

// subgroupPass hands each IK-capable subgroup the position and orientation constraints on its
// links that no earlier subgroup claimed, and decomposes those recursively.
func (d *decomposition) subgroupPass(
	group *referenceframe.JointGroup,
	subs []referenceframe.SubgroupAllocator,
	constraints kinematicconstraints.Constraints,
) []Sampler {
	usedP := map[int]bool{}
	usedO := map[int]bool{}
	var out []Sampler

	for _, sub := range subs {
		var subConstraints kinematicconstraints.Constraints
		for p, pspec := range constraints.PositionConstraints {
			if !usedP[p] && sub.Group.HasLinkModel(pspec.LinkName) {
				subConstraints.PositionConstraints = append(subConstraints.PositionConstraints, pspec)
				usedP[p] = true
			}
		}
		for o, ospec := range constraints.OrientationConstraints {
			if !usedO[o] && sub.Group.HasLinkModel(ospec.LinkName) {
				subConstraints.OrientationConstraints = append(subConstraints.OrientationConstraints, ospec)
				usedO[o] = true
			}
		}
		if subConstraints.Empty() {
			continue
		}

		d.logger.Debugf("attempting to construct a sampler for the %q subgroup of %q", sub.Group.Name(), group.Name())
		sampler, err := d.selectSubgroup(sub, subConstraints)
		if err != nil {
			d.logger.Debugw("subgroup produced no sampler", "group", group.Name(), "subgroup", sub.Group.Name(), "error", err)
			continue
		}
		d.logger.Debugf("constructed a sampler for the joints of group %q, part of group %q", sub.Group.Name(), group.Name())
		out = append(out, sampler)
	}
	return out
}

// selectSubgroup decomposes a subgroup, solving IK with the allocator the parent registered for it.
func (d *decomposition) selectSubgroup(
	sub referenceframe.SubgroupAllocator,
	constraints kinematicconstraints.Constraints,
) (Sampler, error) {
	name := sub.Group.Name()
	prev, had := d.subAllocs[name]
	d.subAllocs[name] = sub.Alloc
	defer func() {
		if had {
			d.subAllocs[name] = prev
		} else {
			delete(d.subAllocs, name)
		}
	}()
	return d.selectSampler(name, constraints)
}
