package constraintsamplers

// IKCandidate is the tightest IK sampler found for one link of a group.
type IKCandidate struct {
	Link    string
	Sampler *IKSampler
}

// An IKGoalPolicy decides which IK candidates a group's solver is asked to satisfy when
// constraints name several links. It is only consulted with two or more candidates, in the order
// their links were first seen, and must return at least one of them.
type IKGoalPolicy interface {
	Choose(candidates []IKCandidate) []*IKSampler
}

// TightestGoalPolicy keeps the single candidate with the smallest sampling volume. The earliest
// candidate wins ties. It suits solvers that reach one end effector at a time.
type TightestGoalPolicy struct{}

// Choose returns the minimum-volume candidate.
func (TightestGoalPolicy) Choose(candidates []IKCandidate) []*IKSampler {
	if len(candidates) == 0 {
		return nil
	}
	best := candidates[0].Sampler
	for _, c := range candidates[1:] {
		if c.Sampler.SamplingVolume() < best.SamplingVolume() {
			best = c.Sampler
		}
	}
	return []*IKSampler{best}
}
