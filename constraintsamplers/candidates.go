package constraintsamplers

// candidateTable keeps the best IK sampler per link, remembering the order links were first seen.
type candidateTable struct {
	order  []string
	byLink map[string]*IKSampler
}

func newCandidateTable() *candidateTable {
	return &candidateTable{byLink: map[string]*IKSampler{}}
}

// offer stores s for its link unless the stored sampler is at least as tight. It reports whether
// s was stored.
func (t *candidateTable) offer(s *IKSampler) bool {
	link := s.Link()
	existing, ok := t.byLink[link]
	if ok && existing.SamplingVolume() <= s.SamplingVolume() {
		return false
	}
	if !ok {
		t.order = append(t.order, link)
	}
	t.byLink[link] = s
	return true
}

func (t *candidateTable) has(link string) bool {
	_, ok := t.byLink[link]
	return ok
}

func (t *candidateTable) len() int {
	return len(t.order)
}

// snapshot returns the set of links currently present.
func (t *candidateTable) snapshot() map[string]bool {
	out := make(map[string]bool, len(t.order))
	for _, link := range t.order {
		out[link] = true
	}
	return out
}

// candidates returns the stored samplers in first-seen link order.
func (t *candidateTable) candidates() []IKCandidate {
	out := make([]IKCandidate, 0, len(t.order))
	for _, link := range t.order {
		out = append(out, IKCandidate{Link: link, Sampler: t.byLink[link]})
	}
	return out
}
