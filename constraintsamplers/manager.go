package constraintsamplers

import (
	"sync"

	"github.com/ipa-fxm-rc/moveit-core/kinematicconstraints"
	"github.com/ipa-fxm-rc/moveit-core/logging"
	"github.com/ipa-fxm-rc/moveit-core/referenceframe"
)

// Manager picks a sampler for a group and constraint set. Registered allocators get the first
// chance; the default decomposition handles everything they decline.
type Manager struct {
	logger     logging.Logger
	policy     IKGoalPolicy
	ikAttempts int

	mu         sync.RWMutex
	allocators []Allocator
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithIKGoalPolicy replaces the TightestGoalPolicy used when several links have IK candidates.
func WithIKGoalPolicy(policy IKGoalPolicy) ManagerOption {
	return func(m *Manager) {
		if policy != nil {
			m.policy = policy
		}
	}
}

// WithIKAttempts sets the attempts of every IK sampler the default decomposition builds.
func WithIKAttempts(attempts int) ManagerOption {
	return func(m *Manager) {
		if attempts > 0 {
			m.ikAttempts = attempts
		}
	}
}

// NewManager returns a manager with no registered allocators.
func NewManager(logger logging.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		logger:     logger,
		policy:     TightestGoalPolicy{},
		ikAttempts: defaultIKAttempts,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RegisterAllocator appends an allocator. Allocators are consulted in registration order.
func (m *Manager) RegisterAllocator(alloc Allocator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allocators = append(m.allocators, alloc)
}

// Allocators returns the registered allocators in order.
func (m *Manager) Allocators() []Allocator {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Allocator(nil), m.allocators...)
}

// SelectSampler returns the sampler of the first registered allocator that can service the
// request, whatever Alloc returns. Without such an allocator it runs SelectDefaultSampler.
func (m *Manager) SelectSampler(
	scene Scene,
	groupName string,
	constraints kinematicconstraints.Constraints,
) (Sampler, error) {
	for _, alloc := range m.Allocators() {
		if alloc.CanService(scene, groupName, constraints) {
			return alloc.Alloc(scene, groupName, constraints)
		}
	}
	return m.SelectDefaultSampler(scene, groupName, constraints)
}

// SelectDefaultSampler runs the default decomposition. It returns ErrNoSampler, possibly wrapped,
// when no strategy applies; constraints that fail to configure are skipped.
func (m *Manager) SelectDefaultSampler(
	scene Scene,
	groupName string,
	constraints kinematicconstraints.Constraints,
) (Sampler, error) {
	d := &decomposition{
		scene:     scene,
		logger:    m.logger,
		policy:    m.policy,
		attempts:  m.ikAttempts,
		visiting:  map[string]bool{},
		subAllocs: map[string]referenceframe.IKSolverAllocator{},
	}
	return d.selectSampler(groupName, constraints)
}
