package constraintsamplers

import (
	"math"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/ipa-fxm-rc/moveit-core/kinematicconstraints"
	"github.com/ipa-fxm-rc/moveit-core/logging"
)

// BoundsAllocatorType is the registered type of the bounds allocator.
const BoundsAllocatorType = "bounds"

func init() {
	RegisterAllocatorType(BoundsAllocatorType, AllocatorRegistration[*BoundsConfig]{
		Constructor: func(conf *BoundsConfig, logger logging.Logger) (Allocator, error) {
			return NewBoundsAllocator(*conf, logger), nil
		},
	})
}

// BoundsConfig configures a bounds allocator.
type BoundsConfig struct {
	Groups []string `json:"groups"`
	// Margin is the fraction of each variable's range kept clear at both ends.
	Margin float64 `json:"margin"`
}

// Validate checks the groups and margin.
func (cfg *BoundsConfig) Validate(path string) error {
	if len(cfg.Groups) == 0 {
		return errors.Errorf("%s: bounds allocator needs at least one group", path)
	}
	if cfg.Margin < 0 || cfg.Margin >= 0.5 || math.IsNaN(cfg.Margin) {
		return errors.Errorf("%s: bounds allocator margin must be in [0, 0.5), got %v", path, cfg.Margin)
	}
	return nil
}

// BoundsAllocator services unconstrained requests for its groups with a joint sampler spanning
// every variable's bounds.
type BoundsAllocator struct {
	cfg    BoundsConfig
	logger logging.Logger
}

// NewBoundsAllocator returns a bounds allocator.
func NewBoundsAllocator(cfg BoundsConfig, logger logging.Logger) *BoundsAllocator {
	return &BoundsAllocator{cfg: cfg, logger: logger}
}

// CanService accepts empty constraint sets for the configured groups.
func (a *BoundsAllocator) CanService(scene Scene, groupName string, constraints kinematicconstraints.Constraints) bool {
	if !constraints.Empty() || !lo.Contains(a.cfg.Groups, groupName) {
		return false
	}
	_, ok := scene.Model().Group(groupName)
	return ok
}

// Alloc builds a joint sampler over the shrunk bounds of every group variable.
func (a *BoundsAllocator) Alloc(scene Scene, groupName string, _ kinematicconstraints.Constraints) (Sampler, error) {
	group, err := lookupGroup(scene, groupName)
	if err != nil {
		return nil, err
	}

	var used []*kinematicconstraints.JointConstraint
	bounds := group.VariableBounds()
	for i, name := range group.VariableNames() {
		l := bounds[i]
		half := l.Range() / 2 * (1 - 2*a.cfg.Margin)
		jc := kinematicconstraints.NewJointConstraint(scene.Model())
		if err := jc.Configure(kinematicconstraints.JointConstraintSpec{
			JointName:      name,
			Position:       (l.Min + l.Max) / 2,
			ToleranceAbove: half,
			ToleranceBelow: half,
		}); err != nil {
			return nil, errors.Wrapf(err, "cannot bound variable %q", name)
		}
		used = append(used, jc)
	}

	sampler, err := NewJointSampler(scene, groupName)
	if err != nil {
		return nil, err
	}
	if err := sampler.Configure(used); err != nil {
		return nil, err
	}
	a.logger.Debugf("allocated a bounds sampler for group %q", groupName)
	return sampler, nil
}
