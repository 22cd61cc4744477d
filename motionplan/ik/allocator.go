package ik

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/ipa-fxm-rc/moveit-core/logging"
	"github.com/ipa-fxm-rc/moveit-core/referenceframe"
)

// NewJacobianSolverAllocator returns an allocator creating jacobian solvers with the given options.
func NewJacobianSolverAllocator(opts JacobianOptions, logger logging.Logger) referenceframe.IKSolverAllocator {
	return func(g *referenceframe.JointGroup) (referenceframe.IKSolver, error) {
		return CreateJacobianIKSolver(g, opts, logger.Sublogger(g.Name()))
	}
}

// AttachSolvers gives the named groups the allocator. Other groups are handed the allocators of
// their subgroups.
func AttachSolvers(model *referenceframe.Model, groups []string, alloc referenceframe.IKSolverAllocator) error {
	for _, name := range groups {
		if _, ok := model.Group(name); !ok {
			return errors.Wrap(referenceframe.NewUnknownGroupError(name), "cannot attach ik solver")
		}
	}
	model.AssignSolverAllocators(func(g *referenceframe.JointGroup) referenceframe.IKSolverAllocator {
		if lo.Contains(groups, g.Name()) {
			return alloc
		}
		return nil
	})
	return nil
}
