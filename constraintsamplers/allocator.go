package constraintsamplers

import (
	"github.com/ipa-fxm-rc/moveit-core/kinematicconstraints"
)

// An Allocator builds samplers for requests it recognizes. A Manager asks its allocators in
// registration order and commits to the first whose CanService returns true.
type Allocator interface {
	CanService(scene Scene, groupName string, constraints kinematicconstraints.Constraints) bool
	Alloc(scene Scene, groupName string, constraints kinematicconstraints.Constraints) (Sampler, error)
}
