package constraintsamplers

import (
	"github.com/pkg/errors"
)

var (
	// ErrNoSampler is returned when no strategy could build a sampler for a group and constraint set.
	// It is a normal outcome of selection, not a failure of the scene or model.
	ErrNoSampler = errors.New("no constraint sampler could be allocated")

	// ErrNotConfigured is returned when Sample is called on a sampler whose last Configure failed.
	ErrNotConfigured = errors.New("sampler is not configured")

	// ErrNoIKSolution is returned when an IK sampler exhausts its attempts.
	ErrNoIKSolution = errors.New("no ik solution satisfies the sampling pose")

	// ErrEmptyUnion is returned when a union sampler is built from no samplers.
	ErrEmptyUnion = errors.New("union sampler needs at least one sampler")
)

func newUnknownGroupError(group string) error {
	return errors.Wrapf(ErrNoSampler, "group %q does not exist", group)
}
