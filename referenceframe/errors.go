package referenceframe

import "github.com/pkg/errors"

// ErrCircularReference is returned when a model's joints form a loop.
var ErrCircularReference = errors.New("infinite loop finding path from end effector to world")

// ErrNoModelInformation is used when there is no model information.
var ErrNoModelInformation = errors.New("no model information")

// ErrNoSolution is returned by IK solvers that could not reach a goal within their budget.
var ErrNoSolution = errors.New("no IK solution found")

// NewReservedWordError is used when a link or joint is named with a reserved word.
func NewReservedWordError(configType, reservedWord string) error {
	return errors.Errorf("reserved word: cannot name a %s '%s'", configType, reservedWord)
}

// NewUnknownFrameError is used when a frame cannot be resolved to a transform.
func NewUnknownFrameError(frame string) error {
	return errors.Errorf("frame %q has no known transform", frame)
}

// NewUnknownLinkError is used when a link is not part of a model.
func NewUnknownLinkError(link string) error {
	return errors.Errorf("link %q is not part of the model", link)
}

// NewUnknownVariableError is used when a variable is not part of a model.
func NewUnknownVariableError(variable string) error {
	return errors.Errorf("variable %q is not part of the model", variable)
}

// NewUnknownGroupError is used when a joint group is not part of a model.
func NewUnknownGroupError(group string) error {
	return errors.Errorf("group %q is not part of the model", group)
}

// NewIncorrectDoFError is returned when inputs do not match the number of degrees of freedom.
func NewIncorrectDoFError(actual, expected int) error {
	return errors.Errorf("number of inputs does not match frame DoF, expected %d but got %d", expected, actual)
}

// NewDuplicateError is used when two links, joints or groups share a name.
func NewDuplicateError(configType, name string) error {
	return errors.Errorf("duplicate %s name %q", configType, name)
}
