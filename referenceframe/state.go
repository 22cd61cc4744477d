package referenceframe

import (
	"github.com/pkg/errors"

	spatial "github.com/ipa-fxm-rc/moveit-core/spatialmath"
)

// RobotState holds a value for every variable of a model. It is not safe for concurrent writes;
// samplers write only into states handed to them by the caller.
type RobotState struct {
	model  *Model
	values []float64
}

// NewRobotState returns the default state of a model: every variable at zero, or at the middle
// of its limits when zero is out of bounds.
func NewRobotState(m *Model) *RobotState {
	values := make([]float64, len(m.variables))
	for i, l := range m.bounds {
		if !l.Contains(0) {
			values[i] = (l.Min + l.Max) / 2
		}
	}
	return &RobotState{model: m, values: values}
}

// Model returns the model the state belongs to.
func (s *RobotState) Model() *Model {
	return s.model
}

// Clone returns a deep copy of the state.
func (s *RobotState) Clone() *RobotState {
	return &RobotState{model: s.model, values: append([]float64(nil), s.values...)}
}

// CopyFrom overwrites this state with the values of other, which must share the model.
func (s *RobotState) CopyFrom(other *RobotState) error {
	if other.model != s.model {
		return errors.New("cannot copy a state of a different model")
	}
	copy(s.values, other.values)
	return nil
}

// Values returns a copy of the full state vector.
func (s *RobotState) Values() []float64 {
	return append([]float64(nil), s.values...)
}

// SetValues replaces the full state vector.
func (s *RobotState) SetValues(values []float64) error {
	if len(values) != len(s.values) {
		return NewIncorrectDoFError(len(values), len(s.values))
	}
	copy(s.values, values)
	return nil
}

// Variable returns the value of a named variable.
func (s *RobotState) Variable(name string) (float64, error) {
	idx, ok := s.model.variableIndex[name]
	if !ok {
		return 0, NewUnknownVariableError(name)
	}
	return s.values[idx], nil
}

// SetVariable sets the value of a named variable.
func (s *RobotState) SetVariable(name string, value float64) error {
	idx, ok := s.model.variableIndex[name]
	if !ok {
		return NewUnknownVariableError(name)
	}
	s.values[idx] = value
	return nil
}

// GroupValues returns the values of a group's variables in group order.
func (s *RobotState) GroupValues(g *JointGroup) []float64 {
	out := make([]float64, len(g.indices))
	for i, idx := range g.indices {
		out[i] = s.values[idx]
	}
	return out
}

// SetGroupValues sets a group's variables from values in group order.
func (s *RobotState) SetGroupValues(g *JointGroup, values []float64) error {
	if g.model != s.model {
		return errors.Errorf("group %q belongs to a different model", g.name)
	}
	if len(values) != len(g.indices) {
		return NewIncorrectDoFError(len(values), len(g.indices))
	}
	for i, idx := range g.indices {
		s.values[idx] = values[i]
	}
	return nil
}

// LinkPose returns the pose of a link in the model's root frame.
func (s *RobotState) LinkPose(link string) (spatial.Pose, error) {
	return s.model.LinkPose(s.values, link)
}

// SatisfiesBounds reports whether every variable is within its limits.
func (s *RobotState) SatisfiesBounds() bool {
	for i, l := range s.model.bounds {
		if !l.Contains(s.values[i]) {
			return false
		}
	}
	return true
}
