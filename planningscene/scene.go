// Package planningscene bundles a kinematic model, the fixed frame transforms around it and a
// current robot state into the read-only snapshot that constraint samplers are built against.
package planningscene

import (
	"github.com/pkg/errors"

	"github.com/ipa-fxm-rc/moveit-core/referenceframe"
)

// Scene is a snapshot of the world a group is planned in. Samplers only read from it.
type Scene struct {
	name       string
	model      *referenceframe.Model
	transforms *referenceframe.Transforms
	state      *referenceframe.RobotState
}

// NewScene returns a scene with the model in its default state and no extra fixed frames.
func NewScene(name string, model *referenceframe.Model) *Scene {
	return &Scene{
		name:       name,
		model:      model,
		transforms: referenceframe.NewTransforms(model.RootLink()),
		state:      referenceframe.NewRobotState(model),
	}
}

// Name returns the scene name.
func (s *Scene) Name() string {
	return s.name
}

// Model returns the kinematic model.
func (s *Scene) Model() *referenceframe.Model {
	return s.model
}

// Transforms returns the fixed frames of the scene.
func (s *Scene) Transforms() *referenceframe.Transforms {
	return s.transforms
}

// CurrentState returns the scene's state. Callers must not modify it; clone it instead.
func (s *Scene) CurrentState() *referenceframe.RobotState {
	return s.state
}

// SetCurrentState replaces the current state with a copy of state.
func (s *Scene) SetCurrentState(state *referenceframe.RobotState) error {
	if state.Model() != s.model {
		return errors.Errorf("state does not belong to model %q", s.model.Name())
	}
	s.state = state.Clone()
	return nil
}

// Clone returns a scene sharing the model but with its own transforms and state.
func (s *Scene) Clone() *Scene {
	return &Scene{
		name:       s.name,
		model:      s.model,
		transforms: s.transforms.Clone(),
		state:      s.state.Clone(),
	}
}
