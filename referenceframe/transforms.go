package referenceframe

import (
	"sync"

	spatial "github.com/ipa-fxm-rc/moveit-core/spatialmath"
)

// Transforms holds fixed frames expressed in the model's root frame. The root link and World
// both resolve to the identity.
type Transforms struct {
	root string

	mu     sync.RWMutex
	frames map[string]spatial.Pose
}

// NewTransforms returns the transforms of a scene whose model has the given root link.
func NewTransforms(root string) *Transforms {
	return &Transforms{root: root, frames: map[string]spatial.Pose{}}
}

// RootFrame returns the frame every transform is expressed in.
func (tf *Transforms) RootFrame() string {
	return tf.root
}

// SetTransform records the pose of a fixed frame.
func (tf *Transforms) SetTransform(frame string, pose spatial.Pose) {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	tf.frames[frame] = pose
}

// CanTransform reports whether the frame resolves.
func (tf *Transforms) CanTransform(frame string) bool {
	_, err := tf.Transform(frame)
	return err == nil
}

// Transform returns the pose of a frame in the root frame. An empty name means the root frame.
func (tf *Transforms) Transform(frame string) (spatial.Pose, error) {
	if frame == "" || frame == World || frame == tf.root {
		return spatial.NewZeroPose(), nil
	}
	tf.mu.RLock()
	defer tf.mu.RUnlock()
	pose, ok := tf.frames[frame]
	if !ok {
		return nil, NewUnknownFrameError(frame)
	}
	return pose, nil
}

// Clone returns an independent copy.
func (tf *Transforms) Clone() *Transforms {
	tf.mu.RLock()
	defer tf.mu.RUnlock()
	out := NewTransforms(tf.root)
	for k, v := range tf.frames {
		out.frames[k] = v
	}
	return out
}
