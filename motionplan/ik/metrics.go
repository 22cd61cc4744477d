package ik

import (
	"github.com/golang/geo/r3"

	"github.com/ipa-fxm-rc/moveit-core/referenceframe"
	spatial "github.com/ipa-fxm-rc/moveit-core/spatialmath"
)

// State is a candidate configuration of a group and the resulting pose of the goal link.
type State struct {
	Position      spatial.Pose
	Configuration []float64
}

// StateMetric produces a score for a State. Lower is better, zero means the goal is reached.
type StateMetric func(*State) float64

// NewSquaredNormMetric scores the squared translation error plus the squared rotation angle.
func NewSquaredNormMetric(goal spatial.Pose) StateMetric {
	return func(query *State) float64 {
		return positionError(goal.Point(), query.Position).Norm2() + rotationError(goal.Orientation(), query.Position).Norm2()
	}
}

// NewPositionOnlyMetric scores the squared translation error without regard for orientation.
func NewPositionOnlyMetric(goal r3.Vector) StateMetric {
	return func(query *State) float64 {
		return positionError(goal, query.Position).Norm2()
	}
}

// NewOrientationOnlyMetric scores the squared rotation angle without regard for position.
func NewOrientationOnlyMetric(goal spatial.Orientation) StateMetric {
	return func(query *State) float64 {
		return rotationError(goal, query.Position).Norm2()
	}
}

// GoalMetric picks the metric matching the parts of the goal that are set.
func GoalMetric(goal referenceframe.IKGoal) StateMetric {
	switch {
	case goal.Position != nil && goal.Orientation != nil:
		return NewSquaredNormMetric(spatial.NewPose(*goal.Position, goal.Orientation))
	case goal.Position != nil:
		return NewPositionOnlyMetric(*goal.Position)
	default:
		return NewOrientationOnlyMetric(goal.Orientation)
	}
}

func positionError(goal r3.Vector, actual spatial.Pose) r3.Vector {
	return actual.Point().Sub(goal)
}

// rotationError is the axis-angle rotation taking the goal orientation to the actual one.
func rotationError(goal spatial.Orientation, actual spatial.Pose) r3.Vector {
	return spatial.QuatToR3AA(spatial.OrientationBetween(goal, actual.Orientation()).Quaternion())
}

// residual stacks the position and rotation errors that the goal constrains.
func residual(goal referenceframe.IKGoal, actual spatial.Pose) []float64 {
	out := make([]float64, 0, 6)
	if goal.Position != nil {
		e := positionError(*goal.Position, actual)
		out = append(out, e.X, e.Y, e.Z)
	}
	if goal.Orientation != nil {
		e := rotationError(goal.Orientation, actual)
		out = append(out, e.X, e.Y, e.Z)
	}
	return out
}
