// Package ik contains a damped least squares inverse kinematics solver for joint groups.
package ik

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ipa-fxm-rc/moveit-core/logging"
	"github.com/ipa-fxm-rc/moveit-core/referenceframe"
)

var errEmptyGoal = errors.New("ik goal has neither a position nor an orientation")

// JacobianIK solves IK goals for one joint group by damped least squares on a numeric jacobian.
// It tries the seed first and then random restarts drawn within the group bounds.
type JacobianIK struct {
	group      *referenceframe.JointGroup
	bounds     []referenceframe.Limit
	continuous []bool
	opts       JacobianOptions
	logger     logging.Logger
}

// CreateJacobianIKSolver creates a solver for a group.
func CreateJacobianIKSolver(group *referenceframe.JointGroup, opts JacobianOptions, logger logging.Logger) (*JacobianIK, error) {
	if len(group.VariableNames()) == 0 {
		return nil, errors.Errorf("group %q has no variables to solve for", group.Name())
	}
	ik := &JacobianIK{
		group:  group,
		bounds: group.VariableBounds(),
		opts:   opts.withDefaults(),
		logger: logger,
	}
	for _, name := range group.VariableNames() {
		j, _ := group.Model().VariableJoint(name)
		ik.continuous = append(ik.continuous, j.IsContinuous())
	}
	return ik, nil
}

// Solve returns group values, in group order, that reach the goal from the seed state.
func (ik *JacobianIK) Solve(
	goal referenceframe.IKGoal,
	seed *referenceframe.RobotState,
	rSeed *rand.Rand,
) ([]float64, error) {
	if goal.Position == nil && goal.Orientation == nil {
		return nil, errEmptyGoal
	}
	if !ik.group.Model().HasLink(goal.Link) {
		return nil, referenceframe.NewUnknownLinkError(goal.Link)
	}

	scratch := seed.Clone()
	metric := GoalMetric(goal)
	threshold := ik.opts.GoalThreshold * ik.opts.GoalThreshold
	best := math.Inf(1)

	start := ik.clamp(seed.GroupValues(ik.group))
	for attempt := 0; attempt <= ik.opts.Restarts; attempt++ {
		if attempt > 0 {
			start = ik.group.RandomValues(rSeed)
		}
		values, score, err := ik.descend(goal, scratch, start, metric, threshold)
		if err != nil {
			return nil, err
		}
		if score < threshold {
			return values, nil
		}
		best = math.Min(best, score)
	}

	ik.logger.Debugw("ik gave up", "group", ik.group.Name(), "link", goal.Link, "starts", ik.opts.Restarts+1, "best_score", best)
	return nil, referenceframe.ErrNoSolution
}

// descend runs damped least squares from start. The returned score is the metric at the last
// iterate.
func (ik *JacobianIK) descend(
	goal referenceframe.IKGoal,
	scratch *referenceframe.RobotState,
	start []float64,
	metric StateMetric,
	threshold float64,
) ([]float64, float64, error) {
	values := append([]float64(nil), start...)
	n := len(values)
	score := math.Inf(1)

	for iter := 0; iter < ik.opts.MaxIterations; iter++ {
		state, r, err := ik.evaluate(goal, scratch, values)
		if err != nil {
			return nil, 0, err
		}
		score = metric(state)
		if score < threshold {
			return values, score, nil
		}

		jac := mat.NewDense(len(r), n, nil)
		probe := append([]float64(nil), values...)
		for i := 0; i < n; i++ {
			probe[i] = values[i] + defaultJump
			_, rj, err := ik.evaluate(goal, scratch, probe)
			if err != nil {
				return nil, 0, err
			}
			probe[i] = values[i]
			for row := range r {
				jac.Set(row, i, (rj[row]-r[row])/defaultJump)
			}
		}

		// (JᵀJ + λ²I) dq = -Jᵀr
		var lhs mat.Dense
		lhs.Mul(jac.T(), jac)
		for i := 0; i < n; i++ {
			lhs.Set(i, i, lhs.At(i, i)+ik.opts.Damping*ik.opts.Damping)
		}
		var rhs mat.VecDense
		rhs.MulVec(jac.T(), mat.NewVecDense(len(r), r))
		rhs.ScaleVec(-1, &rhs)

		var step mat.VecDense
		if err := step.SolveVec(&lhs, &rhs); err != nil {
			break
		}
		dq := step.RawVector().Data
		if norm := floats.Norm(dq, 2); norm > defaultMaxStep {
			floats.Scale(defaultMaxStep/norm, dq)
		} else if norm < defaultJump*defaultJump {
			break
		}
		floats.Add(values, dq)
		values = ik.clamp(values)
	}
	return values, score, nil
}

func (ik *JacobianIK) evaluate(
	goal referenceframe.IKGoal,
	scratch *referenceframe.RobotState,
	values []float64,
) (*State, []float64, error) {
	if err := scratch.SetGroupValues(ik.group, values); err != nil {
		return nil, nil, err
	}
	pose, err := scratch.LinkPose(goal.Link)
	if err != nil {
		return nil, nil, err
	}
	return &State{Position: pose, Configuration: values}, residual(goal, pose), nil
}

// clamp wraps continuous variables and keeps the rest within their bounds.
func (ik *JacobianIK) clamp(values []float64) []float64 {
	for i, v := range values {
		if ik.continuous[i] {
			values[i] = referenceframe.WrapAngle(v)
			continue
		}
		values[i] = ik.bounds[i].Clamp(v)
	}
	return values
}
