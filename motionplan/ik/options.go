package ik

// default values for the jacobian solver.
const (
	// Number of damped least squares steps per restart.
	defaultMaxIterations = 200

	// Number of random restarts after the seed fails to converge.
	defaultRestarts = 3

	// A solution counts once both the position error and the rotation error are below this.
	defaultGoalThreshold = 1e-4

	// Levenberg-Marquardt damping.
	defaultDamping = 0.05

	// Largest joint-space step taken in one iteration.
	defaultMaxStep = 0.5

	// Finite difference used for the numeric jacobian.
	defaultJump = 1e-6
)

// JacobianOptions tune the jacobian solver. Zero values select the defaults, except Restarts where
// zero means the seed is the only start.
type JacobianOptions struct {
	MaxIterations int     `json:"max_iterations"`
	Restarts      int     `json:"restarts"`
	GoalThreshold float64 `json:"goal_threshold"`
	Damping       float64 `json:"damping"`
}

// NewDefaultJacobianOptions returns the default options.
func NewDefaultJacobianOptions() JacobianOptions {
	return JacobianOptions{
		MaxIterations: defaultMaxIterations,
		Restarts:      defaultRestarts,
		GoalThreshold: defaultGoalThreshold,
		Damping:       defaultDamping,
	}
}

func (opts JacobianOptions) withDefaults() JacobianOptions {
	if opts.MaxIterations < 1 {
		opts.MaxIterations = defaultMaxIterations
	}
	if opts.Restarts < 0 {
		opts.Restarts = 0
	}
	if opts.GoalThreshold <= 0 {
		opts.GoalThreshold = defaultGoalThreshold
	}
	if opts.Damping <= 0 {
		opts.Damping = defaultDamping
	}
	return opts
}
