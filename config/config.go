// Package config defines the JSON configuration of the sampler selection tool.
package config

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/ipa-fxm-rc/moveit-core/constraintsamplers"
	"github.com/ipa-fxm-rc/moveit-core/motionplan/ik"
)

// defaultIKAttempts matches the number of goal draws an IK sampler makes when nothing is configured.
const defaultIKAttempts = 10

// AllocatorConfig names a registered allocator type and its raw attributes.
type AllocatorConfig = constraintsamplers.AllocatorConfig

// Config describes which model to load and how samplers get selected for it.
type Config struct {
	ConfigFilePath string `json:"-"`

	Model      string            `json:"model"`
	IK         IKConfig          `json:"ik"`
	IKGroups   []string          `json:"ik_groups,omitempty"`
	Allocators []AllocatorConfig `json:"allocators,omitempty"`
	Debug      bool              `json:"debug,omitempty"`
}

// IKConfig tunes IK sampling and the jacobian solver attached to the IK groups.
type IKConfig struct {
	Attempts      int     `json:"attempts,omitempty"`
	MaxIterations int     `json:"max_iterations,omitempty"`
	GoalThreshold float64 `json:"goal_threshold,omitempty"`
	// nil keeps the solver default, 0 disables restarts.
	Restarts      *int    `json:"restarts,omitempty"`
}

// JacobianOptions converts the solver settings. Unset fields fall back to the solver defaults.
func (c IKConfig) JacobianOptions() ik.JacobianOptions {
	opts := ik.NewDefaultJacobianOptions()
	if c.MaxIterations > 0 {
		opts.MaxIterations = c.MaxIterations
	}
	if c.GoalThreshold > 0 {
		opts.GoalThreshold = c.GoalThreshold
	}
	if c.Restarts != nil {
		opts.Restarts = *c.Restarts
	}
	return opts
}

// Validate returns every problem with the IK settings.
func (c IKConfig) Validate(path string) error {
	var err error
	if c.Attempts < 0 {
		err = multierr.Append(err, errors.Errorf("%s.attempts must not be negative, got %d", path, c.Attempts))
	}
	if c.MaxIterations < 0 {
		err = multierr.Append(err, errors.Errorf("%s.max_iterations must not be negative, got %d", path, c.MaxIterations))
	}
	if c.Restarts != nil && *c.Restarts < 0 {
		err = multierr.Append(err, errors.Errorf("%s.restarts must not be negative, got %d", path, *c.Restarts))
	}
	if c.GoalThreshold < 0 || math.IsNaN(c.GoalThreshold) || math.IsInf(c.GoalThreshold, 0) {
		err = multierr.Append(err, errors.Errorf("%s.goal_threshold must be a finite non-negative number, got %v", path, c.GoalThreshold))
	}
	return err
}

// Validate returns every problem with the configuration combined into one error.
func (c *Config) Validate() error {
	var err error
	if c.Model == "" {
		err = multierr.Append(err, errors.New("model: path to a kinematics file is required"))
	}
	err = multierr.Append(err, c.IK.Validate("ik"))

	for idx, g := range c.IKGroups {
		if g == "" {
			err = multierr.Append(err, errors.Errorf("ik_groups.%d: group name is empty", idx))
		}
	}
	if dups := lo.FindDuplicates(c.IKGroups); len(dups) > 0 {
		err = multierr.Append(err, errors.Errorf("ik_groups: duplicate groups %v", dups))
	}

	for idx, a := range c.Allocators {
		if a.Type == "" {
			err = multierr.Append(err, errors.Errorf("%s: allocator type is required", fmt.Sprintf("allocators.%d", idx)))
		}
	}
	return err
}

func (c *Config) applyDefaults() {
	if c.IK.Attempts == 0 {
		c.IK.Attempts = defaultIKAttempts
	}
}

// ManagerOptions returns the manager options implied by the configuration.
func (c *Config) ManagerOptions() []constraintsamplers.ManagerOption {
	return []constraintsamplers.ManagerOption{constraintsamplers.WithIKAttempts(c.IK.Attempts)}
}
