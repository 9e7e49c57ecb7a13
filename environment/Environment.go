// Package environment outlines the interfaces and structs needed to
// implement concrete tasks and environments
package environment

import (
	"github.com/samuelfneumann/gograsp/timestep"
	"gonum.org/v1/gonum/mat"
)

// Starter implements a distribution of starting states and samples starting
// states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender decides whether a TimeStep is the last in an episode, adjusting
// the TimeStep's StepType and EndType fields when it is
type Ender interface {
	End(*timestep.TimeStep) bool
}

// StepInfo bundles the auxiliary per-step data that the robot
// controller supplies to a goal-conditioned task: the position of the
// gripper tip (tool centre point), whether a grasp action was taken,
// and whether the gripper is in contact with the object.
//
// StepInfo is produced by the controller collaborator, not by the task.
type StepInfo struct {
	PosTCP     *mat.VecDense
	Grasp      bool
	Collisions bool
}

// GoalTask implements a goal-conditioned task. On each episode reset
// the task draws a desired goal, and on each step the agent is scored
// on the goal it actually achieved. Unlike a Starter-based task, a
// GoalTask owns its start-state distribution and writes sampled poses
// directly into its physics backend.
//
// DesiredGoal returns an error if called before the first Reset; there
// is no goal to return yet and a default value would silently corrupt
// reward computation.
type GoalTask interface {
	Ender

	Reset() error
	Obs() (*mat.VecDense, error)
	AchievedGoal() (*mat.VecDense, error)
	DesiredGoal() (*mat.VecDense, error)

	IsSuccess(achieved, desired mat.Vector) bool
	ComputeReward(achieved, desired mat.Vector, info StepInfo) float64

	ObservationSpec() Spec
	GoalSpec() Spec
	RewardSpec() Spec

	// Min and Max return the minimum and maximum attainable rewards
	Min() float64
	Max() float64
}
