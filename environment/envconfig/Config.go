// Package envconfig provides configuration structs for configuring
// tasks with default parameters. Task configurations in this package
// are JSON serializable.
package envconfig

import (
	"fmt"

	env "github.com/samuelfneumann/gograsp/environment"
	"github.com/samuelfneumann/gograsp/environment/bullet"
	"github.com/samuelfneumann/gograsp/environment/bullet/grasp"
)

// TaskName stores the names of tasks that can be configured with this
// package
type TaskName string

// Tasks available for configuration
const (
	GraspCube TaskName = "GraspCube"
)

// Default task parameters
const (
	DefaultDistanceThreshold float64 = 0.05
	DefaultObjectHalfSize    float64 = 0.02
	DefaultGoalXYRange       float64 = 0.1
	DefaultGoalZRange        float64 = 0.0
	DefaultObjXYRange        float64 = 0.1
	DefaultEpisodeCutoff     uint    = 50
)

// Config implements a specific configuration of a specific task
type Config struct {
	Task              TaskName
	RewardType        grasp.RewardType
	DistanceThreshold float64
	ObjectHalfSize    float64
	GoalXYRange       float64
	GoalZRange        float64
	ObjXYRange        float64
	EpisodeCutoff     uint
}

// NewConfig returns a new task Config with default parameters
func NewConfig(taskName TaskName, rewardType grasp.RewardType) Config {
	return Config{
		Task:              taskName,
		RewardType:        rewardType,
		DistanceThreshold: DefaultDistanceThreshold,
		ObjectHalfSize:    DefaultObjectHalfSize,
		GoalXYRange:       DefaultGoalXYRange,
		GoalZRange:        DefaultGoalZRange,
		ObjXYRange:        DefaultObjXYRange,
		EpisodeCutoff:     DefaultEpisodeCutoff,
	}
}

// Create returns the task described by the Config, backed by the
// physics backend sim
func (c Config) Create(sim bullet.Sim, seed uint64) (env.GoalTask, error) {
	switch c.Task {
	case GraspCube:
		return grasp.New(sim, c.RewardType, c.DistanceThreshold,
			c.ObjectHalfSize, c.GoalXYRange, c.GoalZRange, c.ObjXYRange,
			seed, int(c.EpisodeCutoff))
	}

	return nil, fmt.Errorf("create: cannot create task %v, no such task",
		c.Task)
}
