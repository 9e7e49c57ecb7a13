// Package grasp implements a goal-conditioned single-object grasping
// task. A cube is placed on a table in front of the robot, and on each
// episode a target position for the cube is drawn. The agent is
// rewarded for bringing the gripper to the cube, closing on it, and
// moving it to the target, and penalized for pushing the cube around
// without grasping it.
package grasp

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/gograsp/environment"
	"github.com/samuelfneumann/gograsp/environment/bullet"
	ts "github.com/samuelfneumann/gograsp/timestep"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// RewardType determines the kind of reward signal a task emits
type RewardType string

const (
	Sparse RewardType = "sparse"
	Dense  RewardType = "dense"
)

// Body names of the scene entities created by the task
const (
	ObjectName string = "object"
	TargetName string = "target"
)

// Scene geometry
const (
	PlaneZOffset float64 = -0.4
	TableLength  float64 = 1.1
	TableWidth   float64 = 0.7
	TableHeight  float64 = 0.4
	TableXOffset float64 = -0.3

	ObjectMass      float64 = 1.0
	LateralFriction float64 = 10.0
	RollingFriction float64 = 0.01
)

// LiftHeight is the height above the table surface at which goals are
// centred. It also bounds the shaped lift-height term of HeightDiff.
const LiftHeight float64 = 0.15

// FlatGoalProb is the probability that a sampled goal lies exactly at
// the goal base height, modelling "grasp but don't lift" targets.
const FlatGoalProb float64 = 0.3

// Per-axis gripper-object tolerances within which the gripper is
// considered in position for a grasp. The vertical tolerance is
// tighter: the gripper must cage the cube, not hover above it.
const (
	GraspTolXY float64 = 0.02
	GraspTolZ  float64 = 0.01
)

// episode holds the state drawn at reset. It is replaced wholesale on
// every Reset and never partially mutated, so a non-nil episode always
// carries a consistent (goal, initialHeight) pair.
type episode struct {
	goal          *mat.VecDense
	initialHeight float64
}

// Grasp implements the grasping task. It satisfies
// environment.GoalTask.
//
// Grasp fronts a physics backend through the bullet.Sim interface: the
// scene is created once at construction, and every Reset writes a
// freshly sampled object pose and goal marker pose into the backend.
// Grasp is not safe for concurrent use; the owning episode loop is
// expected to serialize all calls.
type Grasp struct {
	sim bullet.Sim

	rewardType        RewardType
	distanceThreshold float64
	halfSize          float64

	goalBounds []r1.Interval
	objBounds  []r1.Interval

	// Random number generation for goals and object starting
	// positions. All draws share one source so that a single seed
	// fixes the full episode sequence.
	seed    uint64
	goalRng *distmv.Uniform
	objRng  *distmv.Uniform
	coin    *rand.Rand

	episode *episode // nil until the first Reset

	stepLimit environment.Ender
	goalEnder environment.Ender
}

// New returns a new Grasp task backed by sim. The goal is sampled
// within ±goalXYRange/2 laterally and [0, goalZRange] vertically of
// the goal base point; the object starts within ±objXYRange/2 of its
// base point, always resting on the table surface. Episodes are cut
// off after cutoff steps. The scene is created immediately, with
// rendering suspended.
func New(sim bullet.Sim, rewardType RewardType, distanceThreshold,
	halfSize, goalXYRange, goalZRange, objXYRange float64, seed uint64,
	cutoff int) (*Grasp, error) {
	if sim == nil {
		return nil, fmt.Errorf("new: no physics backend given")
	}
	if rewardType != Sparse && rewardType != Dense {
		return nil, fmt.Errorf("new: no such reward type %v", rewardType)
	}
	if distanceThreshold <= 0 {
		return nil, fmt.Errorf("new: distance threshold %v must be positive",
			distanceThreshold)
	}
	if halfSize <= 0 {
		return nil, fmt.Errorf("new: object half-size %v must be positive",
			halfSize)
	}
	if goalXYRange < 0 || goalZRange < 0 || objXYRange < 0 {
		return nil, fmt.Errorf("new: sampling ranges must be non-negative")
	}
	if cutoff <= 0 {
		return nil, fmt.Errorf("new: episode cutoff %v must be positive",
			cutoff)
	}

	goalBounds := []r1.Interval{
		{Min: -goalXYRange / 2, Max: goalXYRange / 2},
		{Min: -goalXYRange / 2, Max: goalXYRange / 2},
		{Min: 0.0, Max: goalZRange},
	}

	// The object always starts on the table surface
	objBounds := []r1.Interval{
		{Min: -objXYRange / 2, Max: objXYRange / 2},
		{Min: -objXYRange / 2, Max: objXYRange / 2},
		{Min: 0.0, Max: 0.0},
	}

	src := rand.NewSource(seed)
	g := &Grasp{
		sim:               sim,
		rewardType:        rewardType,
		distanceThreshold: distanceThreshold,
		halfSize:          halfSize,
		goalBounds:        goalBounds,
		objBounds:         objBounds,
		seed:              seed,
		goalRng:           distmv.NewUniform(goalBounds, src),
		objRng:            distmv.NewUniform(objBounds, src),
		coin:              rand.New(src),
		stepLimit:         environment.NewStepLimit(cutoff),
	}
	g.goalEnder = environment.NewFunctionEnder(g.obsAtGoal,
		ts.TerminalStateReached)

	err := sim.NoRendering(g.createScene)
	if err != nil {
		return nil, fmt.Errorf("new: could not create scene: %v", err)
	}

	return g, nil
}

// createScene builds the static scene: a ground plane, a table, the
// dynamic object cube, and a ghost cube marking the goal. The object
// gets high lateral friction and low rolling friction so that it can
// be grasped rather than rolling away.
func (g *Grasp) createScene() error {
	if err := g.sim.CreatePlane(PlaneZOffset); err != nil {
		return err
	}
	if err := g.sim.CreateTable(TableLength, TableWidth, TableHeight,
		TableXOffset); err != nil {
		return err
	}

	halfExtents := mat.NewVecDense(3, []float64{
		g.halfSize,
		g.halfSize,
		g.halfSize,
	})

	err := g.sim.CreateBox(ObjectName, halfExtents, ObjectMass,
		mat.NewVecDense(3, []float64{0.0, -0.2, g.halfSize}),
		bullet.RGBA{R: 0.1, G: 0.9, B: 0.1, A: 1.0}, false)
	if err != nil {
		return err
	}
	if err := g.sim.SetLateralFriction(ObjectName, -1,
		LateralFriction); err != nil {
		return err
	}
	if err := g.sim.SetRollingFriction(ObjectName, -1,
		RollingFriction); err != nil {
		return err
	}

	return g.sim.CreateBox(TargetName, halfExtents, 0.0,
		mat.NewVecDense(3, []float64{0.0, 0.2, 0.1}),
		bullet.RGBA{R: 0.1, G: 0.9, B: 0.1, A: 0.3}, true)
}

// Reset starts a new episode. A new goal and object starting position
// are sampled and written into the physics backend, and the episode
// state is replaced wholesale.
func (g *Grasp) Reset() error {
	goal := g.sampleGoal()
	objectPosition := g.sampleObject()

	err := g.sim.SetBasePose(TargetName, goal, bullet.Identity())
	if err != nil {
		return fmt.Errorf("reset: could not place target: %v", err)
	}
	err = g.sim.SetBasePose(ObjectName, objectPosition, bullet.Identity())
	if err != nil {
		return fmt.Errorf("reset: could not place object: %v", err)
	}

	position, err := g.sim.BasePosition(ObjectName)
	if err != nil {
		return fmt.Errorf("reset: could not read object position: %v", err)
	}

	g.episode = &episode{
		goal:          goal,
		initialHeight: position.AtVec(2),
	}
	return nil
}

// sampleGoal samples a target position for the object. With
// probability FlatGoalProb the vertical noise component is zeroed so
// that the goal lies exactly at the goal base height.
func (g *Grasp) sampleGoal() *mat.VecDense {
	noise := g.goalRng.Rand(nil)
	if g.coin.Float64() < FlatGoalProb {
		noise[2] = 0.0
	}

	goal := mat.NewVecDense(3, []float64{
		0.0,
		0.2,
		LiftHeight + g.halfSize,
	})
	goal.AddVec(goal, mat.NewVecDense(3, noise))
	return goal
}

// sampleObject samples a starting position for the object on the table
// surface.
func (g *Grasp) sampleObject() *mat.VecDense {
	noise := g.objRng.Rand(nil)

	position := mat.NewVecDense(3, []float64{0.0, -0.2, g.halfSize})
	position.AddVec(position, mat.NewVecDense(3, noise))
	return position
}

// Obs returns the current observation: the object's position, its
// orientation as an (x, y, z, w) quaternion, its linear velocity, and
// its angular velocity.
func (g *Grasp) Obs() (*mat.VecDense, error) {
	position, err := g.sim.BasePosition(ObjectName)
	if err != nil {
		return nil, fmt.Errorf("obs: %v", err)
	}
	orientation, err := g.sim.BaseOrientation(ObjectName)
	if err != nil {
		return nil, fmt.Errorf("obs: %v", err)
	}
	velocity, err := g.sim.BaseVelocity(ObjectName)
	if err != nil {
		return nil, fmt.Errorf("obs: %v", err)
	}
	angularVelocity, err := g.sim.BaseAngularVelocity(ObjectName)
	if err != nil {
		return nil, fmt.Errorf("obs: %v", err)
	}

	backing := make([]float64, 0, 13)
	backing = append(backing, position.RawVector().Data...)
	backing = append(backing, orientation.RawVector().Data...)
	backing = append(backing, velocity.RawVector().Data...)
	backing = append(backing, angularVelocity.RawVector().Data...)

	return mat.NewVecDense(13, backing), nil
}

// AchievedGoal returns the goal the agent has currently achieved: the
// object's position.
func (g *Grasp) AchievedGoal() (*mat.VecDense, error) {
	position, err := g.sim.BasePosition(ObjectName)
	if err != nil {
		return nil, fmt.Errorf("achievedGoal: %v", err)
	}
	return position, nil
}

// DesiredGoal returns a copy of the episode's goal. An error is
// returned if no episode has been started yet.
func (g *Grasp) DesiredGoal() (*mat.VecDense, error) {
	if g.episode == nil {
		return nil, fmt.Errorf("desiredGoal: no goal yet, call Reset first")
	}

	goal := mat.NewVecDense(3, nil)
	goal.CopyVec(g.episode.goal)
	return goal, nil
}

// End checks if a TimeStep is the last in an episode. If so, it
// adjusts the TimeStep's StepType and EndType and returns true.
// Episodes end when the object reaches the goal or at the step limit.
func (g *Grasp) End(t *ts.TimeStep) bool {
	if g.episode == nil {
		panic("end: no goal yet, call Reset first")
	}

	if end := g.goalEnder.End(t); end {
		return true
	}
	if end := g.stepLimit.End(t); end {
		return true
	}
	return false
}

// obsAtGoal reports whether the object position carried in an
// observation vector is within the success threshold of the goal
func (g *Grasp) obsAtGoal(obs *mat.VecDense) bool {
	return g.IsSuccess(obs.SliceVec(0, 3), g.episode.goal)
}

// RewardType returns the kind of reward signal the task was configured
// with
func (g *Grasp) RewardType() RewardType {
	return g.rewardType
}

// DistanceThreshold returns the success distance threshold
func (g *Grasp) DistanceThreshold() float64 {
	return g.distanceThreshold
}

// HalfSize returns the half-extent of the object cube along each axis
func (g *Grasp) HalfSize() float64 {
	return g.halfSize
}

// ObservationSpec returns the observation specification of the task
func (g *Grasp) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(13, nil)

	low := make([]float64, 13)
	high := make([]float64, 13)
	for i := range low {
		low[i] = math.Inf(-1.0)
		high[i] = math.Inf(1.0)
	}

	return environment.NewSpec(shape, environment.Observation,
		mat.NewVecDense(13, low), mat.NewVecDense(13, high),
		environment.Continuous)
}

// GoalSpec returns the specification of the task's goal space
func (g *Grasp) GoalSpec() environment.Spec {
	shape := mat.NewVecDense(3, nil)

	base := []float64{0.0, 0.2, LiftHeight + g.halfSize}
	low := make([]float64, 3)
	high := make([]float64, 3)
	for i := range base {
		low[i] = base[i] + g.goalBounds[i].Min
		high[i] = base[i] + g.goalBounds[i].Max
	}

	return environment.NewSpec(shape, environment.Goal,
		mat.NewVecDense(3, low), mat.NewVecDense(3, high),
		environment.Continuous)
}

// RewardSpec returns the reward specification of the task
func (g *Grasp) RewardSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	low := mat.NewVecDense(1, []float64{g.Min()})
	high := mat.NewVecDense(1, []float64{g.Max()})

	return environment.NewSpec(shape, environment.Reward, low, high,
		environment.Continuous)
}

// Min returns the minimum attainable reward. The shaped reward
// subtracts unbounded distance terms, so there is no finite minimum.
func (g *Grasp) Min() float64 {
	return math.Inf(-1.0)
}

// Max returns the maximum attainable reward: the gripper is in
// position on the object (+1), holding it (+5), with both distance
// terms and the pushing penalty at zero.
func (g *Grasp) Max() float64 {
	return 6.0
}
