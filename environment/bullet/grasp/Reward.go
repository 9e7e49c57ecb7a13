package grasp

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/gograsp/environment"
	"github.com/samuelfneumann/gograsp/utils/floatutils"
	"gonum.org/v1/gonum/mat"
)

// IsSuccess returns whether the achieved goal is within the success
// distance threshold of the desired goal. The comparison is strict: a
// pair exactly at the threshold is not a success.
func (g *Grasp) IsSuccess(achieved, desired mat.Vector) bool {
	validateGoalPair("isSuccess", achieved, desired)
	return distance(achieved, desired) < g.distanceThreshold
}

// IsSuccessBatch is IsSuccess applied row-wise to a batch of
// (achieved, desired) pairs. The matrices must have the same number of
// rows and 3 columns.
func (g *Grasp) IsSuccessBatch(achieved, desired mat.Matrix) []bool {
	n := validateGoalBatch("isSuccessBatch", achieved, desired)

	success := make([]bool, n)
	for i := 0; i < n; i++ {
		success[i] = g.IsSuccess(rowVec(achieved, i), rowVec(desired, i))
	}
	return success
}

// ComputeReward returns the shaped reward for a single step. The
// reward is a hand-tuned linear combination: the gripper is drawn
// toward the object by an unbounded distance penalty, rewarded for
// being in position for a grasp (+1) and for holding the object (+5),
// driven toward the goal by a weighted object-target distance (×10),
// and penalized for contact that is not a grasp (×2).
//
// ComputeReward panics if info does not carry a 3-dimensional gripper
// tip position; a malformed info bundle is an integration error, not a
// recoverable condition.
func (g *Grasp) ComputeReward(achieved, desired mat.Vector,
	info environment.StepInfo) float64 {
	validateGoalPair("computeReward", achieved, desired)
	if info.PosTCP == nil {
		panic("computeReward: malformed info: no gripper tip position")
	}
	if info.PosTCP.Len() != 3 {
		panic(fmt.Sprintf("computeReward: malformed info: gripper tip "+
			"position should have 3 dimensions, got %v", info.PosTCP.Len()))
	}

	reachReward := distance(info.PosTCP, achieved)
	inPosition := g.positionForGrasp(info.PosTCP, achieved)

	var positionReward, graspReward, pushPenalty float64
	if inPosition {
		positionReward = 1.0
	}
	if inPosition && info.Collisions {
		graspReward = 1.0
	}
	if info.Collisions && !inPosition {
		pushPenalty = 1.0
	}

	objToTarget := distance(achieved, desired)

	return -reachReward + positionReward + 5.0*graspReward -
		10.0*objToTarget - 2.0*pushPenalty
}

// ComputeRewardBatch is ComputeReward applied row-wise to a batch of
// (achieved, desired, info) samples. Feeding a single sample as a
// length-1 batch yields the same reward as the scalar ComputeReward.
func (g *Grasp) ComputeRewardBatch(achieved, desired mat.Matrix,
	infos []environment.StepInfo) *mat.VecDense {
	n := validateGoalBatch("computeRewardBatch", achieved, desired)
	if len(infos) != n {
		panic(fmt.Sprintf("computeRewardBatch: got %v info records for %v "+
			"goal pairs", len(infos), n))
	}

	rewards := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		rewards.SetVec(i, g.ComputeReward(rowVec(achieved, i),
			rowVec(desired, i), infos[i]))
	}
	return rewards
}

// positionForGrasp returns whether the gripper tip is close enough to
// the object, per axis, to close on it
func (g *Grasp) positionForGrasp(posTCP, posObj mat.Vector) bool {
	dx := math.Abs(posTCP.AtVec(0) - posObj.AtVec(0))
	dy := math.Abs(posTCP.AtVec(1) - posObj.AtVec(1))
	dz := math.Abs(posTCP.AtVec(2) - posObj.AtVec(2))

	return dx < GraspTolXY && dy < GraspTolXY && dz < GraspTolZ
}

// HeightPenalty returns 1 if the object has been lifted more than
// LiftHeight above its starting height and 0 otherwise. It is an
// optional shaping term and is not used by ComputeReward.
func (g *Grasp) HeightPenalty(pos mat.Vector) float64 {
	if g.episode == nil {
		panic("heightPenalty: no starting height yet, call Reset first")
	}

	if pos.AtVec(2)-g.episode.initialHeight > LiftHeight {
		return 1.0
	}
	return 0.0
}

// HeightDiff returns how far the object has been lifted above its
// starting height, bounded to [0, LiftHeight]. It is an optional
// shaping term and is not used by ComputeReward.
func (g *Grasp) HeightDiff(pos mat.Vector) float64 {
	if g.episode == nil {
		panic("heightDiff: no starting height yet, call Reset first")
	}

	return floatutils.Clip(pos.AtVec(2)-g.episode.initialHeight, 0.0,
		LiftHeight)
}

// distance returns the euclidean distance between two points
func distance(a, b mat.Vector) float64 {
	diff := mat.NewVecDense(a.Len(), nil)
	diff.SubVec(a, b)
	return mat.Norm(diff, 2.0)
}

// validateGoalPair panics unless achieved and desired are both (x, y,
// z) coordinates
func validateGoalPair(op string, achieved, desired mat.Vector) {
	if achieved.Len() != 3 || desired.Len() != 3 {
		panic(fmt.Sprintf("%v: achieved and desired goals should be "+
			"(x, y, z) coordinates, got lengths %v and %v", op,
			achieved.Len(), desired.Len()))
	}
}

// validateGoalBatch panics unless achieved and desired are matching
// batches of (x, y, z) coordinates, returning the batch size
func validateGoalBatch(op string, achieved, desired mat.Matrix) int {
	ar, ac := achieved.Dims()
	dr, dc := desired.Dims()
	if ac != 3 || dc != 3 {
		panic(fmt.Sprintf("%v: achieved and desired goal batches should "+
			"have 3 columns, got %v and %v", op, ac, dc))
	}
	if ar != dr {
		panic(fmt.Sprintf("%v: achieved batch has %v rows but desired "+
			"batch has %v", op, ar, dr))
	}
	return ar
}

// rowVec returns row i of m as a vector
func rowVec(m mat.Matrix, i int) mat.Vector {
	_, c := m.Dims()
	row := mat.NewVecDense(c, nil)
	for j := 0; j < c; j++ {
		row.SetVec(j, m.At(i, j))
	}
	return row
}
