// Package bullet describes the physics backend that robot tasks run
// against. The backend itself lives outside this module; tasks only
// ever touch it through the Sim interface, so any engine that can
// create rigid bodies and report base kinematics can back a task.
package bullet

import "gonum.org/v1/gonum/mat"

// RGBA is a body colour. Components are in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// Sim is the surface of the physics backend that tasks consume. Bodies
// are addressed by the name they were created with. Methods that query
// or move a body return an error if the backend has no such body;
// tasks propagate these errors rather than recovering, since a task
// has no meaningful fallback for a broken physics backend.
type Sim interface {
	// CreatePlane creates an infinite ground plane at vertical offset
	// zOffset
	CreatePlane(zOffset float64) error

	// CreateTable creates a static table of the given dimensions whose
	// top surface lies at z = 0, shifted by xOffset along the x axis
	CreateTable(length, width, height, xOffset float64) error

	// CreateBox creates a box-shaped rigid body. halfExtents and
	// position must be 3-vectors. A ghost body takes part in no
	// collisions and is purely visual.
	CreateBox(body string, halfExtents mat.Vector, mass float64,
		position mat.Vector, color RGBA, ghost bool) error

	// SetLateralFriction sets the lateral friction of a link of a
	// body. Link -1 denotes the base.
	SetLateralFriction(body string, link int, friction float64) error

	// SetRollingFriction sets the rolling friction of a link of a
	// body. Link -1 denotes the base.
	SetRollingFriction(body string, link int, friction float64) error

	// BasePosition returns the (x, y, z) position of the base of a
	// body
	BasePosition(body string) (*mat.VecDense, error)

	// BaseOrientation returns the orientation of the base of a body as
	// an (x, y, z, w) quaternion
	BaseOrientation(body string) (*mat.VecDense, error)

	// BaseVelocity returns the linear velocity of the base of a body
	BaseVelocity(body string) (*mat.VecDense, error)

	// BaseAngularVelocity returns the angular velocity of the base of
	// a body
	BaseAngularVelocity(body string) (*mat.VecDense, error)

	// SetBasePose teleports the base of a body to the given position
	// and (x, y, z, w) quaternion orientation
	SetBasePose(body string, position, orientation mat.Vector) error

	// NoRendering runs f with rendering suspended. Rendering is
	// re-enabled when f returns, whether or not f returned an error,
	// so a partially built scene is never displayed.
	NoRendering(f func() error) error
}

// Identity returns the identity orientation as an (x, y, z, w)
// quaternion
func Identity() *mat.VecDense {
	return mat.NewVecDense(4, []float64{0.0, 0.0, 0.0, 1.0})
}
