package grasp_test

import (
	"fmt"

	"github.com/samuelfneumann/gograsp/environment/bullet"
	"gonum.org/v1/gonum/mat"
)

// fakeBody records the state of a single body in a fakeSim
type fakeBody struct {
	halfExtents     *mat.VecDense
	mass            float64
	color           bullet.RGBA
	ghost           bool
	lateralFriction float64
	rollingFriction float64

	position        *mat.VecDense
	orientation     *mat.VecDense
	velocity        *mat.VecDense
	angularVelocity *mat.VecDense
}

// fakeSim is an in-memory physics backend standing in for a real one.
// It records every body it is asked to create and the rendering state
// at the time, and hands poses back unchanged. There are no dynamics.
type fakeSim struct {
	bodies map[string]*fakeBody

	planeZOffset   float64
	planeCreated   bool
	tableCreated   bool
	tableLength    float64
	tableWidth     float64
	tableHeight    float64
	tableXOffset   float64
	renderingOff   bool
	builtRendering bool // true if any body was created while rendering
}

func newFakeSim() *fakeSim {
	return &fakeSim{bodies: make(map[string]*fakeBody)}
}

func (f *fakeSim) CreatePlane(zOffset float64) error {
	f.planeCreated = true
	f.planeZOffset = zOffset
	if !f.renderingOff {
		f.builtRendering = true
	}
	return nil
}

func (f *fakeSim) CreateTable(length, width, height, xOffset float64) error {
	f.tableCreated = true
	f.tableLength = length
	f.tableWidth = width
	f.tableHeight = height
	f.tableXOffset = xOffset
	if !f.renderingOff {
		f.builtRendering = true
	}
	return nil
}

func (f *fakeSim) CreateBox(body string, halfExtents mat.Vector, mass float64,
	position mat.Vector, color bullet.RGBA, ghost bool) error {
	if _, ok := f.bodies[body]; ok {
		return fmt.Errorf("createBox: body %v already exists", body)
	}
	if !f.renderingOff {
		f.builtRendering = true
	}

	f.bodies[body] = &fakeBody{
		halfExtents:     copyVec(halfExtents),
		mass:            mass,
		color:           color,
		ghost:           ghost,
		position:        copyVec(position),
		orientation:     bullet.Identity(),
		velocity:        mat.NewVecDense(3, nil),
		angularVelocity: mat.NewVecDense(3, nil),
	}
	return nil
}

func (f *fakeSim) SetLateralFriction(body string, link int,
	friction float64) error {
	b, err := f.body(body)
	if err != nil {
		return err
	}
	b.lateralFriction = friction
	return nil
}

func (f *fakeSim) SetRollingFriction(body string, link int,
	friction float64) error {
	b, err := f.body(body)
	if err != nil {
		return err
	}
	b.rollingFriction = friction
	return nil
}

func (f *fakeSim) BasePosition(body string) (*mat.VecDense, error) {
	b, err := f.body(body)
	if err != nil {
		return nil, err
	}
	return copyVec(b.position), nil
}

func (f *fakeSim) BaseOrientation(body string) (*mat.VecDense, error) {
	b, err := f.body(body)
	if err != nil {
		return nil, err
	}
	return copyVec(b.orientation), nil
}

func (f *fakeSim) BaseVelocity(body string) (*mat.VecDense, error) {
	b, err := f.body(body)
	if err != nil {
		return nil, err
	}
	return copyVec(b.velocity), nil
}

func (f *fakeSim) BaseAngularVelocity(body string) (*mat.VecDense, error) {
	b, err := f.body(body)
	if err != nil {
		return nil, err
	}
	return copyVec(b.angularVelocity), nil
}

func (f *fakeSim) SetBasePose(body string, position,
	orientation mat.Vector) error {
	b, err := f.body(body)
	if err != nil {
		return err
	}
	b.position = copyVec(position)
	b.orientation = copyVec(orientation)
	return nil
}

func (f *fakeSim) NoRendering(run func() error) error {
	f.renderingOff = true
	defer func() { f.renderingOff = false }()
	return run()
}

func (f *fakeSim) body(name string) (*fakeBody, error) {
	b, ok := f.bodies[name]
	if !ok {
		return nil, fmt.Errorf("no such body %v", name)
	}
	return b, nil
}

func copyVec(v mat.Vector) *mat.VecDense {
	out := mat.NewVecDense(v.Len(), nil)
	out.CopyVec(v)
	return out
}
