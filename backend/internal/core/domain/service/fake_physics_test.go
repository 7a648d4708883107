package service

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"stacker/backend/internal/core/domain/entity"
	"stacker/backend/internal/core/port/out/physics"
)

// fakeBody тело с полностью управляемым из теста состоянием
type fakeBody struct {
	req       physics.CreateBodyRequest
	pos       mgl64.Vec3
	vel       mgl64.Vec3
	angVel    mgl64.Vec3
	kinematic bool
}

// fakePhysics скриптуемая реализация PhysicsPort
type fakePhysics struct {
	bodies  map[entity.Handle]*fakeBody
	removed map[entity.Handle]bool
	next    entity.Handle

	contacts map[entity.Handle][]physics.ContactPoint
	ray      physics.RayResult
	failNext error

	steps           int
	stepsAtContacts []int
	onStep          func(dt float64)
}

var _ physics.PhysicsPort = (*fakePhysics)(nil)

func newFakePhysics() *fakePhysics {
	return &fakePhysics{
		bodies:   make(map[entity.Handle]*fakeBody),
		removed:  make(map[entity.Handle]bool),
		contacts: make(map[entity.Handle][]physics.ContactPoint),
	}
}

func (f *fakePhysics) CreateBody(req physics.CreateBodyRequest) (entity.Handle, error) {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return 0, fmt.Errorf("fake: %w", err)
	}
	f.next++
	f.bodies[f.next] = &fakeBody{req: req, pos: req.Position}
	return f.next, nil
}

func (f *fakePhysics) RemoveBody(h entity.Handle) {
	if _, ok := f.bodies[h]; ok {
		delete(f.bodies, h)
		f.removed[h] = true
	}
}

func (f *fakePhysics) body(h entity.Handle) *fakeBody {
	if b, ok := f.bodies[h]; ok {
		return b
	}
	return &fakeBody{}
}

func (f *fakePhysics) Position(h entity.Handle) mgl64.Vec3         { return f.body(h).pos }
func (f *fakePhysics) SetPosition(h entity.Handle, pos mgl64.Vec3) { f.body(h).pos = pos }
func (f *fakePhysics) Rotation(h entity.Handle) mgl64.Quat         { return mgl64.QuatIdent() }
func (f *fakePhysics) LinearVelocity(h entity.Handle) mgl64.Vec3   { return f.body(h).vel }
func (f *fakePhysics) SetLinearVelocity(h entity.Handle, v mgl64.Vec3) {
	f.body(h).vel = v
}
func (f *fakePhysics) AngularVelocity(h entity.Handle) mgl64.Vec3 { return f.body(h).angVel }
func (f *fakePhysics) SetAngularVelocity(h entity.Handle, v mgl64.Vec3) {
	f.body(h).angVel = v
}
func (f *fakePhysics) SetKinematic(h entity.Handle, kinematic bool) { f.body(h).kinematic = kinematic }
func (f *fakePhysics) IsKinematic(h entity.Handle) bool             { return f.body(h).kinematic }

func (f *fakePhysics) Step(dt float64) {
	f.steps++
	if f.onStep != nil {
		f.onStep(dt)
	}
}

func (f *fakePhysics) RayTestClosest(from, to mgl64.Vec3) physics.RayResult {
	return f.ray
}

func (f *fakePhysics) Contacts(h entity.Handle) []physics.ContactPoint {
	f.stepsAtContacts = append(f.stepsAtContacts, f.steps)
	return f.contacts[h]
}

func (f *fakePhysics) Close() error { return nil }
