package physics

import (
	"errors"
	"io"
	"log"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"stacker/backend/internal/core/domain/entity"
	portPhysics "stacker/backend/internal/core/port/out/physics"
)

func newTestAdapter(t *testing.T) *CPPhysicsAdapter {
	t.Helper()
	adapter := NewCPPhysicsAdapter(log.New(io.Discard, "", 0))
	t.Cleanup(func() { adapter.Close() })
	return adapter
}

func mustCreate(t *testing.T, a *CPPhysicsAdapter, req portPhysics.CreateBodyRequest) entity.Handle {
	t.Helper()
	h, err := a.CreateBody(req)
	if err != nil {
		t.Fatalf("CreateBody failed: %v", err)
	}
	return h
}

func createFloor(t *testing.T, a *CPPhysicsAdapter) entity.Handle {
	return mustCreate(t, a, portPhysics.CreateBodyRequest{
		Shape:    portPhysics.ShapeBox,
		Size:     mgl64.Vec3{1000, 1000, 0.5},
		Position: mgl64.Vec3{0, 0, -5},
		Mass:     0,
	})
}

func simulate(a *CPPhysicsAdapter, seconds float64) {
	const dt = 1.0 / 60.0
	for i := 0; i < int(seconds/dt); i++ {
		a.Step(dt)
	}
}

func TestCPPhysicsAdapter_BoxSettlesOnFloor(t *testing.T) {
	a := newTestAdapter(t)
	floor := createFloor(t, a)
	box := mustCreate(t, a, portPhysics.CreateBodyRequest{
		Shape:    portPhysics.ShapeBox,
		Size:     mgl64.Vec3{1, 1, 1},
		Position: mgl64.Vec3{0, 2, 0},
		Mass:     5,
	})

	simulate(a, 3)

	// Проникновение ограничено CollisionSlop, а не пиксельным значением Chipmunk
	pos := a.Position(box)
	if math.Abs(pos.Z()-(-4.25)) > 0.03 {
		t.Errorf("Expected box to rest at z≈-4.25, got %.3f", pos.Z())
	}
	if pos.Y() != 2 {
		t.Errorf("Out-of-plane coordinate must be preserved, got %.3f", pos.Y())
	}
	if speed := a.LinearVelocity(box).Len(); speed > 0.1 {
		t.Errorf("Expected settled box, speed %.3f", speed)
	}

	found := false
	for _, c := range a.Contacts(box) {
		if c.Other == floor {
			found = true
		}
	}
	if !found {
		t.Error("Expected a contact between box and floor")
	}
}

func TestCPPhysicsAdapter_KinematicBodyIgnoresGravity(t *testing.T) {
	a := newTestAdapter(t)
	box := mustCreate(t, a, portPhysics.CreateBodyRequest{
		Shape:    portPhysics.ShapeBox,
		Size:     mgl64.Vec3{1, 1, 1},
		Position: mgl64.Vec3{0, 0, 10},
		Mass:     5,
	})

	a.SetKinematic(box, true)
	if !a.IsKinematic(box) {
		t.Fatal("Expected kinematic body")
	}

	simulate(a, 1)
	if z := a.Position(box).Z(); math.Abs(z-10) > 1e-9 {
		t.Errorf("Kinematic body moved to z=%.3f", z)
	}

	a.SetKinematic(box, false)
	simulate(a, 0.5)
	if z := a.Position(box).Z(); z >= 10 {
		t.Errorf("Released body should fall, z=%.3f", z)
	}
}

func TestCPPhysicsAdapter_RayTestClosest(t *testing.T) {
	a := newTestAdapter(t)
	floor := createFloor(t, a)
	box := mustCreate(t, a, portPhysics.CreateBodyRequest{
		Shape:    portPhysics.ShapeBox,
		Size:     mgl64.Vec3{1, 1, 1},
		Position: mgl64.Vec3{0, 0, 0},
		Mass:     0,
	})

	hit := a.RayTestClosest(mgl64.Vec3{0, 0, 20}, mgl64.Vec3{0, 0, -20})
	if !hit.Hit || hit.Handle != box {
		t.Fatalf("Expected ray to hit the box first, got %+v", hit)
	}
	if math.Abs(hit.Point.Z()-0.5) > 1e-6 {
		t.Errorf("Expected hit at z=0.5, got %.3f", hit.Point.Z())
	}

	side := a.RayTestClosest(mgl64.Vec3{10, 0, 20}, mgl64.Vec3{10, 0, -20})
	if !side.Hit || side.Handle != floor {
		t.Errorf("Expected ray to hit the floor, got %+v", side)
	}

	miss := a.RayTestClosest(mgl64.Vec3{0, 0, 20}, mgl64.Vec3{0, 0, 10})
	if miss.Hit {
		t.Errorf("Expected miss, got %+v", miss)
	}
}

func TestCPPhysicsAdapter_CapsuleAndVelocity(t *testing.T) {
	a := newTestAdapter(t)
	capsule := mustCreate(t, a, portPhysics.CreateBodyRequest{
		Shape:    portPhysics.ShapeCapsule,
		Size:     mgl64.Vec3{0.5, 1, 0},
		Position: mgl64.Vec3{0, 0, 0},
		Mass:     1,
	})

	a.SetLinearVelocity(capsule, mgl64.Vec3{3, 7, 0})
	a.SetAngularVelocity(capsule, mgl64.Vec3{0, 2, 0})

	v := a.LinearVelocity(capsule)
	if v.X() != 3 || v.Y() != 0 {
		t.Errorf("Unexpected velocity %v", v)
	}
	if w := a.AngularVelocity(capsule); w.Y() != 2 {
		t.Errorf("Unexpected angular velocity %v", w)
	}
}

func TestCPPhysicsAdapter_InvalidShapes(t *testing.T) {
	a := newTestAdapter(t)

	cases := []portPhysics.CreateBodyRequest{
		{Shape: portPhysics.ShapeNone, Size: mgl64.Vec3{1, 1, 1}, Mass: 1},
		{Shape: portPhysics.ShapeBox, Size: mgl64.Vec3{0, 1, 1}, Mass: 1},
		{Shape: portPhysics.ShapeCapsule, Size: mgl64.Vec3{-1, 1, 0}, Mass: 1},
		{Shape: portPhysics.ShapeBox, Size: mgl64.Vec3{1, 1, 1}, Mass: -1},
	}

	for _, req := range cases {
		if _, err := a.CreateBody(req); !errors.Is(err, portPhysics.ErrInvalidShape) {
			t.Errorf("Expected ErrInvalidShape for %+v, got %v", req, err)
		}
	}
	if a.BodyCount() != 0 {
		t.Errorf("No bodies should be created, got %d", a.BodyCount())
	}
}

func TestCPPhysicsAdapter_RemoveBody(t *testing.T) {
	a := newTestAdapter(t)
	floor := createFloor(t, a)

	a.RemoveBody(floor)
	a.RemoveBody(floor)

	if a.BodyCount() != 0 {
		t.Errorf("Expected empty space, got %d bodies", a.BodyCount())
	}
	if a.Position(floor) != (mgl64.Vec3{}) {
		t.Error("Removed body must report zero position")
	}
	if hit := a.RayTestClosest(mgl64.Vec3{0, 0, 20}, mgl64.Vec3{0, 0, -20}); hit.Hit {
		t.Error("Ray must not hit a removed body")
	}
}

func TestCPPhysicsAdapter_MoveStaticBody(t *testing.T) {
	a := newTestAdapter(t)
	platform := mustCreate(t, a, portPhysics.CreateBodyRequest{
		Shape:    portPhysics.ShapeBox,
		Size:     mgl64.Vec3{1, 1, 1},
		Position: mgl64.Vec3{0, 0, 0},
		Mass:     0,
	})

	a.SetPosition(platform, mgl64.Vec3{5, 1, 0})

	if pos := a.Position(platform); pos != (mgl64.Vec3{5, 1, 0}) {
		t.Errorf("Expected static body at (5, 1, 0), got %v", pos)
	}
	if hit := a.RayTestClosest(mgl64.Vec3{0, 0, 20}, mgl64.Vec3{0, 0, -20}); hit.Hit {
		t.Errorf("Old location must be empty, got %+v", hit)
	}
	hit := a.RayTestClosest(mgl64.Vec3{5, 0, 20}, mgl64.Vec3{5, 0, -20})
	if !hit.Hit || hit.Handle != platform {
		t.Errorf("Expected ray to hit the moved body, got %+v", hit)
	}
}
