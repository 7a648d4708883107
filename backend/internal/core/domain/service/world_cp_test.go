package service

import (
	"io"
	"log"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	cpadapter "stacker/backend/internal/adapter/out/physics"
	"stacker/backend/internal/core/domain/entity"
)

func newCPWorld(t *testing.T) *World {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	adapter := cpadapter.NewCPPhysicsAdapter(logger)
	t.Cleanup(func() { adapter.Close() })
	return NewWorld(adapter, DefaultStackConfig(), logger)
}

func TestWorld_ReleasedBoxLandsOnCrate(t *testing.T) {
	w := newCPWorld(t)
	w.LoadWorld()

	box := w.DropBox()
	if box == nil {
		t.Fatal("Expected active box")
	}
	w.ReleaseBox()

	const dt = 1.0 / 60.0
	for i := 0; i < 600 && w.Score() == 0; i++ {
		w.Tick(dt)
	}

	if w.IsGameOver() {
		t.Fatal("Expected game to continue")
	}
	if w.Score() != 1 || !box.HasScored {
		t.Fatalf("Expected box to settle and score 1, got %d", w.Score())
	}

	// Очки начисляются в тике удара, положение проверяем после оседания
	for i := 0; i < 60; i++ {
		w.Tick(dt)
	}

	// Стартовый ящик лежит на полу (верх пола z=-4.75), его верх на z=-3.75
	pos := w.Position(box)
	if math.Abs(pos.Z()-(-3.25)) > 0.05 || math.Abs(pos.X()) > 0.1 {
		t.Errorf("Expected box at (0, -3.25), got (%.3f, %.3f)", pos.X(), pos.Z())
	}
	if w.Score() != 1 {
		t.Errorf("Expected score to stay 1 after settling, got %d", w.Score())
	}

	crate, _ := w.Object(0)
	if crate.Base().LastContact != box.ID {
		t.Errorf("Expected crate to record contact with box %d, got %d", box.ID, crate.Base().LastContact)
	}
}

func TestWorld_PerfectDropWithChipmunk(t *testing.T) {
	w := newCPWorld(t)
	w.LoadWorld()

	const dt = 1.0 / 60.0
	drop := func() *entity.GameObject {
		box := w.DropBox()
		if box == nil {
			t.Fatal("Expected active box")
		}
		w.ReleaseBox()
		for i := 0; i < 600 && !box.HasScored && !w.IsGameOver(); i++ {
			w.Tick(dt)
		}
		if !box.HasScored {
			t.Fatalf("Box %d did not settle", box.ID)
		}
		return box
	}

	first := drop()
	second := drop()

	if w.IsGameOver() {
		t.Fatal("Expected game to continue")
	}
	if w.Score() != 4 {
		t.Errorf("Expected score 4 after a perfect drop, got %d", w.Score())
	}
	if first.Size != (mgl64.Vec3{1.5, 1.5, 1}) {
		t.Errorf("Expected first box to grow, got %v", first.Size)
	}
	if second.Size != (mgl64.Vec3{1, 1, 1}) {
		t.Errorf("Expected second box unchanged, got %v", second.Size)
	}
	if !first.IsPhysical() {
		t.Error("Expected grown box to keep a physical body")
	}
}
