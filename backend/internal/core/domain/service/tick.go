package service

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Tick продвигает мир на dt секунд. Порядок шагов важен: коллизии
// разбираются до шага физики, очки считаются после него
func (w *World) Tick(dt float64) {
	if w.gameOver {
		return
	}

	for _, id := range w.order {
		w.objects[id].Tick(dt)
	}

	w.resolveCollisions()

	w.physicsPort.Step(dt)

	w.swingActiveBox(dt)

	if w.activeBox == nil {
		w.dropTimer += dt
		if w.dropTimer >= w.config.DropInterval {
			w.DropBox()
			w.dropTimer = 0
		}
	}

	w.checkStack()
}

// resolveCollisions вызывает обработчики столкновений у обоих участников
func (w *World) resolveCollisions() {
	for _, id := range w.order {
		source := w.objects[id]
		obj := source.Base()
		if !obj.IsCollisionSource {
			continue
		}
		h, ok := obj.Body.Handle()
		if !ok {
			continue
		}

		for _, contact := range w.physicsPort.Contacts(h) {
			otherID, ok := w.owners[contact.Other]
			if !ok || otherID == id {
				continue
			}
			other := w.objects[otherID]
			source.Collision(other)
			other.Collision(source)
		}
	}
}

// swingPosition положение маятника в момент t
func (w *World) swingPosition(t float64) mgl64.Vec3 {
	x := w.config.SwingAmplitude * math.Sin(2*math.Pi*t/w.config.SwingPeriod)
	return mgl64.Vec3{x, w.config.SpawnPoint.Y(), w.config.SpawnPoint.Z()}
}

// swingActiveBox раскачивает еще не отпущенный ящик
func (w *World) swingActiveBox(dt float64) {
	h, ok := w.activeHandle()
	if !ok || !w.physicsPort.IsKinematic(h) {
		return
	}

	w.swingTime += dt
	w.physicsPort.SetPosition(h, w.swingPosition(w.swingTime))
}
