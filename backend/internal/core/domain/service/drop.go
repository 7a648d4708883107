package service

import (
	"github.com/go-gl/mathgl/mgl64"

	"stacker/backend/internal/core/domain/entity"
)

// DropBox создает новый падающий ящик над башней и берет его под управление.
// Возвращает nil, если активный ящик уже есть, игра окончена
// или физическое тело не удалось создать
func (w *World) DropBox() *entity.GameObject {
	if w.gameOver || w.activeBox != nil {
		return nil
	}

	e := w.CreateObject(w.config.SpawnPoint, entity.KindFallingCrate, w.config.SpawnSize, w.config.SpawnMass, entity.VariantGameObject)
	box := e.Base()
	h, ok := box.Body.Handle()
	if !ok {
		// Ящик без тела нельзя отпустить, слот остается свободным для автосброса
		w.logger.Printf("[World] Падающий ящик %d создан без физики, управление не передано", box.ID)
		return nil
	}
	w.physicsPort.SetKinematic(h, true)

	w.activeBox = box
	w.swingTime = 0
	return box
}

// activeHandle возвращает тело активного ящика
func (w *World) activeHandle() (entity.Handle, bool) {
	if w.gameOver || w.activeBox == nil {
		return 0, false
	}
	return w.activeBox.Body.Handle()
}

// MoveActiveBox сдвигает активный ящик по x в пределах [-MoveBound, MoveBound]
func (w *World) MoveActiveBox(dx float64) {
	h, ok := w.activeHandle()
	if !ok {
		return
	}

	pos := w.physicsPort.Position(h)
	x := mgl64.Clamp(pos.X()+dx, -w.config.MoveBound, w.config.MoveBound)
	w.physicsPort.SetPosition(h, mgl64.Vec3{x, pos.Y(), pos.Z()})
}

// ReleaseBox отпускает активный ящик: дальше им управляет физика
func (w *World) ReleaseBox() {
	h, ok := w.activeHandle()
	if !ok {
		return
	}

	pos := w.physicsPort.Position(h)
	w.physicsPort.SetPosition(h, mgl64.Vec3{0, pos.Y(), pos.Z()})
	w.physicsPort.SetLinearVelocity(h, mgl64.Vec3{})
	w.physicsPort.SetAngularVelocity(h, mgl64.Vec3{})
	w.physicsPort.SetKinematic(h, false)

	w.activeBox.IsCollisionSource = true
	w.logger.Printf("[World] Ящик %d отпущен", w.activeBox.ID)
	w.activeBox = nil
}
