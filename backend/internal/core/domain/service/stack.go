package service

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"stacker/backend/internal/core/domain/entity"
	"stacker/backend/internal/core/domain/event"
	"stacker/backend/internal/core/port/out/physics"
)

// placedBox отпущенный ящик вместе с его текущим состоянием
type placedBox struct {
	obj    *entity.GameObject
	handle entity.Handle
	pos    mgl64.Vec3
}

// releasedBoxes возвращает отпущенные падающие ящики в порядке создания
func (w *World) releasedBoxes() []placedBox {
	var boxes []placedBox
	for _, id := range w.order {
		obj := w.objects[id].Base()
		if obj.Kind != entity.KindFallingCrate {
			continue
		}
		h, ok := obj.Body.Handle()
		if !ok || w.physicsPort.IsKinematic(h) {
			continue
		}
		boxes = append(boxes, placedBox{obj: obj, handle: h, pos: w.physicsPort.Position(h)})
	}
	return boxes
}

// checkStack проверяет проигрыш, начисляет очки за уложенные ящики
// и бонус за точное попадание
func (w *World) checkStack() {
	boxes := w.releasedBoxes()

	// Проигрыш проверяется до начисления очков, чтобы в тике проигрыша счет не менялся
	for _, b := range boxes {
		if b.pos.Z() < w.config.FloorThreshold || math.Abs(b.pos.X()) > w.config.SideBound {
			w.endGame(b)
			return
		}
	}

	for i := range boxes {
		b := boxes[i]
		if b.obj.HasScored {
			continue
		}
		if w.physicsPort.LinearVelocity(b.handle).Len() >= w.config.RestSpeed {
			continue
		}

		w.score += w.config.SettleScore
		b.obj.HasScored = true
		w.refreshScore()

		j := w.findSupport(b, boxes)
		if j < 0 {
			continue
		}
		if math.Abs(b.pos.X()-boxes[j].pos.X()) < w.config.PerfectTolerance {
			w.perfectDrop(&boxes[j])
		}
	}
}

// findSupport ищет ближайший уложенный ящик строго под данным.
// Возвращает индекс в boxes или -1
func (w *World) findSupport(b placedBox, boxes []placedBox) int {
	best := -1
	for j, c := range boxes {
		if c.obj == b.obj || !c.obj.HasScored {
			continue
		}
		dz := b.pos.Z() - c.pos.Z()
		if dz <= 0 || dz >= w.config.SupportVerticalWindow {
			continue
		}
		if math.Abs(b.pos.Y()-c.pos.Y()) >= w.config.SupportDepthTolerance {
			continue
		}
		if best < 0 || c.pos.Z() > boxes[best].pos.Z() {
			best = j
		}
	}
	return best
}

// perfectDrop начисляет бонус и расширяет опорный ящик
func (w *World) perfectDrop(support *placedBox) {
	w.score += w.config.PerfectBonus

	obj := support.obj
	obj.Size = obj.Size.Add(mgl64.Vec3{w.config.GrowthStep, w.config.GrowthStep, 0})
	support.handle = w.rebuildShape(obj, support.handle, support.pos)

	w.logger.Printf("[World] Точное попадание! Ящик %d вырос до (%.2f, %.2f, %.2f)",
		obj.ID, obj.Size.X(), obj.Size.Y(), obj.Size.Z())

	w.events.Publish(event.PerfectDrop{ObjectID: obj.ID, NewSize: obj.Size})
	w.refreshScore()
}

// rebuildShape заменяет тело объекта статичным телом текущего размера.
// Владелец нового тела записывается до возврата, до следующего опроса контактов
func (w *World) rebuildShape(obj *entity.GameObject, old entity.Handle, pos mgl64.Vec3) entity.Handle {
	w.physicsPort.RemoveBody(old)
	delete(w.owners, old)

	h, err := w.physicsPort.CreateBody(physics.CreateBodyRequest{
		Shape:    physics.ShapeBox,
		Size:     obj.Size,
		Position: pos,
		Mass:     0,
	})
	if err != nil {
		w.logger.Printf("[World] Ошибка при пересоздании тела ящика %d: %v", obj.ID, err)
		obj.Position = pos
		obj.Body = entity.Visual()
		return 0
	}

	w.owners[h] = obj.ID
	obj.Body = entity.Physical(h)
	return h
}

// endGame переводит мир в конечное состояние
func (w *World) endGame(b placedBox) {
	w.gameOver = true
	w.refreshScore()

	w.logger.Printf("[World] Игра окончена! Ящик %d упал в (%.2f, %.2f). Итоговый счет: %d",
		b.obj.ID, b.pos.X(), b.pos.Z(), w.score)

	w.events.Publish(event.GameOver{FinalScore: w.score})
}

// refreshScore оповещает подписчиков о текущем счете
func (w *World) refreshScore() {
	text := w.ScoreText()
	w.logger.Printf("[World] %s", text)
	w.events.Publish(event.ScoreChanged{Score: w.score, Text: text})
}
