package view

import (
	"github.com/go-gl/mathgl/mgl64"

	"stacker/backend/internal/core/domain/entity"
	"stacker/backend/internal/core/domain/event"
)

// PoseSource отдает актуальное положение физических объектов
type PoseSource interface {
	Position(e entity.Entity) mgl64.Vec3
}

// WorldView набор отображений объектов мира
type WorldView struct {
	objects map[int]*ViewObject
	order   []int

	unsubscribe []func()
}

// NewWorldView создает отображение и подписывает его на события мира
func NewWorldView(bus *event.Bus) *WorldView {
	wv := &WorldView{objects: make(map[int]*ViewObject)}
	wv.unsubscribe = append(wv.unsubscribe,
		bus.Subscribe(event.TopicCreate, wv.handleCreate),
		bus.Subscribe(event.TopicPerfectDrop, wv.handlePerfectDrop),
	)
	return wv
}

func (wv *WorldView) handleCreate(e event.Event) {
	created, ok := e.(event.ObjectCreated)
	if !ok {
		return
	}
	obj := created.Object.Base()
	if obj.Kind == entity.KindPlayer {
		return
	}

	wv.objects[obj.ID] = NewViewObject(created.Object)
	wv.order = append(wv.order, obj.ID)
}

func (wv *WorldView) handlePerfectDrop(e event.Event) {
	drop, ok := e.(event.PerfectDrop)
	if !ok {
		return
	}
	if v, ok := wv.objects[drop.ObjectID]; ok {
		v.Resize(drop.NewSize)
	}
}

// Get возвращает отображение объекта
func (wv *WorldView) Get(id int) (*ViewObject, bool) {
	v, ok := wv.objects[id]
	return v, ok
}

// Objects возвращает отображения в порядке создания
func (wv *WorldView) Objects() []*ViewObject {
	result := make([]*ViewObject, 0, len(wv.order))
	for _, id := range wv.order {
		result = append(result, wv.objects[id])
	}
	return result
}

// ToggleTexture передает нажатие всем объектам
func (wv *WorldView) ToggleTexture() {
	for _, v := range wv.objects {
		v.ToggleTexture()
	}
}

// Tick обновляет все отображения
func (wv *WorldView) Tick(poses PoseSource) {
	for _, id := range wv.order {
		v := wv.objects[id]
		v.Tick(poses.Position(v.Object))
	}
}

// Close отписывает отображение от событий
func (wv *WorldView) Close() {
	for _, unsubscribe := range wv.unsubscribe {
		unsubscribe()
	}
	wv.unsubscribe = nil
}
