package service

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl64"

	"stacker/backend/internal/core/domain/entity"
	"stacker/backend/internal/core/domain/event"
	"stacker/backend/internal/core/port/out/physics"
)

// World игровой мир: владеет всеми объектами, шагом физики и счетом.
// Не потокобезопасен, все вызовы должны идти из одного потока
type World struct {
	config      StackConfig
	physicsPort physics.PhysicsPort
	events      *event.Bus
	logger      *log.Logger

	properties map[string]interface{}
	objects    map[int]entity.Entity
	order      []int                 // порядок создания, для детерминированного обхода
	owners     map[entity.Handle]int // физическое тело -> владелец
	nextID     int

	activeBox *entity.GameObject
	score     int
	gameOver  bool
	dropTimer float64
	swingTime float64
}

// NewWorld создает новый экземпляр мира
func NewWorld(physicsPort physics.PhysicsPort, config StackConfig, logger *log.Logger) *World {
	if logger == nil {
		logger = log.Default()
	}

	return &World{
		config:      config,
		physicsPort: physicsPort,
		events:      event.NewBus(),
		logger:      logger,
		properties:  make(map[string]interface{}),
		objects:     make(map[int]entity.Entity),
		owners:      make(map[entity.Handle]int),
	}
}

// Events возвращает шину событий мира
func (w *World) Events() *event.Bus {
	return w.events
}

// Config возвращает константы игры
func (w *World) Config() StackConfig {
	return w.config
}

// shapeFor сопоставляет тип объекта с формой. Неизвестные типы - без физики
func shapeFor(kind entity.Kind) physics.ShapeKind {
	switch kind {
	case entity.KindCrate, entity.KindFloor, entity.KindFallingCrate:
		return physics.ShapeBox
	case entity.KindEnemy:
		return physics.ShapeCapsule
	default:
		return physics.ShapeNone
	}
}

func (w *World) createBody(position mgl64.Vec3, kind entity.Kind, size mgl64.Vec3, mass float64) (entity.Body, error) {
	shape := shapeFor(kind)
	if shape == physics.ShapeNone {
		return entity.Visual(), nil
	}

	h, err := w.physicsPort.CreateBody(physics.CreateBodyRequest{
		Shape:    shape,
		Size:     size,
		Position: position,
		Mass:     mass,
	})
	if err != nil {
		return entity.Visual(), fmt.Errorf("создание тела %s: %w", kind, err)
	}

	return entity.Physical(h), nil
}

// CreateObject создает объект, его физическое тело и оповещает подписчиков
func (w *World) CreateObject(position mgl64.Vec3, kind entity.Kind, size mgl64.Vec3, mass float64, variant entity.Variant) entity.Entity {
	body, err := w.createBody(position, kind, size, mass)
	if err != nil {
		// Объект остается визуальным
		w.logger.Printf("[World] Ошибка при создании физического тела: %v", err)
	}

	id := w.nextID
	w.nextID++

	var obj entity.Entity
	switch variant {
	case entity.VariantPlayer:
		obj = entity.NewPlayer(id, kind, position, size, body)
	default:
		obj = entity.NewGameObject(id, kind, position, size, body)
	}

	if h, ok := body.Handle(); ok {
		w.owners[h] = id
	}
	w.objects[id] = obj
	w.order = append(w.order, id)

	w.logger.Printf("[World] Создан объект %d типа %s в координатах (%.2f, %.2f, %.2f)",
		id, kind, position.X(), position.Y(), position.Z())

	w.events.Publish(event.ObjectCreated{Object: obj})
	return obj
}

// LoadWorld создает стартовую сцену: опорный ящик, игрока и пол
func (w *World) LoadWorld() {
	w.CreateObject(mgl64.Vec3{0, 0, -3}, entity.KindCrate, mgl64.Vec3{2, 4, 1}, 10, entity.VariantGameObject)
	w.CreateObject(mgl64.Vec3{0, -20, 10}, entity.KindPlayer, mgl64.Vec3{1, 0.5, 0.25}, 10, entity.VariantPlayer)
	w.CreateObject(mgl64.Vec3{0, 0, -5}, entity.KindFloor, mgl64.Vec3{1000, 1000, 0.5}, 0, entity.VariantGameObject)
}

// GetProperty возвращает свойство мира
func (w *World) GetProperty(key string) (interface{}, bool) {
	value, ok := w.properties[key]
	return value, ok
}

// SetProperty задает свойство мира и оповещает подписчиков
func (w *World) SetProperty(key string, value interface{}) {
	w.properties[key] = value
	w.events.Publish(event.PropertyChanged{Key: key, Value: value})
}

// Object возвращает объект по его ID
func (w *World) Object(id int) (entity.Entity, bool) {
	obj, ok := w.objects[id]
	return obj, ok
}

// Objects возвращает все объекты в порядке создания
func (w *World) Objects() []entity.Entity {
	result := make([]entity.Entity, 0, len(w.order))
	for _, id := range w.order {
		result = append(result, w.objects[id])
	}
	return result
}

// ActiveBox возвращает управляемый ящик, если он есть
func (w *World) ActiveBox() *entity.GameObject {
	return w.activeBox
}

// Score возвращает текущий счет
func (w *World) Score() int { return w.score }

// IsGameOver сообщает, окончена ли игра
func (w *World) IsGameOver() bool { return w.gameOver }

// DropTimer возвращает время, накопленное до автосброса
func (w *World) DropTimer() float64 { return w.dropTimer }

// SwingTime возвращает фазу маятника активного ящика в секундах
func (w *World) SwingTime() float64 { return w.swingTime }

// ScoreText возвращает счет в виде строки для отображения
func (w *World) ScoreText() string { return fmt.Sprintf("Score: %d", w.score) }

// Position возвращает актуальную позицию объекта
func (w *World) Position(e entity.Entity) mgl64.Vec3 {
	obj := e.Base()
	if h, ok := obj.Body.Handle(); ok {
		return w.physicsPort.Position(h)
	}
	return obj.Position
}

// Rotation возвращает ориентацию объекта
func (w *World) Rotation(e entity.Entity) mgl64.Quat {
	obj := e.Base()
	if h, ok := obj.Body.Handle(); ok {
		return w.physicsPort.Rotation(h)
	}
	// H = z, P = x, R = y
	return mgl64.AnglesToQuat(
		mgl64.DegToRad(obj.Rotation.Z()),
		mgl64.DegToRad(obj.Rotation.X()),
		mgl64.DegToRad(obj.Rotation.Y()),
		mgl64.ZXY,
	)
}

// Select помечает объект выбранным до следующего кадра отображения
func (w *World) Select(id int) bool {
	obj, ok := w.objects[id]
	if !ok {
		return false
	}
	obj.Base().IsSelected = true
	return true
}

// RayHit ближайшее попадание луча
type RayHit struct {
	Hit      bool
	ObjectID int // entity.NoContact, если тело без владельца
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Fraction float64
}

// GetNearest ищет ближайший объект на отрезке from→to
func (w *World) GetNearest(from, to mgl64.Vec3) RayHit {
	res := w.physicsPort.RayTestClosest(from, to)
	if !res.Hit {
		return RayHit{ObjectID: entity.NoContact}
	}

	id, ok := w.owners[res.Handle]
	if !ok {
		id = entity.NoContact
	}
	return RayHit{
		Hit:      true,
		ObjectID: id,
		Point:    res.Point,
		Normal:   res.Normal,
		Fraction: res.Fraction,
	}
}

// Contact контакт объекта с другим объектом мира
type Contact struct {
	Other  entity.Entity // nil, если у тела нет владельца
	Point  mgl64.Vec3
	Normal mgl64.Vec3
}

// GetAllContacts возвращает контакты объекта. У визуальных объектов контактов нет
func (w *World) GetAllContacts(e entity.Entity) []Contact {
	h, ok := e.Base().Body.Handle()
	if !ok {
		return nil
	}

	points := w.physicsPort.Contacts(h)
	contacts := make([]Contact, 0, len(points))
	for _, p := range points {
		c := Contact{Point: p.Point, Normal: p.Normal}
		if id, ok := w.owners[p.Other]; ok {
			c.Other = w.objects[id]
		}
		contacts = append(contacts, c)
	}
	return contacts
}

// ObjectState снимок объекта для внешних слоев
type ObjectState struct {
	ID       int
	Kind     entity.Kind
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Size     mgl64.Vec3
	Physical bool
}

// Snapshot возвращает состояние всех объектов
func (w *World) Snapshot() []ObjectState {
	states := make([]ObjectState, 0, len(w.order))
	for _, id := range w.order {
		e := w.objects[id]
		obj := e.Base()
		states = append(states, ObjectState{
			ID:       obj.ID,
			Kind:     obj.Kind,
			Position: w.Position(e),
			Rotation: w.Rotation(e),
			Size:     obj.Size,
			Physical: obj.IsPhysical(),
		})
	}
	return states
}
