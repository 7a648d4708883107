package physics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"stacker/backend/internal/core/domain/entity"
)

var (
	// ErrInvalidShape размеры формы не подходят для создания тела
	ErrInvalidShape = errors.New("некорректные размеры формы")

	// ErrUnknownHandle тело с таким идентификатором не найдено
	ErrUnknownHandle = errors.New("неизвестное физическое тело")
)

// ShapeKind тип коллизионной формы
type ShapeKind int

const (
	ShapeNone ShapeKind = iota
	ShapeBox
	ShapeCapsule
)

// String возвращает имя формы для логов и ошибок
func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeCapsule:
		return "capsule"
	default:
		return "none"
	}
}

// PhysicsPort определяет интерфейс для взаимодействия с физическим движком.
// Операции над неизвестным телом ничего не делают и возвращают нулевые значения
type PhysicsPort interface {
	// CreateBody создает твердое тело и добавляет его в симуляцию
	CreateBody(req CreateBodyRequest) (entity.Handle, error)

	// RemoveBody убирает тело из симуляции
	RemoveBody(h entity.Handle)

	Position(h entity.Handle) mgl64.Vec3
	SetPosition(h entity.Handle, pos mgl64.Vec3)
	Rotation(h entity.Handle) mgl64.Quat

	LinearVelocity(h entity.Handle) mgl64.Vec3
	SetLinearVelocity(h entity.Handle, v mgl64.Vec3)
	AngularVelocity(h entity.Handle) mgl64.Vec3
	SetAngularVelocity(h entity.Handle, v mgl64.Vec3)

	// SetKinematic исключает тело из симуляции, им управляют снаружи
	SetKinematic(h entity.Handle, kinematic bool)
	IsKinematic(h entity.Handle) bool

	// Step продвигает симуляцию на dt секунд
	Step(dt float64)

	// RayTestClosest ищет ближайшее пересечение луча from→to
	RayTestClosest(from, to mgl64.Vec3) RayResult

	// Contacts возвращает текущие контакты тела
	Contacts(h entity.Handle) []ContactPoint

	// Close освобождает ресурсы движка
	Close() error
}

// CreateBodyRequest представляет запрос на создание тела
type CreateBodyRequest struct {
	Shape    ShapeKind
	Size     mgl64.Vec3 // Полные размеры ящика или радиус/высота капсулы
	Position mgl64.Vec3
	Mass     float64 // 0 означает статичное тело
}

// RayResult результат трассировки луча
type RayResult struct {
	Hit      bool
	Handle   entity.Handle
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Fraction float64
}

// ContactPoint контакт тела с другим телом
type ContactPoint struct {
	Other  entity.Handle
	Point  mgl64.Vec3
	Normal mgl64.Vec3
	Depth  float64
}
