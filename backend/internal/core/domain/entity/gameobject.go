package entity

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Kind представляет тип игрового объекта
type Kind string

// Константы типов объектов
const (
	KindCrate        Kind = "crate"
	KindFloor        Kind = "floor"
	KindEnemy        Kind = "enemy"
	KindFallingCrate Kind = "fallingCrate"
	KindTeleporter   Kind = "teleporter"
	KindPlayer       Kind = "player"
)

// Variant выбирает конкретный тип сущности при создании
type Variant int

const (
	VariantGameObject Variant = iota
	VariantPlayer
)

// NoContact означает, что объект еще ни с кем не сталкивался
const NoContact = -1

// Entity общий интерфейс для всех сущностей мира
type Entity interface {
	// Base возвращает базовый игровой объект
	Base() *GameObject

	// Tick выполняет собственное обновление сущности
	Tick(dt float64)

	// Collision вызывается при контакте с другой сущностью
	Collision(other Entity)
}

// GameObject представляет игровой объект в мире
type GameObject struct {
	ID       int
	Kind     Kind
	Position mgl64.Vec3 // Актуальна только для визуальных объектов
	Size     mgl64.Vec3 // Для капсулы: радиус и высота в первых двух компонентах
	Rotation mgl64.Vec3 // Углы x/y/z в градусах, только без физики
	Body     Body

	HasScored         bool
	IsCollisionSource bool
	IsSelected        bool

	LastContact  int
	ContactCount int
}

// NewGameObject создает новый экземпляр игрового объекта
func NewGameObject(id int, kind Kind, position, size mgl64.Vec3, body Body) *GameObject {
	return &GameObject{
		ID:          id,
		Kind:        kind,
		Position:    position,
		Size:        size,
		Body:        body,
		LastContact: NoContact,
	}
}

// Base возвращает сам объект
func (o *GameObject) Base() *GameObject {
	return o
}

// Tick у обычного объекта ничего не делает: им управляет физика
func (o *GameObject) Tick(dt float64) {}

// Collision запоминает последнего участника контакта
func (o *GameObject) Collision(other Entity) {
	if other == nil {
		return
	}
	o.LastContact = other.Base().ID
	o.ContactCount++
}

// IsPhysical сообщает, управляется ли объект физическим движком
func (o *GameObject) IsPhysical() bool {
	return o.Body.IsPhysical()
}
