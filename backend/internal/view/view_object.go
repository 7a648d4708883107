package view

import (
	"github.com/go-gl/mathgl/mgl64"

	"stacker/backend/internal/core/domain/entity"
)

// Текстуры объектов по типу
const (
	TextureFallingCrate = "Textures/cube_5.png"
	TextureDefault      = "Textures/crate.png"
)

// ModelBounds габариты модели куба, которой рисуются все объекты
var ModelBounds = mgl64.Vec3{2, 2, 2}

// TextureFor возвращает текстуру для типа объекта
func TextureFor(kind entity.Kind) string {
	if kind == entity.KindFallingCrate {
		return TextureFallingCrate
	}
	return TextureDefault
}

// ViewObject отображение одного игрового объекта
type ViewObject struct {
	Object entity.Entity

	Texture   string
	TextureOn bool
	Scale     mgl64.Vec3

	// Положение на последнем кадре
	Position mgl64.Vec3
	// HPR ориентация визуальных объектов: H по z, P по x, R по y
	HPR mgl64.Vec3

	togglePressed bool
}

// NewViewObject создает отображение объекта с масштабом под его размер
func NewViewObject(e entity.Entity) *ViewObject {
	obj := e.Base()
	return &ViewObject{
		Object:    e,
		Texture:   TextureFor(obj.Kind),
		TextureOn: true,
		Scale:     divVec(obj.Size, ModelBounds),
		Position:  obj.Position,
	}
}

func divVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a.X() / b.X(), a.Y() / b.Y(), a.Z() / b.Z()}
}

// ToggleTexture запоминает нажатие до следующего кадра
func (v *ViewObject) ToggleTexture() {
	v.togglePressed = true
}

// Resize масштабирует объект после точного попадания
func (v *ViewObject) Resize(newSize mgl64.Vec3) {
	v.Scale = mgl64.Vec3{
		newSize.X() / ModelBounds.X() / 2,
		newSize.Y() / ModelBounds.Y() / 2,
		0.5,
	}
}

// Tick обновляет кадр. Переключение текстуры действует только на
// выбранный объект, выбор сбрасывается каждый кадр
func (v *ViewObject) Tick(position mgl64.Vec3) {
	obj := v.Object.Base()

	v.Position = position
	if !obj.IsPhysical() {
		v.HPR = mgl64.Vec3{obj.Rotation.Z(), obj.Rotation.X(), obj.Rotation.Y()}
		v.Position = obj.Position
	}

	if v.togglePressed && obj.IsSelected {
		v.TextureOn = !v.TextureOn
	}

	v.togglePressed = false
	obj.IsSelected = false
}
