package entity

import "github.com/go-gl/mathgl/mgl64"

// Player игрок. Физикой не управляется, меняется только ориентация
type Player struct {
	*GameObject

	// TurnRate скорость поворота вокруг оси z, градусов в секунду
	TurnRate float64
}

// NewPlayer создает нового игрока
func NewPlayer(id int, kind Kind, position, size mgl64.Vec3, body Body) *Player {
	return &Player{
		GameObject: NewGameObject(id, kind, position, size, body),
	}
}

// Tick поворачивает игрока
func (p *Player) Tick(dt float64) {
	if p.TurnRate == 0 {
		return
	}
	heading := p.Rotation.Z() + p.TurnRate*dt
	for heading >= 360 {
		heading -= 360
	}
	for heading < 0 {
		heading += 360
	}
	p.Rotation[2] = heading
}
