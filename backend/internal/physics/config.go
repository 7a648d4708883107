package physics

import "sync"

// PhysicsConfig содержит настройки для физики
type PhysicsConfig struct {
	// Gravity - ускорение свободного падения по оси z (вверх положительно)
	Gravity float64

	// Iterations - число итераций решателя за шаг
	Iterations int

	// Friction - трение для всех форм
	Friction float64

	// Elasticity - упругость (отскок) для всех форм
	Elasticity float64

	// Damping - доля скорости, сохраняемая за секунду (1 = без затухания)
	Damping float64

	// MaxSubStep - максимальный шаг интегрирования, больший dt дробится
	MaxSubStep float64

	// CollisionSlop - допустимое взаимное проникновение форм.
	// Значение Chipmunk по умолчанию (0.1) рассчитано на пиксели, у нас единицы
	CollisionSlop float64
}

// GlobalPhysicsConfig - глобальная конфигурация физики
var GlobalPhysicsConfig *PhysicsConfig
var configMutex sync.RWMutex

// DefaultPhysicsConfig возвращает конфигурацию по умолчанию
func DefaultPhysicsConfig() *PhysicsConfig {
	return &PhysicsConfig{
		Gravity:       -9.81,
		Iterations:    20,
		Friction:      0.8,
		Elasticity:    0.0, // ящики не должны подпрыгивать
		Damping:       1.0,
		MaxSubStep:    1.0 / 60.0,
		CollisionSlop: 0.01,
	}
}

// GetPhysicsConfig возвращает текущую конфигурацию физики
func GetPhysicsConfig() *PhysicsConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if GlobalPhysicsConfig == nil {
		return DefaultPhysicsConfig()
	}

	// Создаем копию, чтобы избежать гонок данных
	config := *GlobalPhysicsConfig
	return &config
}

// SetPhysicsConfig устанавливает новую конфигурацию физики
func SetPhysicsConfig(config *PhysicsConfig) {
	configMutex.Lock()
	defer configMutex.Unlock()

	newConfig := *config
	GlobalPhysicsConfig = &newConfig
}

// ResetPhysicsConfig возвращает настройки по умолчанию
func ResetPhysicsConfig() {
	SetPhysicsConfig(DefaultPhysicsConfig())
}

func init() {
	if GlobalPhysicsConfig == nil {
		SetPhysicsConfig(DefaultPhysicsConfig())
	}
}
