package service

import "github.com/go-gl/mathgl/mgl64"

// StackConfig константы игры на укладку ящиков
type StackConfig struct {
	// Параметры нового падающего ящика
	SpawnPoint mgl64.Vec3
	SpawnSize  mgl64.Vec3
	SpawnMass  float64

	// MoveBound - предел горизонтального смещения активного ящика
	MoveBound float64

	// Маятник до отпускания: x(t) = SwingAmplitude * sin(2π t / SwingPeriod)
	SwingAmplitude float64
	SwingPeriod    float64

	// DropInterval - через сколько секунд без активного ящика появляется новый
	DropInterval float64

	// Условия проигрыша
	FloorThreshold float64 // z ниже этого значения
	SideBound      float64 // |x| больше этого значения

	// RestSpeed - скорость, ниже которой ящик считается уложенным
	RestSpeed float64

	// Поиск опоры под уложенным ящиком
	SupportDepthTolerance float64 // |Δy| с опорой
	SupportVerticalWindow float64 // Δz до опоры

	// Точное попадание
	PerfectTolerance float64 // |Δx| с опорой
	PerfectBonus     int
	GrowthStep       float64 // прибавка к размеру опоры по x и y

	// SettleScore - очки за уложенный ящик
	SettleScore int
}

// DefaultStackConfig возвращает конфигурацию по умолчанию
func DefaultStackConfig() StackConfig {
	return StackConfig{
		SpawnPoint:            mgl64.Vec3{0, 0, 10},
		SpawnSize:             mgl64.Vec3{1, 1, 1},
		SpawnMass:             5,
		MoveBound:             5,
		SwingAmplitude:        5,
		SwingPeriod:           2.0,
		DropInterval:          3.0,
		FloorThreshold:        -4,
		SideBound:             6,
		RestSpeed:             0.1,
		SupportDepthTolerance: 1.0,
		SupportVerticalWindow: 2.0,
		PerfectTolerance:      2,
		PerfectBonus:          2,
		GrowthStep:            0.5,
		SettleScore:           1,
	}
}
