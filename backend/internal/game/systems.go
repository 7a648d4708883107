package game

import (
	"errors"
	"log"
	"time"

	"stacker/backend/internal/core/domain/service"
)

// TickSystem интерфейс для всех игровых систем
type TickSystem interface {
	Update(w *service.World, dt time.Duration) error
	GetName() string
	GetPriority() int // Приоритет выполнения (меньше = раньше)
}

// CommandSystem применяет накопленные команды игроков
type CommandSystem struct {
	name     string
	priority int
	commands <-chan Command
	logger   *log.Logger
}

// NewCommandSystem создает систему применения команд
func NewCommandSystem(commands <-chan Command, logger *log.Logger) *CommandSystem {
	return &CommandSystem{
		name:     "CommandSystem",
		priority: 0, // Команды применяются до шага мира
		commands: commands,
		logger:   logger,
	}
}

// Update применяет все команды, пришедшие до начала тика
func (cs *CommandSystem) Update(w *service.World, dt time.Duration) error {
	for n := len(cs.commands); n > 0; n-- {
		select {
		case cmd := <-cs.commands:
			cmd.Apply(w)
		default:
			return nil
		}
	}
	return nil
}

// GetName возвращает имя системы
func (cs *CommandSystem) GetName() string { return cs.name }

// GetPriority возвращает приоритет системы
func (cs *CommandSystem) GetPriority() int { return cs.priority }

// WorldUpdateSystem продвигает мир на один тик
type WorldUpdateSystem struct {
	name     string
	priority int
	logger   *log.Logger

	ticks       uint64
	logInterval uint64
	reportedEnd bool
}

// NewWorldUpdateSystem создает систему обновления мира
func NewWorldUpdateSystem(logger *log.Logger) *WorldUpdateSystem {
	return &WorldUpdateSystem{
		name:        "WorldUpdateSystem",
		priority:    5,
		logger:      logger,
		logInterval: 1800, // Раз в 30 секунд при 60 TPS
	}
}

// Update обновляет игровой мир
func (wus *WorldUpdateSystem) Update(w *service.World, dt time.Duration) error {
	if w == nil {
		return errors.New("мир не задан")
	}

	w.Tick(dt.Seconds())
	wus.ticks++

	if w.IsGameOver() && !wus.reportedEnd {
		wus.reportedEnd = true
		wus.logger.Printf("[WorldUpdateSystem] Мир остановлен на тике %d, счет %d", wus.ticks, w.Score())
	}

	if wus.ticks%wus.logInterval == 0 {
		wus.logger.Printf("[WorldUpdateSystem] Обновление мира: объектов %d, счет %d",
			len(w.Objects()), w.Score())
	}

	return nil
}

// GetName возвращает имя системы
func (wus *WorldUpdateSystem) GetName() string { return wus.name }

// GetPriority возвращает приоритет системы
func (wus *WorldUpdateSystem) GetPriority() int { return wus.priority }
