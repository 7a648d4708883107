package game

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"stacker/backend/internal/core/domain/service"
)

// ErrQueueFull очередь команд переполнена, команда отброшена
var ErrQueueFull = errors.New("очередь команд переполнена")

// Commander принимает команды игроков для следующего тика
type Commander interface {
	Submit(cmd Command) error
}

// TickHook вызывается после каждого тика в потоке игрового цикла.
// Мир в этот момент заблокирован, вызывать View из хука нельзя
type TickHook func(w *service.World, tick uint64)

// GameTicker игровой цикл стакера. Единственный владелец мира:
// все изменения мира идут через тик или через View
type GameTicker struct {
	// Конфигурация
	targetTPS    int
	tickDuration time.Duration
	maxTickTime  time.Duration

	// Состояние
	isRunning    bool
	isPaused     bool
	tickCount    uint64
	startTime    time.Time
	lastTickTime time.Time
	stateMutex   sync.RWMutex

	// Мир и доступ к нему
	world      *service.World
	worldMutex sync.Mutex

	commands chan Command
	dropped  uint64

	// Системы
	systems      []TickSystem
	systemsMutex sync.RWMutex
	hooks        []TickHook

	perfMonitor *PerformanceMonitor

	// Управление
	ctx       context.Context
	cancel    context.CancelFunc
	pauseChan chan bool
	done      chan struct{}

	// Метрики
	averageTickTime time.Duration
	maxObservedTick time.Duration
	skippedTicks    uint64

	logger           *log.Logger
	warningThreshold time.Duration
}

// NewGameTicker создает игровой цикл для мира. Системы команд и мира
// регистрируются сразу
func NewGameTicker(targetTPS int, world *service.World, logger *log.Logger) *GameTicker {
	if targetTPS <= 0 {
		targetTPS = 60
	}

	if logger == nil {
		logger = log.Default()
	}

	tickDuration := time.Second / time.Duration(targetTPS)
	ctx, cancel := context.WithCancel(context.Background())

	gt := &GameTicker{
		targetTPS:        targetTPS,
		tickDuration:     tickDuration,
		maxTickTime:      tickDuration * 2,
		world:            world,
		commands:         make(chan Command, 256),
		perfMonitor:      NewPerformanceMonitor(50, tickDuration/4),
		ctx:              ctx,
		cancel:           cancel,
		pauseChan:        make(chan bool, 1),
		logger:           logger,
		warningThreshold: tickDuration / 2,
	}

	gt.RegisterSystem(NewCommandSystem(gt.commands, logger))
	gt.RegisterSystem(NewWorldUpdateSystem(logger))

	return gt
}

// Start запускает игровой цикл в отдельной горутине
func (gt *GameTicker) Start() error {
	gt.stateMutex.Lock()
	defer gt.stateMutex.Unlock()

	if gt.isRunning {
		return nil
	}
	if gt.ctx.Err() != nil {
		return errors.New("игровой цикл уже остановлен")
	}

	gt.isRunning = true
	gt.startTime = time.Now()
	gt.lastTickTime = gt.startTime
	gt.done = make(chan struct{})

	gt.logger.Printf("[GameTicker] Запуск игрового цикла: %d TPS (тик каждые %v)",
		gt.targetTPS, gt.tickDuration)

	go gt.gameLoop(gt.done)

	return nil
}

// Stop останавливает игровой цикл и дожидается его завершения
func (gt *GameTicker) Stop() {
	gt.stateMutex.Lock()
	if !gt.isRunning {
		gt.stateMutex.Unlock()
		return
	}
	gt.isRunning = false
	done := gt.done
	gt.stateMutex.Unlock()

	gt.cancel()
	<-done

	gt.logger.Printf("[GameTicker] Остановка игрового цикла (выполнено тиков: %d)", gt.GetTickCount())
}

// Pause приостанавливает или возобновляет цикл
func (gt *GameTicker) Pause(pause bool) {
	gt.stateMutex.Lock()
	gt.isPaused = pause
	gt.stateMutex.Unlock()

	select {
	case gt.pauseChan <- pause:
	default:
		// Предыдущая команда еще не прочитана, заменяем ее
		select {
		case <-gt.pauseChan:
		default:
		}
		gt.pauseChan <- pause
	}
}

// Submit ставит команду в очередь. Команда применяется в начале следующего тика
func (gt *GameTicker) Submit(cmd Command) error {
	select {
	case gt.commands <- cmd:
		return nil
	default:
		gt.stateMutex.Lock()
		gt.dropped++
		gt.stateMutex.Unlock()
		return ErrQueueFull
	}
}

// RegisterSystem добавляет систему в игровой цикл
func (gt *GameTicker) RegisterSystem(system TickSystem) {
	gt.systemsMutex.Lock()
	defer gt.systemsMutex.Unlock()

	gt.systems = append(gt.systems, system)
	sort.SliceStable(gt.systems, func(i, j int) bool {
		return gt.systems[i].GetPriority() < gt.systems[j].GetPriority()
	})

	gt.perfMonitor.initSystemMetrics(system.GetName())

	gt.logger.Printf("[GameTicker] Зарегистрирована система: %s (приоритет: %d)",
		system.GetName(), system.GetPriority())
}

// OnTick добавляет хук, вызываемый после каждого тика
func (gt *GameTicker) OnTick(hook TickHook) {
	gt.systemsMutex.Lock()
	defer gt.systemsMutex.Unlock()
	gt.hooks = append(gt.hooks, hook)
}

// View выполняет fn с эксклюзивным доступом к миру
func (gt *GameTicker) View(fn func(w *service.World)) {
	gt.worldMutex.Lock()
	defer gt.worldMutex.Unlock()
	fn(gt.world)
}

// Step выполняет один тик синхронно. Используется, когда цикл
// ведет внешний планировщик, например оконный клиент
func (gt *GameTicker) Step() {
	gt.executeTick(time.Now(), gt.tickDuration)
}

// gameLoop основной игровой цикл
func (gt *GameTicker) gameLoop(done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(gt.tickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-gt.ctx.Done():
			return

		case pause := <-gt.pauseChan:
			for pause {
				select {
				case <-gt.ctx.Done():
					return
				case pause = <-gt.pauseChan:
				}
			}

		case tickTime := <-ticker.C:
			gt.stateMutex.RLock()
			last := gt.lastTickTime
			gt.stateMutex.RUnlock()

			if delay := tickTime.Sub(last); delay > gt.tickDuration*2 {
				gt.logger.Printf("[GameTicker] ПРЕДУПРЕЖДЕНИЕ: Большая задержка между тиками: %v (ожидалось: %v)",
					delay, gt.tickDuration)
				gt.stateMutex.Lock()
				gt.skippedTicks++
				gt.stateMutex.Unlock()
			}

			// Мир всегда шагает на фиксированный dt
			gt.executeTick(tickTime, gt.tickDuration)
		}
	}
}

// executeTick выполняет один игровой тик
func (gt *GameTicker) executeTick(tickTime time.Time, dt time.Duration) {
	tickStart := time.Now()

	gt.stateMutex.Lock()
	gt.tickCount++
	tick := gt.tickCount
	gt.lastTickTime = tickTime
	gt.stateMutex.Unlock()

	gt.systemsMutex.RLock()
	systems := make([]TickSystem, len(gt.systems))
	copy(systems, gt.systems)
	hooks := make([]TickHook, len(gt.hooks))
	copy(hooks, gt.hooks)
	gt.systemsMutex.RUnlock()

	gt.worldMutex.Lock()
	for _, system := range systems {
		gt.executeSystem(system, dt)
	}
	for _, hook := range hooks {
		gt.executeHook(hook, tick)
	}
	gt.worldMutex.Unlock()

	totalTickTime := time.Since(tickStart)
	gt.updateTickMetrics(totalTickTime)
	gt.checkPerformance(totalTickTime)
}

// executeSystem выполняет одну систему с замером времени
func (gt *GameTicker) executeSystem(system TickSystem, dt time.Duration) {
	systemStart := time.Now()
	systemName := system.GetName()

	defer func() {
		if r := recover(); r != nil {
			gt.logger.Printf("[GameTicker] КРИТИЧЕСКАЯ ОШИБКА в системе %s: %v", systemName, r)
			gt.perfMonitor.recordError(systemName)
		}
	}()

	err := system.Update(gt.world, dt)

	gt.perfMonitor.recordExecution(systemName, time.Since(systemStart))

	if err != nil {
		gt.logger.Printf("[GameTicker] Ошибка в системе %s: %v", systemName, err)
		gt.perfMonitor.recordError(systemName)
	}
}

func (gt *GameTicker) executeHook(hook TickHook, tick uint64) {
	defer func() {
		if r := recover(); r != nil {
			gt.logger.Printf("[GameTicker] КРИТИЧЕСКАЯ ОШИБКА в хуке тика: %v", r)
		}
	}()
	hook(gt.world, tick)
}

// GetTickCount возвращает текущее количество тиков
func (gt *GameTicker) GetTickCount() uint64 {
	gt.stateMutex.RLock()
	defer gt.stateMutex.RUnlock()
	return gt.tickCount
}

// GetStats возвращает статистику игрового цикла
func (gt *GameTicker) GetStats() map[string]interface{} {
	gt.stateMutex.RLock()
	uptime := time.Since(gt.startTime)
	stats := map[string]interface{}{
		"target_tps":        gt.targetTPS,
		"tick_count":        gt.tickCount,
		"uptime_seconds":    uptime.Seconds(),
		"average_tick_time": gt.averageTickTime,
		"max_observed_tick": gt.maxObservedTick,
		"skipped_ticks":     gt.skippedTicks,
		"dropped_commands":  gt.dropped,
		"is_running":        gt.isRunning,
		"is_paused":         gt.isPaused,
	}
	actualTPS := 0.0
	if gt.isRunning && uptime > 0 {
		actualTPS = float64(gt.tickCount) / uptime.Seconds()
	}
	stats["actual_tps"] = actualTPS
	gt.stateMutex.RUnlock()

	gt.systemsMutex.RLock()
	stats["systems_count"] = len(gt.systems)
	gt.systemsMutex.RUnlock()

	gt.View(func(w *service.World) {
		stats["score"] = w.Score()
		stats["game_over"] = w.IsGameOver()
		stats["objects_count"] = len(w.Objects())
	})

	return stats
}

// GetSystemsStats возвращает метрики систем
func (gt *GameTicker) GetSystemsStats() map[string]interface{} {
	return gt.perfMonitor.GetSystemsStats()
}

func (gt *GameTicker) updateTickMetrics(tickTime time.Duration) {
	gt.stateMutex.Lock()
	defer gt.stateMutex.Unlock()

	if tickTime > gt.maxObservedTick {
		gt.maxObservedTick = tickTime
	}

	// Простое скользящее среднее
	if gt.averageTickTime == 0 {
		gt.averageTickTime = tickTime
	} else {
		gt.averageTickTime = (gt.averageTickTime*9 + tickTime) / 10
	}
}

func (gt *GameTicker) checkPerformance(tickTime time.Duration) {
	if tickTime > gt.maxTickTime {
		gt.logger.Printf("[GameTicker] КРИТИЧЕСКОЕ ПРЕДУПРЕЖДЕНИЕ: Тик превысил максимальное время! %v > %v (цель: %v)",
			tickTime, gt.maxTickTime, gt.tickDuration)
	} else if tickTime > gt.warningThreshold {
		gt.logger.Printf("[GameTicker] ПРЕДУПРЕЖДЕНИЕ: Медленный тик: %v (цель: %v)",
			tickTime, gt.tickDuration)
	}
}
