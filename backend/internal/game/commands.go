package game

import (
	"fmt"

	"stacker/backend/internal/core/domain/service"
)

// Command действие игрока, применяемое к миру в начале тика
type Command interface {
	Apply(w *service.World)
	Name() string
}

// CommandMove сдвигает активный ящик по x
type CommandMove struct {
	DX float64
}

// Apply сдвигает ящик в пределах поля
func (c CommandMove) Apply(w *service.World) { w.MoveActiveBox(c.DX) }
func (c CommandMove) Name() string           { return fmt.Sprintf("move(%.2f)", c.DX) }

// CommandDrop создает новый ящик, если активного нет
type CommandDrop struct{}

// Apply вызывает DropBox, результат не нужен
func (CommandDrop) Apply(w *service.World) { w.DropBox() }
func (CommandDrop) Name() string           { return "drop" }

// CommandRelease отпускает активный ящик
type CommandRelease struct{}

// Apply отдает ящик физике
func (CommandRelease) Apply(w *service.World) { w.ReleaseBox() }
func (CommandRelease) Name() string           { return "release" }

// CommandSelect помечает объект выбранным
type CommandSelect struct {
	ID int
}

// Apply выбирает объект, неизвестный id игнорируется
func (c CommandSelect) Apply(w *service.World) { w.Select(c.ID) }
func (c CommandSelect) Name() string           { return fmt.Sprintf("select(%d)", c.ID) }

// CommandSetProperty задает свойство мира
type CommandSetProperty struct {
	Key   string
	Value interface{}
}

// Apply записывает значение и оповещает подписчиков
func (c CommandSetProperty) Apply(w *service.World) { w.SetProperty(c.Key, c.Value) }
func (c CommandSetProperty) Name() string           { return "set_property(" + c.Key + ")" }
