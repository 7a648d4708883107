package ws

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"stacker/backend/internal/core/domain/event"
	"stacker/backend/internal/core/domain/service"
	"stacker/backend/internal/game"
)

// MoveStep шаг сдвига активного ящика за одну команду
const MoveStep = 0.25

// DefaultWriteWait предельное время записи одного сообщения клиенту.
// Рассылка идет из игрового цикла, поэтому предел невелик
const DefaultWriteWait = time.Second

// GameLoop игровой цикл, через который адаптер работает с миром
type GameLoop interface {
	game.Commander
	View(fn func(w *service.World))
}

type handlerFunc func(client *client, message map[string]interface{}) error

// client подключенный игрок
type client struct {
	sessionID string
	writer    *SafeWriter
}

// WSAdapter адаптер для WebSocket соединений
type WSAdapter struct {
	upgrader websocket.Upgrader
	handlers map[string]handlerFunc
	loop     GameLoop
	logger   *log.Logger

	clients   map[*client]bool
	clientsMu sync.Mutex

	// UpdateEvery период рассылки позиций в тиках
	UpdateEvery uint64

	// WriteWait предел записи, после которого клиент отключается.
	// Применяется к клиентам, подключенным после изменения
	WriteWait time.Duration
}

// NewWSAdapter создает новый экземпляр WSAdapter
func NewWSAdapter(loop GameLoop, logger *log.Logger) *WSAdapter {
	if logger == nil {
		logger = log.Default()
	}

	a := &WSAdapter{
		loop:   loop,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		handlers:    make(map[string]handlerFunc),
		clients:     make(map[*client]bool),
		UpdateEvery: 3,
		WriteWait:   DefaultWriteWait,
	}
	a.registerHandlers()
	return a
}

// Attach подписывает адаптер на события мира. Возвращает функцию отписки
func (a *WSAdapter) Attach(bus *event.Bus) func() {
	return bus.SubscribeAll(func(e event.Event) {
		if msg := eventMessage(e); msg != nil {
			a.broadcast(msg)
		}
	})
}

// eventMessage переводит событие мира в сообщение клиенту
func eventMessage(e event.Event) map[string]interface{} {
	switch ev := e.(type) {
	case event.ObjectCreated:
		return NewCreateMessage(ev.Object.Base())
	case event.PerfectDrop:
		return NewPerfectDropMessage(ev.ObjectID, ev.NewSize)
	case event.ScoreChanged:
		return NewScoreMessage(ev.Score, ev.Text)
	case event.PropertyChanged:
		return NewPropertyChangedMessage(ev.Key, ev.Value)
	case event.GameOver:
		return NewGameOverMessage(ev.FinalScore)
	default:
		return nil
	}
}

// BroadcastUpdate рассылает позиции объектов. Подходит как хук тика
func (a *WSAdapter) BroadcastUpdate(w *service.World, tick uint64) {
	if a.UpdateEvery > 1 && tick%a.UpdateEvery != 0 {
		return
	}
	if a.ClientCount() == 0 {
		return
	}
	a.broadcast(NewUpdateMessage(w, tick))
}

func (a *WSAdapter) broadcast(msg map[string]interface{}) {
	a.clientsMu.Lock()
	defer a.clientsMu.Unlock()

	for c := range a.clients {
		if err := c.writer.WriteJSON(msg); err != nil {
			// После ошибки или таймаута соединение непригодно, отключаем клиента.
			// Цикл чтения в HandleWS завершится на закрытом соединении
			a.logger.Printf("[WSAdapter] Ошибка при отправке %v клиенту %s, отключаем: %v", msg["type"], c.sessionID, err)
			delete(a.clients, c)
			c.writer.Close()
		}
	}
}

// ClientCount возвращает число подключенных клиентов
func (a *WSAdapter) ClientCount() int {
	a.clientsMu.Lock()
	defer a.clientsMu.Unlock()
	return len(a.clients)
}

// registerHandlers регистрирует обработчики сообщений
func (a *WSAdapter) registerHandlers() {
	a.handlers[MessageTypeCommand] = a.handleCommand
	a.handlers[MessageTypeSetProperty] = a.handleSetProperty

	a.handlers[MessageTypePing] = func(c *client, message map[string]interface{}) error {
		clientTime, _ := message["client_time"].(float64)
		return c.writer.WriteJSON(NewPongMessage(clientTime))
	}
}

// parseCommand переводит команду клиента в команду игрового цикла
func parseCommand(name string, message map[string]interface{}) (game.Command, error) {
	switch name {
	case CommandLeft:
		return game.CommandMove{DX: -MoveStep}, nil
	case CommandRight:
		return game.CommandMove{DX: MoveStep}, nil
	case CommandDrop:
		return game.CommandDrop{}, nil
	case CommandRelease:
		return game.CommandRelease{}, nil
	case CommandSelect:
		id, ok := message["id"].(float64)
		if !ok {
			return nil, fmt.Errorf("команда %s без id объекта", name)
		}
		return game.CommandSelect{ID: int(id)}, nil
	default:
		return nil, fmt.Errorf("неизвестная команда: %s", name)
	}
}

func (a *WSAdapter) handleCommand(c *client, message map[string]interface{}) error {
	name, ok := message["cmd"].(string)
	if !ok {
		return fmt.Errorf("неверный формат команды")
	}
	clientTime, _ := message["client_time"].(float64)

	cmd, err := parseCommand(name, message)
	if err != nil {
		return err
	}
	if err := a.loop.Submit(cmd); err != nil {
		return fmt.Errorf("команда %s: %w", cmd.Name(), err)
	}

	return c.writer.WriteJSON(NewAckMessage(name, clientTime))
}

func (a *WSAdapter) handleSetProperty(c *client, message map[string]interface{}) error {
	key, ok := message["key"].(string)
	if !ok || key == "" {
		return fmt.Errorf("свойство без ключа")
	}

	if err := a.loop.Submit(game.CommandSetProperty{Key: key, Value: message["value"]}); err != nil {
		return fmt.Errorf("свойство %s: %w", key, err)
	}

	clientTime, _ := message["client_time"].(float64)
	return c.writer.WriteJSON(NewAckMessage(MessageTypeSetProperty, clientTime))
}

// HandleWS обрабатывает WebSocket соединения
func (a *WSAdapter) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Printf("[WSAdapter] Ошибка при установке WebSocket соединения: %v", err)
		return
	}

	c := &client{
		sessionID: uuid.NewString(),
		writer:    NewSafeWriter(conn, a.WriteWait),
	}

	// Снимок и регистрация под блокировкой мира, чтобы не потерять события между ними
	a.loop.View(func(world *service.World) {
		if err := c.writer.WriteJSON(NewInfoMessage(c.sessionID, "connected")); err != nil {
			a.logger.Printf("[WSAdapter] Ошибка при отправке приветствия %s: %v", c.sessionID, err)
		}
		if err := c.writer.WriteJSON(NewSnapshotMessage(world)); err != nil {
			a.logger.Printf("[WSAdapter] Ошибка при отправке снимка %s: %v", c.sessionID, err)
		}

		a.clientsMu.Lock()
		a.clients[c] = true
		a.clientsMu.Unlock()
	})

	a.logger.Printf("[WSAdapter] Клиент %s подключен", c.sessionID)

	defer func() {
		a.clientsMu.Lock()
		delete(a.clients, c)
		a.clientsMu.Unlock()
		c.writer.Close()
		a.logger.Printf("[WSAdapter] Клиент %s отключен", c.sessionID)
	}()

	for {
		var message map[string]interface{}
		if err := conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				a.logger.Printf("[WSAdapter] Ошибка при чтении сообщения от %s: %v", c.sessionID, err)
			}
			return
		}

		messageType, ok := message["type"].(string)
		if !ok {
			a.logger.Printf("[WSAdapter] Получено сообщение без типа: %v", message)
			continue
		}

		handler, ok := a.handlers[messageType]
		if !ok {
			a.logger.Printf("[WSAdapter] Нет обработчика для типа сообщения: %s", messageType)
			c.writer.WriteJSON(NewErrorMessage("unknown message type: " + messageType))
			continue
		}

		if err := handler(c, message); err != nil {
			a.logger.Printf("[WSAdapter] Ошибка обработки сообщения типа %s: %v", messageType, err)
			c.writer.WriteJSON(NewErrorMessage(err.Error()))
		}
	}
}

// Close закрывает все клиентские соединения
func (a *WSAdapter) Close() {
	a.clientsMu.Lock()
	defer a.clientsMu.Unlock()

	for c := range a.clients {
		c.writer.Close()
	}
}
