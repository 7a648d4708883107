package ws

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"stacker/backend/internal/core/domain/entity"
	"stacker/backend/internal/core/domain/service"
)

// Константы для WebSocket сообщений
const (
	MessageTypeInfo            = "info"             // Приветствие с ID сессии
	MessageTypeSnapshot        = "snapshot"         // Полное состояние мира
	MessageTypeCreate          = "create"           // Создание объекта
	MessageTypeUpdate          = "update"           // Позиции объектов
	MessageTypePerfectDrop     = "perfect_drop"     // Точное попадание
	MessageTypeScore           = "score"            // Изменение счета
	MessageTypePropertyChanged = "property_changed" // Изменение свойства мира
	MessageTypeGameOver        = "game_over"        // Конец игры
	MessageTypePing            = "ping"
	MessageTypePong            = "pong"
	MessageTypeCommand         = "cmd"     // Команда от клиента
	MessageTypeAck             = "cmd_ack" // Подтверждение команды
	MessageTypeSetProperty     = "set_property"
	MessageTypeError           = "error"
)

// Команды клиента
const (
	CommandLeft    = "LEFT"
	CommandRight   = "RIGHT"
	CommandDrop    = "DROP"
	CommandRelease = "RELEASE"
	CommandSelect  = "SELECT"
)

// GetCurrentServerTime возвращает текущее серверное время в миллисекундах
func GetCurrentServerTime() int64 {
	return time.Now().UnixMilli()
}

func vecMap(v mgl64.Vec3) map[string]interface{} {
	return map[string]interface{}{"x": v.X(), "y": v.Y(), "z": v.Z()}
}

func quatMap(q mgl64.Quat) map[string]interface{} {
	return map[string]interface{}{"w": q.W, "x": q.X(), "y": q.Y(), "z": q.Z()}
}

// NewInfoMessage создает приветственное сообщение
func NewInfoMessage(sessionID, message string) map[string]interface{} {
	return map[string]interface{}{
		"type":       MessageTypeInfo,
		"session_id": sessionID,
		"message":    message,
	}
}

// NewErrorMessage создает сообщение об ошибке обработки запроса
func NewErrorMessage(message string) map[string]interface{} {
	return map[string]interface{}{
		"type":    MessageTypeError,
		"message": message,
	}
}

// NewPongMessage создает новое сообщение-ответ на пинг
func NewPongMessage(clientTime float64) map[string]interface{} {
	return map[string]interface{}{
		"type":        MessageTypePong,
		"client_time": clientTime,
		"server_time": GetCurrentServerTime(),
	}
}

// NewAckMessage создает новое сообщение-подтверждение команды
func NewAckMessage(cmd string, clientTime float64) map[string]interface{} {
	return map[string]interface{}{
		"type":        MessageTypeAck,
		"cmd":         cmd,
		"client_time": clientTime,
		"server_time": GetCurrentServerTime(),
	}
}

// NewCreateMessage описывает только что созданный объект
func NewCreateMessage(obj *entity.GameObject) map[string]interface{} {
	return map[string]interface{}{
		"type":     MessageTypeCreate,
		"id":       obj.ID,
		"kind":     string(obj.Kind),
		"position": vecMap(obj.Position),
		"size":     vecMap(obj.Size),
		"physical": obj.IsPhysical(),
	}
}

func stateMap(s service.ObjectState) map[string]interface{} {
	return map[string]interface{}{
		"id":       s.ID,
		"kind":     string(s.Kind),
		"position": vecMap(s.Position),
		"rotation": quatMap(s.Rotation),
		"size":     vecMap(s.Size),
		"physical": s.Physical,
	}
}

// NewSnapshotMessage полное состояние мира для нового клиента
func NewSnapshotMessage(w *service.World) map[string]interface{} {
	states := w.Snapshot()
	objects := make([]interface{}, 0, len(states))
	for _, s := range states {
		objects = append(objects, stateMap(s))
	}

	return map[string]interface{}{
		"type":        MessageTypeSnapshot,
		"objects":     objects,
		"score":       w.Score(),
		"score_text":  w.ScoreText(),
		"game_over":   w.IsGameOver(),
		"server_time": GetCurrentServerTime(),
	}
}

// NewUpdateMessage позиции и ориентации всех объектов на тике
func NewUpdateMessage(w *service.World, tick uint64) map[string]interface{} {
	states := w.Snapshot()
	objects := make([]interface{}, 0, len(states))
	for _, s := range states {
		objects = append(objects, map[string]interface{}{
			"id":       s.ID,
			"position": vecMap(s.Position),
			"rotation": quatMap(s.Rotation),
		})
	}

	return map[string]interface{}{
		"type":        MessageTypeUpdate,
		"tick":        tick,
		"objects":     objects,
		"server_time": GetCurrentServerTime(),
	}
}

// NewPerfectDropMessage сообщает о росте опорного ящика
func NewPerfectDropMessage(id int, size mgl64.Vec3) map[string]interface{} {
	return map[string]interface{}{
		"type": MessageTypePerfectDrop,
		"id":   id,
		"size": vecMap(size),
	}
}

// NewScoreMessage сообщает о новом счете
func NewScoreMessage(score int, text string) map[string]interface{} {
	return map[string]interface{}{
		"type":  MessageTypeScore,
		"score": score,
		"text":  text,
	}
}

// NewPropertyChangedMessage сообщает об изменении свойства мира
func NewPropertyChangedMessage(key string, value interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":  MessageTypePropertyChanged,
		"key":   key,
		"value": value,
	}
}

// NewGameOverMessage сообщает о конце игры
func NewGameOverMessage(finalScore int) map[string]interface{} {
	return map[string]interface{}{
		"type":        MessageTypeGameOver,
		"final_score": finalScore,
	}
}
