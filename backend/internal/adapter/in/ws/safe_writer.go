package ws

import (
	"encoding/json"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// SafeWriter обеспечивает потокобезопасную запись в WebSocket.
// Каждая запись ограничена по времени: клиент, который не читает,
// не может надолго задержать отправителя
type SafeWriter struct {
	conn      *websocket.Conn
	mutex     sync.Mutex
	writeWait time.Duration
}

// NewSafeWriter создает новый экземпляр SafeWriter.
// writeWait <= 0 означает запись без ограничения по времени
func NewSafeWriter(conn *websocket.Conn, writeWait time.Duration) *SafeWriter {
	return &SafeWriter{
		conn:      conn,
		writeWait: writeWait,
	}
}

// WriteJSON потокобезопасно отправляет JSON данные через WebSocket
func (w *SafeWriter) WriteJSON(v interface{}) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	jsonData, err := json.Marshal(v)
	if err != nil {
		// JSON не поддерживает NaN, заменяем их на 0 и пробуем еще раз
		mapData, ok := v.(map[string]interface{})
		if !ok {
			return err
		}
		sanitizeMapValues(mapData)
		if jsonData, err = json.Marshal(mapData); err != nil {
			return err
		}
	}

	if w.writeWait > 0 {
		if err := w.conn.SetWriteDeadline(time.Now().Add(w.writeWait)); err != nil {
			return err
		}
	}
	return w.conn.WriteMessage(websocket.TextMessage, jsonData)
}

// sanitizeMapValues рекурсивно обходит map и заменяет NaN и Inf на 0
func sanitizeMapValues(data map[string]interface{}) {
	for k, v := range data {
		switch val := v.(type) {
		case float64:
			data[k] = safeValue(val, 0)
		case map[string]interface{}:
			sanitizeMapValues(val)
		case []interface{}:
			for i, item := range val {
				switch itemVal := item.(type) {
				case map[string]interface{}:
					sanitizeMapValues(itemVal)
				case float64:
					val[i] = safeValue(itemVal, 0)
				}
			}
		case []map[string]interface{}:
			for _, item := range val {
				sanitizeMapValues(item)
			}
		}
	}
}

// safeValue заменяет нечисловые значения на defaultValue
func safeValue(value float64, defaultValue float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return defaultValue
	}
	return value
}

// Close закрывает соединение WebSocket
func (w *SafeWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.conn.Close()
}
