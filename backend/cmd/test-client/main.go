package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/url"

	"github.com/gorilla/websocket"
)

func main() {
	var (
		serverURL = flag.String("url", "ws://localhost:8080/ws", "URL WebSocket сервера")
		count     = flag.Int("n", 20, "Сколько сообщений прочитать (0 - до конца игры)")
	)
	flag.Parse()

	u, err := url.Parse(*serverURL)
	if err != nil {
		log.Fatalf("Неверный URL: %v", err)
	}

	log.Printf("Подключение к %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Ошибка подключения: %v", err)
	}
	defer conn.Close()

	log.Printf("Успешно подключен")

	for i := 0; *count == 0 || i < *count; i++ {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("Ошибка чтения сообщения: %v", err)
			break
		}

		var msg map[string]interface{}
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Ошибка разбора сообщения: %v", err)
			continue
		}

		msgType, ok := msg["type"].(string)
		if !ok {
			log.Printf("Сообщение без типа: %v", msg)
			continue
		}

		switch msgType {
		case "info":
			log.Printf("INFO: %v (сессия %v)", msg["message"], msg["session_id"])

		case "snapshot":
			objects, _ := msg["objects"].([]interface{})
			log.Printf("SNAPSHOT: объектов %d, %v", len(objects), msg["score_text"])

		case "create":
			log.Printf("CREATE: %v (%v)", msg["id"], msg["kind"])

		case "perfect_drop":
			log.Printf("PERFECT: %v -> %v", msg["id"], msg["size"])

		case "score":
			log.Printf("SCORE: %v", msg["text"])

		case "game_over":
			log.Printf("GAME OVER: итоговый счет %v", msg["final_score"])
			return

		case "update":
			// Позиции не входят в счетчик сообщений
			i--

		default:
			log.Printf("Сообщение типа %s: %v", msgType, msg)
		}
	}

	log.Printf("Тест завершен")
}
