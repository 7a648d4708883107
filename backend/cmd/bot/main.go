package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// CommandMessage команда серверу
type CommandMessage struct {
	Type       string `json:"type"`
	Cmd        string `json:"cmd"`
	ClientTime int64  `json:"client_time"`
}

type PingMessage struct {
	Type       string `json:"type"`
	ClientTime int64  `json:"client_time"`
}

// Bot автоматический игрок: отпускает каждый новый ящик через
// случайную задержку и заказывает следующий
type Bot struct {
	ID        string
	ServerURL string
	Conn      *websocket.Conn
	Running   bool
	Stats     BotStats
	Duration  time.Duration
	MinDelay  time.Duration
	MaxDelay  time.Duration
	mu        sync.RWMutex
	writeMu   sync.Mutex // Мьютекс для синхронизации записи в WebSocket

	sessionID string
	release   chan int // ID ящиков, ожидающих отпускания
	gameOver  chan struct{}
	overOnce  sync.Once
}

// BotStats содержит статистику работы бота
type BotStats struct {
	CommandsSent      int
	ResponsesReceived int
	BoxesReleased     int
	PerfectDrops      int
	Score             int
	Errors            int
	StartTime         time.Time
	mu                sync.RWMutex
}

// NewBot создает нового бота
func NewBot(id, serverURL string, duration, minDelay, maxDelay time.Duration) *Bot {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Bot{
		ID:        id,
		ServerURL: serverURL,
		Duration:  duration,
		MinDelay:  minDelay,
		MaxDelay:  maxDelay,
		release:   make(chan int, 16),
		gameOver:  make(chan struct{}),
		Stats: BotStats{
			StartTime: time.Now(),
		},
	}
}

// Connect подключается к серверу
func (b *Bot) Connect() error {
	u, err := url.Parse(b.ServerURL)
	if err != nil {
		return fmt.Errorf("неверный URL: %w", err)
	}

	log.Printf("[Bot %s] Подключение к %s", b.ID, u.String())

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
	}

	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("ошибка подключения: %w", err)
	}

	b.mu.Lock()
	b.Conn = conn
	b.Running = true
	b.mu.Unlock()

	log.Printf("[Bot %s] Успешно подключен", b.ID)
	return nil
}

// Disconnect отключается от сервера
func (b *Bot) Disconnect() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.Conn != nil && b.Running {
		b.Running = false
		b.Conn.Close()
		log.Printf("[Bot %s] Отключен", b.ID)
	}
}

func (b *Bot) isRunning() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.Running
}

func (b *Bot) write(v interface{}) error {
	b.mu.RLock()
	conn := b.Conn
	b.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("соединение не установлено")
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return conn.WriteJSON(v)
}

func (b *Bot) sendCommand(cmd string) error {
	err := b.write(CommandMessage{
		Type:       "cmd",
		Cmd:        cmd,
		ClientTime: time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	b.Stats.mu.Lock()
	b.Stats.CommandsSent++
	b.Stats.mu.Unlock()
	return nil
}

func (b *Bot) sendPing() error {
	return b.write(PingMessage{Type: "ping", ClientTime: time.Now().UnixMilli()})
}

// randomDelay задержка перед отпусканием ящика
func (b *Bot) randomDelay() time.Duration {
	spread := b.MaxDelay - b.MinDelay
	if spread <= 0 {
		return b.MinDelay
	}
	return b.MinDelay + rand.N(spread)
}

// handleMessage обрабатывает входящие сообщения
func (b *Bot) handleMessage(messageType int, data []byte) {
	if messageType != websocket.TextMessage {
		return
	}

	var msg map[string]interface{}
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("[Bot %s] Ошибка разбора сообщения: %v", b.ID, err)
		return
	}

	msgType, ok := msg["type"].(string)
	if !ok {
		log.Printf("[Bot %s] Сообщение без типа: %v", b.ID, msg)
		return
	}

	switch msgType {
	case "cmd_ack":
		b.Stats.mu.Lock()
		b.Stats.ResponsesReceived++
		b.Stats.mu.Unlock()

	case "pong":
		log.Printf("[Bot %s] Получен pong", b.ID)

	case "info":
		b.mu.Lock()
		b.sessionID, _ = msg["session_id"].(string)
		b.mu.Unlock()
		log.Printf("[Bot %s] Сессия %s", b.ID, b.sessionID)

	case "snapshot":
		if over, _ := msg["game_over"].(bool); over {
			b.finish()
		}

	case "create":
		if msg["kind"] != "fallingCrate" {
			return
		}
		if id, ok := msg["id"].(float64); ok {
			select {
			case b.release <- int(id):
			default:
				log.Printf("[Bot %s] Очередь ящиков переполнена", b.ID)
			}
		}

	case "perfect_drop":
		b.Stats.mu.Lock()
		b.Stats.PerfectDrops++
		b.Stats.mu.Unlock()
		log.Printf("[Bot %s] Точное попадание на ящик %v", b.ID, msg["id"])

	case "score":
		if score, ok := msg["score"].(float64); ok {
			b.Stats.mu.Lock()
			b.Stats.Score = int(score)
			b.Stats.mu.Unlock()
		}

	case "game_over":
		log.Printf("[Bot %s] Игра окончена, счет %v", b.ID, msg["final_score"])
		b.finish()

	case "update", "property_changed":
		// Обрабатываем молча

	case "error":
		b.Stats.mu.Lock()
		b.Stats.Errors++
		b.Stats.mu.Unlock()
		log.Printf("[Bot %s] Ошибка сервера: %v", b.ID, msg["message"])

	default:
		log.Printf("[Bot %s] Неизвестный тип сообщения: %s", b.ID, msgType)
	}
}

func (b *Bot) finish() {
	b.overOnce.Do(func() { close(b.gameOver) })
}

// Run запускает бота
func (b *Bot) Run() error {
	if err := b.Connect(); err != nil {
		return err
	}
	defer b.Disconnect()

	go func() {
		for b.isRunning() {
			messageType, data, err := b.Conn.ReadMessage()
			if err != nil {
				if b.isRunning() {
					log.Printf("[Bot %s] Ошибка чтения сообщения: %v", b.ID, err)
					b.Stats.mu.Lock()
					b.Stats.Errors++
					b.Stats.mu.Unlock()
					b.finish()
				}
				return
			}
			b.handleMessage(messageType, data)
		}
	}()

	pingTicker := time.NewTicker(5 * time.Second)
	defer pingTicker.Stop()

	// Первый ящик заказываем сами, не дожидаясь автоматического
	if err := b.sendCommand("DROP"); err != nil {
		return fmt.Errorf("первая команда: %w", err)
	}

	deadline := time.After(b.Duration)
	for {
		select {
		case <-deadline:
			log.Printf("[Bot %s] Время вышло", b.ID)
			return nil

		case <-b.gameOver:
			log.Printf("[Bot %s] Завершение работы", b.ID)
			return nil

		case <-pingTicker.C:
			if err := b.sendPing(); err != nil {
				log.Printf("[Bot %s] Ошибка отправки ping: %v", b.ID, err)
			}

		case id := <-b.release:
			delay := b.randomDelay()
			select {
			case <-time.After(delay):
			case <-b.gameOver:
				return nil
			}

			if err := b.sendCommand("RELEASE"); err != nil {
				log.Printf("[Bot %s] Ошибка отправки команды: %v", b.ID, err)
				b.Stats.mu.Lock()
				b.Stats.Errors++
				b.Stats.mu.Unlock()
				continue
			}
			b.Stats.mu.Lock()
			b.Stats.BoxesReleased++
			b.Stats.mu.Unlock()
			log.Printf("[Bot %s] Ящик %d отпущен через %v", b.ID, id, delay)
		}
	}
}

// PrintStats выводит статистику бота
func (b *Bot) PrintStats() {
	b.Stats.mu.RLock()
	defer b.Stats.mu.RUnlock()

	duration := time.Since(b.Stats.StartTime)
	log.Printf("[Bot %s] Статистика:", b.ID)
	log.Printf("  Время работы: %v", duration)
	log.Printf("  Команд отправлено: %d", b.Stats.CommandsSent)
	log.Printf("  Ответов получено: %d", b.Stats.ResponsesReceived)
	log.Printf("  Ящиков отпущено: %d", b.Stats.BoxesReleased)
	log.Printf("  Точных попаданий: %d", b.Stats.PerfectDrops)
	log.Printf("  Счет: %d", b.Stats.Score)
	log.Printf("  Ошибок: %d", b.Stats.Errors)
}

func main() {
	var (
		serverURL = flag.String("url", "ws://localhost:8080/ws", "URL WebSocket сервера")
		botID     = flag.String("id", "bot1", "ID бота")
		duration  = flag.Duration("duration", 2*time.Minute, "Длительность работы бота")
		minDelay  = flag.Duration("min-delay", 200*time.Millisecond, "Минимальная задержка перед отпусканием")
		maxDelay  = flag.Duration("max-delay", 1500*time.Millisecond, "Максимальная задержка перед отпусканием")
	)
	flag.Parse()

	bot := NewBot(*botID, *serverURL, *duration, *minDelay, *maxDelay)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	go func() {
		<-c
		log.Printf("[Bot %s] Получен сигнал прерывания, завершение работы...", bot.ID)
		bot.Disconnect()
		bot.PrintStats()
		os.Exit(0)
	}()

	if err := bot.Run(); err != nil {
		log.Printf("[Bot %s] Ошибка: %v", bot.ID, err)
		os.Exit(1)
	}

	bot.PrintStats()
}
