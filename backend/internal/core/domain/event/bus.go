package event

import (
	"github.com/go-gl/mathgl/mgl64"

	"stacker/backend/internal/core/domain/entity"
)

// Topic имя канала событий
type Topic string

// Каналы событий мира
const (
	TopicCreate          Topic = "create"
	TopicPerfectDrop     Topic = "perfect_drop"
	TopicPropertyChanged Topic = "property_changed"
	TopicScore           Topic = "score"
	TopicGameOver        Topic = "game_over"
)

// Event событие, публикуемое миром
type Event interface {
	Topic() Topic
}

// ObjectCreated создан новый объект
type ObjectCreated struct {
	Object entity.Entity
}

// PerfectDrop опорный ящик вырос после точного попадания
type PerfectDrop struct {
	ObjectID int
	NewSize  mgl64.Vec3
}

// PropertyChanged изменилось свойство мира
type PropertyChanged struct {
	Key   string
	Value interface{}
}

// ScoreChanged изменился счет
type ScoreChanged struct {
	Score int
	Text  string
}

// GameOver игра окончена
type GameOver struct {
	FinalScore int
}

// Topic возвращает канал, в который публикуется событие
func (ObjectCreated) Topic() Topic   { return TopicCreate }
func (PerfectDrop) Topic() Topic     { return TopicPerfectDrop }
func (PropertyChanged) Topic() Topic { return TopicPropertyChanged }
func (ScoreChanged) Topic() Topic    { return TopicScore }
func (GameOver) Topic() Topic        { return TopicGameOver }

// Listener обработчик событий
type Listener func(Event)

type subscription struct {
	id       uint64
	listener Listener
}

// Bus синхронная шина событий. Обработчики вызываются в том же потоке,
// в порядке подписки. Не потокобезопасна: принадлежит миру
type Bus struct {
	topics map[Topic][]subscription
	nextID uint64
}

// NewBus создает пустую шину
func NewBus() *Bus {
	return &Bus{
		topics: make(map[Topic][]subscription),
	}
}

// Subscribe подписывает обработчик на канал. Возвращает функцию отписки
func (b *Bus) Subscribe(topic Topic, listener Listener) func() {
	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscription{id: id, listener: listener})

	return func() {
		subs := b.topics[topic]
		for i, s := range subs {
			if s.id == id {
				b.topics[topic] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// SubscribeAll подписывает обработчик на все каналы мира
func (b *Bus) SubscribeAll(listener Listener) func() {
	topics := []Topic{TopicCreate, TopicPerfectDrop, TopicPropertyChanged, TopicScore, TopicGameOver}
	unsubs := make([]func(), 0, len(topics))
	for _, topic := range topics {
		unsubs = append(unsubs, b.Subscribe(topic, listener))
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

// Publish синхронно доставляет событие всем подписчикам канала
func (b *Bus) Publish(e Event) {
	subs := b.topics[e.Topic()]
	if len(subs) == 0 {
		return
	}
	// копия на случай отписки изнутри обработчика
	snapshot := make([]subscription, len(subs))
	copy(snapshot, subs)
	for _, s := range snapshot {
		s.listener(e)
	}
}
