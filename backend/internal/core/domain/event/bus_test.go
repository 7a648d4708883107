package event

import "testing"

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var order []int

	bus.Subscribe(TopicScore, func(Event) { order = append(order, 1) })
	bus.Subscribe(TopicScore, func(Event) { order = append(order, 2) })
	bus.Subscribe(TopicGameOver, func(Event) { order = append(order, 99) })

	bus.Publish(ScoreChanged{Score: 1, Text: "Score: 1"})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("Expected [1 2], got %v", order)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0

	unsub := bus.Subscribe(TopicPerfectDrop, func(Event) { calls++ })
	bus.Publish(PerfectDrop{ObjectID: 1})
	unsub()
	bus.Publish(PerfectDrop{ObjectID: 1})

	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestBus_UnsubscribeInsideListener(t *testing.T) {
	bus := NewBus()
	calls := 0

	var unsub func()
	unsub = bus.Subscribe(TopicCreate, func(Event) {
		calls++
		unsub()
	})
	bus.Subscribe(TopicCreate, func(Event) { calls++ })

	bus.Publish(ObjectCreated{})
	bus.Publish(ObjectCreated{})

	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus()
	var topics []Topic

	unsub := bus.SubscribeAll(func(e Event) { topics = append(topics, e.Topic()) })
	bus.Publish(PropertyChanged{Key: "k"})
	bus.Publish(GameOver{FinalScore: 3})
	unsub()
	bus.Publish(GameOver{FinalScore: 3})

	if len(topics) != 2 || topics[0] != TopicPropertyChanged || topics[1] != TopicGameOver {
		t.Errorf("Unexpected topics: %v", topics)
	}
}
