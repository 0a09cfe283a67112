package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/bizledger/internal/config"
	"go.uber.org/zap"
)

func TestHubDeliversToTopicSubscribers(t *testing.T) {
	hub := NewHub()
	sub, backlog, err := hub.Subscribe(TopicTransactions)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()
	if len(backlog) != 0 {
		t.Fatalf("expected empty backlog, got %d", len(backlog))
	}

	hub.Publish(New(TypeProjectUpdated, TopicProjects))
	hub.Publish(New(TypeTransactionDeleted, TopicTransactions).WithProject(7))

	select {
	case ev := <-sub.Events():
		if ev.Type != TypeTransactionDeleted || ev.ProjectID != "7" {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected event delivery")
	}

	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected cross-topic event %+v", ev)
	default:
	}
}

func TestHubBacklogForLateSubscriber(t *testing.T) {
	hub := NewHub()
	for i := 0; i < DefaultBufferSize+5; i++ {
		hub.Publish(New(TypeExpensesUpdated, TopicExpenses))
	}

	sub, backlog, err := hub.Subscribe(TopicExpenses)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()
	if len(backlog) != DefaultBufferSize {
		t.Fatalf("expected backlog capped at %d, got %d", DefaultBufferSize, len(backlog))
	}
}

func TestHubPublishNeverBlocks(t *testing.T) {
	hub := NewHub()
	dropped := 0
	hub.OnDrop(func(Topic) { dropped++ })

	sub, _, err := hub.Subscribe(TopicShop)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	for i := 0; i < DefaultSubscriberBuffer+3; i++ {
		hub.Publish(New(TypeSaleCreated, TopicShop))
	}
	if dropped != 3 {
		t.Fatalf("expected 3 dropped events, got %d", dropped)
	}
}

func TestHubListenersSeeEveryEvent(t *testing.T) {
	hub := NewHub()
	var seen []Type
	hub.Listen(func(ev Event) { seen = append(seen, ev.Type) })

	hub.Publish(New(TypeAccountUpdated, TopicAccounts))
	hub.Publish(New(TypeProjectUpdated, TopicProjects))

	if len(seen) != 2 {
		t.Fatalf("expected 2 listener calls, got %d", len(seen))
	}
}

func TestSubscribeRejectsUnknownTopic(t *testing.T) {
	if _, _, err := NewHub().Subscribe(Topic("payroll")); err != ErrInvalidTopic {
		t.Fatalf("expected ErrInvalidTopic, got %v", err)
	}
}

func TestBusWithoutRedisPublishesLocally(t *testing.T) {
	hub := NewHub()
	bus := NewBus(BusParams{Cfg: config.Config{}, Log: zap.NewNop(), Hub: hub})

	sub, _, err := hub.Subscribe(TopicTransactions)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	bus.Publish(context.Background(), Event{Type: TypeTransactionCreated, Topic: TopicTransactions})

	select {
	case ev := <-sub.Events():
		if ev.ID == "" || ev.OccurredAt.IsZero() {
			t.Fatalf("expected bus to stamp id and time, got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected local delivery")
	}
}

func TestHubListenerRegisteredDuringPublishRunsNextTime(t *testing.T) {
	hub := NewHub()
	var first, second int
	hub.Listen(func(Event) {
		first++
		if first == 1 {
			hub.Listen(func(Event) { second++ })
		}
	})

	hub.Publish(New(TypeAccountUpdated, TopicAccounts))
	if first != 1 || second != 0 {
		t.Fatalf("after first publish: first=%d second=%d", first, second)
	}

	hub.Publish(New(TypeAccountUpdated, TopicAccounts))
	if first != 2 || second != 1 {
		t.Fatalf("after second publish: first=%d second=%d", first, second)
	}
}

func TestBusWithRedisDeliversLocallyBeforeRelay(t *testing.T) {
	hub := NewHub()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	bus := NewBus(BusParams{
		Cfg:   config.Config{Redis: config.RedisConfig{EventsChannel: "bizledger:events"}},
		Log:   zap.NewNop(),
		Hub:   hub,
		Redis: client,
	})

	var seen []Type
	hub.Listen(func(ev Event) { seen = append(seen, ev.Type) })

	bus.Publish(context.Background(), Event{Type: TypeExpensesUpdated, Topic: TopicExpenses})
	if len(seen) != 1 || seen[0] != TypeExpensesUpdated {
		t.Fatalf("expected synchronous local delivery, got %v", seen)
	}
}

func TestBusRelaySkipsOwnEvents(t *testing.T) {
	hub := NewHub()
	bus := NewBus(BusParams{Cfg: config.Config{}, Log: zap.NewNop(), Hub: hub})

	var seen []string
	hub.Listen(func(ev Event) { seen = append(seen, ev.ID) })

	own, err := json.Marshal(envelope{Origin: bus.instance, Event: New(TypeSaleCreated, TopicShop)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	remoteEvent := New(TypeSaleCreated, TopicShop)
	remote, err := json.Marshal(envelope{Origin: "other-instance", Event: remoteEvent})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	bus.deliver(string(own))
	bus.deliver("{not json")
	bus.deliver(string(remote))

	if len(seen) != 1 || seen[0] != remoteEvent.ID {
		t.Fatalf("expected only the remote event, got %v", seen)
	}
}
