package events

import (
	"errors"
	"sort"
	"sync"
)

const (
	DefaultBufferSize       = 50
	DefaultSubscriberBuffer = 16
)

var (
	ErrHubUnavailable = errors.New("hub_unavailable")
	ErrInvalidTopic   = errors.New("invalid_topic")
)

// Hub fans events out to in-process subscribers per topic and keeps a short
// backlog so new subscribers can catch up. Delivery never blocks publishers.
type Hub struct {
	mu               sync.RWMutex
	streams          map[Topic]*stream
	listeners        []func(Event)
	bufferSize       int
	subscriberBuffer int
	nextID           uint64
	onDrop           func(Topic)
}

type stream struct {
	mu     sync.Mutex
	buffer []Event
	subs   map[uint64]chan Event
}

type Subscription struct {
	hub    *Hub
	topics []Topic
	id     uint64
	ch     chan Event
	once   sync.Once
}

func NewHub() *Hub {
	return &Hub{
		streams:          make(map[Topic]*stream),
		bufferSize:       DefaultBufferSize,
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

// OnDrop registers a callback for events a full subscriber could not take.
func (h *Hub) OnDrop(fn func(Topic)) {
	h.mu.Lock()
	h.onDrop = fn
	h.mu.Unlock()
}

// Listen registers a synchronous callback run for every published event.
func (h *Hub) Listen(fn func(Event)) {
	if h == nil || fn == nil {
		return
	}
	h.mu.Lock()
	h.listeners = append(h.listeners, fn)
	h.mu.Unlock()
}

func (h *Hub) Publish(event Event) {
	if h == nil || !event.Topic.Valid() {
		return
	}

	stream := h.ensureStream(event.Topic)
	stream.mu.Lock()
	stream.buffer = append(stream.buffer, event)
	if len(stream.buffer) > h.bufferSize {
		stream.buffer = stream.buffer[len(stream.buffer)-h.bufferSize:]
	}
	subs := make([]chan Event, 0, len(stream.subs))
	for _, ch := range stream.subs {
		subs = append(subs, ch)
	}
	stream.mu.Unlock()

	h.mu.RLock()
	listeners := make([]func(Event), len(h.listeners))
	copy(listeners, h.listeners)
	onDrop := h.onDrop
	h.mu.RUnlock()

	for _, fn := range listeners {
		fn(event)
	}

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			if onDrop != nil {
				onDrop(event.Topic)
			}
		}
	}
}

// Subscribe registers one channel across topics and returns their backlog in
// publish order.
func (h *Hub) Subscribe(topics ...Topic) (*Subscription, []Event, error) {
	if h == nil {
		return nil, nil, ErrHubUnavailable
	}
	if len(topics) == 0 {
		topics = AllTopics
	}
	for _, topic := range topics {
		if !topic.Valid() {
			return nil, nil, ErrInvalidTopic
		}
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.mu.Unlock()

	ch := make(chan Event, h.subscriberBuffer)
	backlog := make([]Event, 0)
	for _, topic := range topics {
		stream := h.ensureStream(topic)
		stream.mu.Lock()
		stream.subs[id] = ch
		backlog = append(backlog, stream.buffer...)
		stream.mu.Unlock()
	}
	sort.SliceStable(backlog, func(i, j int) bool {
		return backlog[i].OccurredAt.Before(backlog[j].OccurredAt)
	})

	return &Subscription{
		hub:    h,
		topics: append([]Topic(nil), topics...),
		id:     id,
		ch:     ch,
	}, backlog, nil
}

func (h *Hub) ensureStream(topic Topic) *stream {
	h.mu.RLock()
	current := h.streams[topic]
	h.mu.RUnlock()
	if current != nil {
		return current
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	current = h.streams[topic]
	if current == nil {
		current = &stream{subs: make(map[uint64]chan Event)}
		h.streams[topic] = current
	}
	return current
}

func (h *Hub) unsubscribe(topics []Topic, id uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, topic := range topics {
		stream := h.streams[topic]
		if stream == nil {
			continue
		}
		stream.mu.Lock()
		delete(stream.subs, id)
		stream.mu.Unlock()
	}
}

func (s *Subscription) Events() <-chan Event {
	if s == nil {
		return nil
	}
	return s.ch
}

func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.topics, s.id)
	})
}
