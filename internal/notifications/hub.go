package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventConnected      = "connected"
	EventSessionUpdated = "session_updated"
	EventSessionClosed  = "session_closed"
)

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Hub рассылает события экранных сессий SSE-подписчикам.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan Event]struct{}
	buffer      int
	now         func() time.Time
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[chan Event]struct{}),
		buffer:      10,
		now:         time.Now,
	}
}

// Subscribe подписывает на события сессии и возвращает канал и функцию отписки.
func (h *Hub) Subscribe(sessionID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	sessionSubs, ok := h.subscribers[sessionID]
	if !ok {
		sessionSubs = make(map[chan Event]struct{})
		h.subscribers[sessionID] = sessionSubs
	}
	sessionSubs[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			subs, exists := h.subscribers[sessionID]
			if !exists {
				return
			}
			if _, subscribed := subs[ch]; !subscribed {
				return
			}
			delete(subs, ch)
			if len(subs) == 0 {
				delete(h.subscribers, sessionID)
			}
			close(ch)
		})
	}
}

// Publish отправляет событие всем подписчикам сессии. Медленный подписчик
// теряет самое старое событие, последнее состояние доходит всегда.
func (h *Hub) Publish(sessionID uuid.UUID, event Event) {
	event.Timestamp = h.now().UTC()

	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers[sessionID] {
		deliver(ch, event)
	}
}

// Close отправляет session_closed и закрывает все каналы сессии.
func (h *Hub) Close(sessionID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subscribers[sessionID]
	if !ok {
		return
	}
	delete(h.subscribers, sessionID)

	closed := Event{Type: EventSessionClosed, Timestamp: h.now().UTC()}
	for ch := range subs {
		deliver(ch, closed)
		close(ch)
	}
}

// Subscribers возвращает число подписчиков сессии.
func (h *Hub) Subscribers(sessionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers[sessionID])
}

func deliver(ch chan Event, event Event) {
	select {
	case ch <- event:
		return
	default:
	}

	select {
	case <-ch:
	default:
	}

	select {
	case ch <- event:
	default:
	}
}
