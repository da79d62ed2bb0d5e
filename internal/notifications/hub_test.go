package notifications

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestHubPublishSubscribe проверяет доставку событий подписчику.
func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	sessionID := uuid.New()

	ch, unsubscribe := hub.Subscribe(sessionID)
	defer unsubscribe()

	hub.Publish(sessionID, Event{Type: EventSessionUpdated})

	select {
	case event := <-ch:
		if event.Type != EventSessionUpdated {
			t.Fatalf("expected event type %s, got %s", EventSessionUpdated, event.Type)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("expected timestamp to be set")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event to be delivered")
	}
}

// TestHubIsolatesSessions проверяет, что события не уходят подписчикам другой сессии.
func TestHubIsolatesSessions(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe(uuid.New())
	defer unsubscribe()

	hub.Publish(uuid.New(), Event{Type: EventSessionUpdated})

	select {
	case event := <-ch:
		t.Fatalf("unexpected event %s", event.Type)
	default:
	}
}

// TestHubUnsubscribe проверяет закрытие канала после отписки.
func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	sessionID := uuid.New()

	ch, unsubscribe := hub.Subscribe(sessionID)
	unsubscribe()
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
	if hub.Subscribers(sessionID) != 0 {
		t.Fatal("expected no subscribers")
	}
}

// TestHubKeepsLatestEvent проверяет, что при переполнении буфера последнее событие не теряется.
func TestHubKeepsLatestEvent(t *testing.T) {
	hub := NewHub()
	hub.buffer = 2
	sessionID := uuid.New()

	ch, unsubscribe := hub.Subscribe(sessionID)
	defer unsubscribe()

	for i := 0; i < 5; i++ {
		hub.Publish(sessionID, Event{Type: EventSessionUpdated, Data: i})
	}

	var last Event
	for i := 0; i < 2; i++ {
		last = <-ch
	}
	if last.Data != 4 {
		t.Fatalf("expected latest event to be kept, got %v", last.Data)
	}
}

// TestHubClose проверяет уведомление о закрытии сессии.
func TestHubClose(t *testing.T) {
	hub := NewHub()
	sessionID := uuid.New()

	ch, unsubscribe := hub.Subscribe(sessionID)
	hub.Close(sessionID)
	unsubscribe()

	event, ok := <-ch
	if !ok || event.Type != EventSessionClosed {
		t.Fatalf("expected %s event, got %+v", EventSessionClosed, event)
	}
	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
}
