package notification

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/banquet/banquet-api/internal/domain/booking"
)

func newTestEvent(hallID uuid.UUID) *booking.Event {
	return &booking.Event{
		Type:        booking.EventCreated,
		BookingID:   uuid.New(),
		VenueID:     uuid.New(),
		HallID:      hallID,
		CustomerID:  uuid.New(),
		BookingDate: "2026-06-10",
		StartTime:   "10:00",
		EndTime:     "12:00",
		OccurredAt:  time.Now(),
	}
}

func registerWatcher(t *testing.T, hub *Hub, hallID uuid.UUID) *Connection {
	t.Helper()
	conn := &Connection{
		UserID: uuid.New(),
		Send:   make(chan []byte, 8),
	}
	before := hub.ConnectionCount()
	hub.Register(conn)
	waitForConnections(t, hub, before+1)
	hub.Watch(hallID, conn.UserID)
	return conn
}

func waitForConnections(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.ConnectionCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("hub never reached %d connections", want)
		}
		time.Sleep(time.Millisecond)
	}
}

func receive(t *testing.T, conn *Connection) *booking.Event {
	t.Helper()
	select {
	case data := <-conn.Send:
		var ev booking.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("bad event payload: %v", err)
		}
		return &ev
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
		return nil
	}
}

func TestHubDeliversToHallWatchers(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	hallID := uuid.New()
	watcher := registerWatcher(t, hub, hallID)
	other := registerWatcher(t, hub, uuid.New())

	event := newTestEvent(hallID)
	hub.Broadcast(event)

	got := receive(t, watcher)
	if got.BookingID != event.BookingID || got.Type != booking.EventCreated {
		t.Errorf("got event %+v, want booking %s", got, event.BookingID)
	}

	select {
	case data := <-other.Send:
		t.Errorf("watcher of another hall received event: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnwatchStopsDelivery(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	hallID := uuid.New()
	watcher := registerWatcher(t, hub, hallID)

	hub.Broadcast(newTestEvent(hallID))
	receive(t, watcher)

	hub.Unwatch(hallID, watcher.UserID)
	hub.Broadcast(newTestEvent(hallID))

	select {
	case data := <-watcher.Send:
		t.Errorf("unwatched connection received event: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubFullBufferDoesNotBlock(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	hallID := uuid.New()
	conn := &Connection{UserID: uuid.New(), Send: make(chan []byte)} // no buffer, never read
	hub.Register(conn)
	waitForConnections(t, hub, 1)
	hub.Watch(hallID, conn.UserID)

	done := make(chan struct{})
	go func() {
		hub.Broadcast(newTestEvent(hallID))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow consumer")
	}
}
