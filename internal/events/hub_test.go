package events

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"belongings/internal/domain/models/inventory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHub_DeliversOnlyToOwner(t *testing.T) {
	hub := NewHub(testLogger())

	alice, cancelAlice := hub.Subscribe("alice")
	defer cancelAlice()
	bob, cancelBob := hub.Subscribe("bob")
	defer cancelBob()

	hub.Publish(inventory.Event{Type: inventory.EventFolderUpdated, UserID: "alice", ResourceID: "f1"})

	select {
	case ev := <-alice:
		assert.Equal(t, inventory.EventFolderUpdated, ev.Type)
		assert.Equal(t, "f1", ev.ResourceID)
		assert.False(t, ev.At.IsZero(), "publish stamps the event time")
	default:
		t.Fatal("alice did not receive the event")
	}

	select {
	case ev := <-bob:
		t.Fatalf("bob received %+v", ev)
	default:
	}
}

func TestHub_FanOutToEverySubscriber(t *testing.T) {
	hub := NewHub(testLogger())

	a, cancelA := hub.Subscribe("u1")
	defer cancelA()
	b, cancelB := hub.Subscribe("u1")
	defer cancelB()
	require.Equal(t, 2, hub.Subscribers("u1"))

	hub.Publish(inventory.Event{Type: inventory.EventItemUpdated, UserID: "u1"})

	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	var mu sync.Mutex
	dropped := 0
	hub := NewHub(testLogger(), WithBuffer(1), WithDropHook(func(string) {
		mu.Lock()
		dropped++
		mu.Unlock()
	}))

	ch, cancel := hub.Subscribe("u1")
	defer cancel()

	for i := 0; i < 3; i++ {
		hub.Publish(inventory.Event{Type: inventory.EventFolderUpdated, UserID: "u1"})
	}

	assert.Len(t, ch, 1)
	mu.Lock()
	assert.Equal(t, 2, dropped)
	mu.Unlock()
}

func TestHub_CancelClosesAndUnregisters(t *testing.T) {
	hub := NewHub(testLogger())

	ch, cancel := hub.Subscribe("u1")
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.Subscribers("u1"))

	// publishing after cancel must not panic on the closed channel
	hub.Publish(inventory.Event{Type: inventory.EventFolderUpdated, UserID: "u1"})
}
