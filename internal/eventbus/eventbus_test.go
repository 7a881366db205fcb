package eventbus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ch <-chan DomainEvent, n int) []DomainEvent {
	t.Helper()
	var got []DomainEvent
	for len(got) < n {
		select {
		case e := <-ch:
			got = append(got, e)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d events", len(got), n)
		}
	}
	return got
}

func TestPublishDeliversInOrder(t *testing.T) {
	b := New()
	defer b.Close()

	ch := make(chan DomainEvent, 10)
	b.Subscribe(EventGroupCheckedChanged, func(e DomainEvent) { ch <- e })

	b.Publish(GroupCheckedChangedEvent{GroupID: "g", ItemID: "a", Position: 0, Checked: false})
	b.Publish(GroupCheckedChangedEvent{GroupID: "g", ItemID: "b", Position: 1, Checked: true})

	got := collect(t, ch, 2)
	assert.Equal(t, "a", got[0].(GroupCheckedChangedEvent).ItemID)
	assert.Equal(t, "b", got[1].(GroupCheckedChangedEvent).ItemID)
}

func TestSubscribeFiltersByType(t *testing.T) {
	b := New()
	defer b.Close()

	ch := make(chan DomainEvent, 10)
	b.Subscribe(EventItemCheckedChanged, func(e DomainEvent) { ch <- e })

	b.Publish(FocusMovedEvent{OldIndex: 0, NewIndex: 1})
	b.Publish(ItemCheckedChangedEvent{ItemID: "solo", Checked: true})

	got := collect(t, ch, 1)
	assert.Equal(t, EventItemCheckedChanged, got[0].Type())
}

func TestUnsubscribeRemovesOnlyThatHandler(t *testing.T) {
	b := New()
	defer b.Close()

	var mu sync.Mutex
	var calls []string
	record := func(name string) EventHandler {
		return func(DomainEvent) {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, name)
		}
	}

	unsubFirst := b.Subscribe(EventStateSaved, record("first"))
	b.Subscribe(EventStateSaved, record("second"))
	unsubFirst()

	done := make(chan DomainEvent, 1)
	b.Subscribe(EventStateSaved, func(e DomainEvent) { done <- e })
	b.Publish(StateSavedEvent{Path: "state.toml"})
	collect(t, done, 1)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"second"}, calls)
}

func TestHandlerPanicDoesNotStopDispatch(t *testing.T) {
	b := New()
	defer b.Close()

	ch := make(chan DomainEvent, 1)
	b.Subscribe(EventError, func(DomainEvent) { panic("boom") })
	b.Subscribe(EventError, func(e DomainEvent) { ch <- e })

	b.Publish(ErrorEvent{Message: "x"})
	got := collect(t, ch, 1)
	require.Len(t, got, 1)
}

func TestCloseDrainsQueuedEvents(t *testing.T) {
	b := New()

	var mu sync.Mutex
	count := 0
	b.Subscribe(EventConfigSaved, func(DomainEvent) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	for i := 0; i < 5; i++ {
		b.Publish(ConfigSavedEvent{Path: "c.toml"})
	}
	b.Close()
	b.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, count)

	// publishing after close is dropped, not blocked
	b.Publish(ConfigSavedEvent{Path: "c.toml"})
}
