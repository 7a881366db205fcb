package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"checkable/internal/eventbus"
)

// DefaultEventLogSize is how many entries the event log keeps
const DefaultEventLogSize = 500

var loggedEvents = []eventbus.EventType{
	eventbus.EventItemCheckedChanged,
	eventbus.EventGroupCheckedChanged,
	eventbus.EventStateSaved,
	eventbus.EventStateRestored,
	eventbus.EventConfigLoaded,
	eventbus.EventConfigSaved,
	eventbus.EventError,
}

// EventLog records domain events published on the bus for display in the pager.
// Handlers run on the bus goroutine, so access is locked.
type EventLog struct {
	mu      sync.Mutex
	entries []string
	max     int
	now     func() time.Time
	cancels []func()
}

// NewEventLog subscribes to every loggable event type on bus
func NewEventLog(bus eventbus.EventBus, max int) *EventLog {
	if max < 1 {
		max = DefaultEventLogSize
	}
	l := &EventLog{max: max, now: time.Now}
	if bus != nil {
		for _, t := range loggedEvents {
			l.cancels = append(l.cancels, bus.Subscribe(t, l.record))
		}
	}
	return l
}

func (l *EventLog) record(event eventbus.DomainEvent) {
	line := fmt.Sprintf("%s  %s", l.now().Format("15:04:05.000"), describeEvent(event))

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, line)
	if over := len(l.entries) - l.max; over > 0 {
		l.entries = append(l.entries[:0:0], l.entries[over:]...)
	}
}

// Entries returns a copy of the recorded lines, oldest first
func (l *EventLog) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

// String renders the log for the pager
func (l *EventLog) String() string {
	entries := l.Entries()
	if len(entries) == 0 {
		return "No events yet\n"
	}
	return strings.Join(entries, "\n") + "\n"
}

// Close unsubscribes from the bus
func (l *EventLog) Close() {
	for _, cancel := range l.cancels {
		cancel()
	}
	l.cancels = nil
}

func describeEvent(event eventbus.DomainEvent) string {
	switch e := event.(type) {
	case eventbus.ItemCheckedChangedEvent:
		return fmt.Sprintf("item   %-12s %s", e.ItemID, checkedWord(e.Checked))
	case eventbus.GroupCheckedChangedEvent:
		return fmt.Sprintf("group  %-12s %s %s at %d", e.GroupID, e.ItemID, checkedWord(e.Checked), e.Position+1)
	case eventbus.StateSavedEvent:
		return fmt.Sprintf("state  saved to %s", e.Path)
	case eventbus.StateRestoredEvent:
		return fmt.Sprintf("state  restored %d items from %s", e.Items, e.Path)
	case eventbus.ConfigLoadedEvent:
		return fmt.Sprintf("config loaded %d tiles from %s", e.Tiles, e.Path)
	case eventbus.ConfigSavedEvent:
		return fmt.Sprintf("config saved to %s", e.Path)
	case eventbus.ErrorEvent:
		return fmt.Sprintf("error  %s: %v", e.Message, e.Err)
	default:
		return string(event.Type())
	}
}

func checkedWord(checked bool) string {
	if checked {
		return "checked"
	}
	return "unchecked"
}
