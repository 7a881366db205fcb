package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventItemCheckedChanged  EventType = "ItemCheckedChanged"
	EventGroupCheckedChanged EventType = "GroupCheckedChanged"
	EventFocusMoved          EventType = "FocusMoved"
	EventStateSaved          EventType = "StateSaved"
	EventStateRestored       EventType = "StateRestored"
	EventConfigLoaded        EventType = "ConfigLoaded"
	EventConfigSaved         EventType = "ConfigSaved"
	EventError               EventType = "Error"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// ItemCheckedChangedEvent is emitted when any tile changes state
type ItemCheckedChangedEvent struct {
	ItemID  string
	Label   string
	Checked bool
}

func (e ItemCheckedChangedEvent) Type() EventType { return EventItemCheckedChanged }

// GroupCheckedChangedEvent is emitted when a group forwards a member change
type GroupCheckedChangedEvent struct {
	GroupID  string
	ItemID   string
	Position int
	Checked  bool
}

func (e GroupCheckedChangedEvent) Type() EventType { return EventGroupCheckedChanged }

// FocusMovedEvent is emitted when keyboard focus moves between tiles
type FocusMovedEvent struct {
	OldIndex int
	NewIndex int
}

func (e FocusMovedEvent) Type() EventType { return EventFocusMoved }

// StateSavedEvent is emitted after tile state was written
type StateSavedEvent struct {
	Path string
}

func (e StateSavedEvent) Type() EventType { return EventStateSaved }

// StateRestoredEvent is emitted after tile state was read back
type StateRestoredEvent struct {
	Path  string
	Items int
}

func (e StateRestoredEvent) Type() EventType { return EventStateRestored }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path  string
	Tiles int
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }
