package state

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"

	"checkable/internal/checkable"
	"checkable/internal/eventbus"
)

// Snapshot is the saved state of every tile and group, keyed by id
type Snapshot struct {
	Version int                             `toml:"version"`
	Items   map[string]checkable.ItemState  `toml:"items"`
	Groups  map[string]checkable.GroupState `toml:"groups"`
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Version: 1,
		Items:   make(map[string]checkable.ItemState),
		Groups:  make(map[string]checkable.GroupState),
	}
}

// Capture records the current state of items and groups
func Capture(items []*checkable.Item, groups ...*checkable.Group) *Snapshot {
	s := NewSnapshot()
	for _, item := range items {
		s.Items[item.ID()] = item.SaveState()
	}
	for _, group := range groups {
		s.Groups[group.ID()] = group.SaveState()
	}
	return s
}

// Apply restores the recorded state onto items and groups that have an entry.
// It returns how many items were restored.
func (s *Snapshot) Apply(items []*checkable.Item, groups ...*checkable.Group) int {
	restored := 0
	for _, item := range items {
		if saved, ok := s.Items[item.ID()]; ok {
			item.RestoreState(saved)
			restored++
		}
	}
	for _, group := range groups {
		if saved, ok := s.Groups[group.ID()]; ok {
			group.RestoreState(saved)
		}
	}
	return restored
}

// Store persists snapshots
type Store interface {
	Load() (*Snapshot, error)
	Save(snapshot *Snapshot) error
	Path() string
}

// FileStore keeps the snapshot in a TOML file
type FileStore struct {
	path string
	bus  eventbus.EventBus
}

// NewFileStore creates a store for path; bus may be nil
func NewFileStore(path string, bus eventbus.EventBus) *FileStore {
	return &FileStore{path: path, bus: bus}
}

// Path returns the state file path
func (fs *FileStore) Path() string {
	return fs.path
}

// Load reads the snapshot. A missing file yields an empty snapshot.
func (fs *FileStore) Load() (*Snapshot, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		log.Debug("No saved state", "path", fs.path)
		return NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	s := NewSnapshot()
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", fs.path, err)
	}
	if s.Items == nil {
		s.Items = make(map[string]checkable.ItemState)
	}
	if s.Groups == nil {
		s.Groups = make(map[string]checkable.GroupState)
	}

	if fs.bus != nil {
		fs.bus.Publish(eventbus.StateRestoredEvent{Path: fs.path, Items: len(s.Items)})
	}
	return s, nil
}

// Save writes the snapshot. A failure is also published as an error event.
func (fs *FileStore) Save(snapshot *Snapshot) error {
	err := fs.save(snapshot)
	if err != nil && fs.bus != nil {
		fs.bus.Publish(eventbus.ErrorEvent{Message: "save state", Err: err})
	}
	return err
}

func (fs *FileStore) save(snapshot *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(fs.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := toml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(fs.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	if fs.bus != nil {
		fs.bus.Publish(eventbus.StateSavedEvent{Path: fs.path})
	}
	log.Info("State saved", "path", fs.path, "items", len(snapshot.Items))
	return nil
}
