package navigation

import (
	"checkable/internal/eventbus"
)

// Service moves keyboard focus over a grid of tiles laid out row by row
type Service struct {
	state *State
	bus   eventbus.EventBus
}

// NewService creates a new navigation service; bus may be nil
func NewService(bus eventbus.EventBus) *Service {
	return &Service{
		state: &State{Columns: 1},
		bus:   bus,
	}
}

// GetCursor returns the focused tile index
func (s *Service) GetCursor() int {
	return s.state.Cursor
}

// GetColumns returns the grid width
func (s *Service) GetColumns() int {
	return s.state.Columns
}

// SetLayout updates the tile count and grid width, keeping the cursor in range
func (s *Service) SetLayout(count, columns int) {
	if columns < 1 {
		columns = 1
	}
	if count < 0 {
		count = 0
	}
	s.state.Count = count
	s.state.Columns = columns
	s.MoveToIndex(s.state.Cursor)
}

// Position returns the row and column of index
func (s *Service) Position(index int) (row, col int) {
	return index / s.state.Columns, index % s.state.Columns
}

// Navigate handles navigation in a direction
func (s *Service) Navigate(direction Direction) {
	cursor := s.state.Cursor

	switch direction {
	case DirectionUp:
		if cursor-s.state.Columns >= 0 {
			cursor -= s.state.Columns
		}
	case DirectionDown:
		if cursor+s.state.Columns < s.state.Count {
			cursor += s.state.Columns
		}
	case DirectionLeft:
		cursor--
	case DirectionRight:
		cursor++
	case DirectionHome:
		cursor = 0
	case DirectionEnd:
		cursor = s.state.Count - 1
	}

	s.MoveToIndex(cursor)
}

// MoveToIndex moves the cursor to a specific index
func (s *Service) MoveToIndex(index int) {
	oldCursor := s.state.Cursor
	s.state.Cursor = s.clampIndex(index)

	if oldCursor != s.state.Cursor && s.bus != nil {
		s.bus.Publish(eventbus.FocusMovedEvent{
			OldIndex: oldCursor,
			NewIndex: s.state.Cursor,
		})
	}
}

func (s *Service) clampIndex(index int) int {
	if index >= s.state.Count {
		index = s.state.Count - 1
	}
	if index < 0 {
		return 0
	}
	return index
}
