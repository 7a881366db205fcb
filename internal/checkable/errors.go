package checkable

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a structural violation of a group's discovery mode
	ErrConfiguration = errors.New("invalid group configuration")
	// ErrPositionOutOfRange is returned when a position does not name a member
	ErrPositionOutOfRange = errors.New("position out of range")
)

// ConfigurationError reports a child a strict group cannot accept
type ConfigurationError struct {
	GroupID string
	Index   int // position of the offending child in the Bind call
	Child   Node
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("group %q: child %d is %T, strict mode only accepts *checkable.Item",
		e.GroupID, e.Index, e.Child)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}
