package navigation

// State holds all focus-related state
type State struct {
	Cursor  int
	Count   int
	Columns int
}

// Direction represents movement directions
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
	DirectionHome  Direction = "home"
	DirectionEnd   Direction = "end"
)
