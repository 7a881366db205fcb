package checkable

// Observer receives checked state changes from an Item
type Observer func(item *Item, checked bool)

// TransitionFunc applies the visual change for a checked state.
// animated is false while the item is still in setup, on forced changes and on restore.
type TransitionFunc func(checked bool, animated bool)

// ItemState is the persisted part of an Item
type ItemState struct {
	Checked bool   `toml:"checked"`
	Label   string `toml:"label,omitempty"`
}

type itemObserver struct {
	id int
	fn Observer
}

// Item is a single toggleable unit
type Item struct {
	id         string
	label      string
	checked    bool
	ready      bool
	appearance Appearance
	transition TransitionFunc

	observers []itemObserver
	nextObsID int
}

// ItemOption configures an Item at construction
type ItemOption func(*Item)

// WithLabel sets the item label
func WithLabel(label string) ItemOption {
	return func(i *Item) { i.label = label }
}

// WithChecked sets the initial checked state without notifying anyone
func WithChecked(checked bool) ItemOption {
	return func(i *Item) { i.checked = checked }
}

// WithAppearance sets the item's appearance
func WithAppearance(a Appearance) ItemOption {
	return func(i *Item) { i.appearance = a }
}

// NewItem creates a new item. The item starts in its setup phase, see FinishSetup.
func NewItem(id string, opts ...ItemOption) *Item {
	item := &Item{
		id:         id,
		appearance: DefaultAppearance(),
	}
	for _, opt := range opts {
		opt(item)
	}
	return item
}

// ID returns the item's stable handle
func (i *Item) ID() string {
	return i.id
}

// Label returns the item label ("" when unset)
func (i *Item) Label() string {
	return i.label
}

// SetLabel sets the item label
func (i *Item) SetLabel(label string) {
	i.label = label
}

// Appearance returns the item's appearance settings
func (i *Item) Appearance() Appearance {
	return i.appearance
}

// SetAppearance replaces the item's appearance settings
func (i *Item) SetAppearance(a Appearance) {
	i.appearance = a
}

// FinishSetup ends the setup phase. From here on state changes notify observers
// and transitions are animated.
func (i *Item) FinishSetup() {
	i.ready = true
}

// Ready reports whether the setup phase has completed
func (i *Item) Ready() bool {
	return i.ready
}

// IsChecked returns the checked state
func (i *Item) IsChecked() bool {
	return i.checked
}

// SetChecked sets the checked state, applies the transition and notifies observers.
// Setting the current value again re-runs both.
func (i *Item) SetChecked(checked bool) {
	i.set(checked, i.ready)
}

// ForceSetChecked is SetChecked with a non-animated transition
func (i *Item) ForceSetChecked(checked bool) {
	i.set(checked, false)
}

// Toggle flips the checked state
func (i *Item) Toggle() {
	i.SetChecked(!i.checked)
}

// Activate handles a user activation (tap, click, key press)
func (i *Item) Activate() {
	i.Toggle()
}

// SetTransition installs the visual transition hook
func (i *Item) SetTransition(fn TransitionFunc) {
	i.transition = fn
}

// Observe registers an observer and returns a function that removes it.
// Observers are called in registration order.
func (i *Item) Observe(fn Observer) func() {
	i.nextObsID++
	id := i.nextObsID
	i.observers = append(i.observers, itemObserver{id: id, fn: fn})

	return func() {
		for idx, o := range i.observers {
			if o.id == id {
				i.observers = append(i.observers[:idx:idx], i.observers[idx+1:]...)
				return
			}
		}
	}
}

// ObserverCount returns the number of registered observers
func (i *Item) ObserverCount() int {
	return len(i.observers)
}

// SaveState captures the persisted state
func (i *Item) SaveState() ItemState {
	return ItemState{Checked: i.checked, Label: i.label}
}

// RestoreState applies a saved state without animating or notifying
func (i *Item) RestoreState(s ItemState) {
	i.checked = s.Checked
	i.label = s.Label
	i.applyTransition(false)
}

func (i *Item) set(checked bool, animated bool) {
	i.checked = checked
	i.applyTransition(animated)

	if !i.ready {
		return
	}
	// snapshot so observers added or removed while notifying apply next time
	observers := make([]itemObserver, len(i.observers))
	copy(observers, i.observers)
	for _, o := range observers {
		o.fn(i, checked)
	}
}

func (i *Item) applyTransition(animated bool) {
	if i.transition != nil {
		i.transition(i.checked, animated)
	}
}
