package checkable

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/charmbracelet/log"
)

// NoPosition is returned when no member is checked
const NoPosition = -1

// Mode selects how a Group discovers its members
type Mode int

const (
	// Permissive searches nested containers for items and ignores anything else
	Permissive Mode = iota
	// Strict only accepts items as direct children
	Strict
)

func (m Mode) String() string {
	switch m {
	case Permissive:
		return "permissive"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "permissive" or "strict"
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "permissive":
		return Permissive, nil
	case "strict":
		return Strict, nil
	default:
		return Permissive, fmt.Errorf("unknown group mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// GroupObserver receives member changes forwarded by a Group
type GroupObserver func(group *Group, item *Item, checked bool)

// GroupState is the persisted part of a Group. Members are rediscovered on Bind.
type GroupState struct {
	LastCheckedIndex int `toml:"last_checked_index"`
}

type groupObserver struct {
	id int
	fn GroupObserver
}

// Group keeps at most one of its member items checked
type Group struct {
	id          string
	mode        Mode
	members     []*Item
	unsubscribe map[*Item]func()
	lastChecked int
	sweeping    bool
	pending     []*Item

	observers []groupObserver
	nextObsID int
}

// NewGroup creates an empty group
func NewGroup(id string, mode Mode) *Group {
	return &Group{
		id:          id,
		mode:        mode,
		unsubscribe: make(map[*Item]func()),
		lastChecked: NoPosition,
	}
}

// ID returns the group id
func (g *Group) ID() string {
	return g.id
}

// Mode returns the discovery mode
func (g *Group) Mode() Mode {
	return g.mode
}

// Bind runs one discovery pass over children. Items not seen before are appended
// in discovery order and subscribed to; an item that is already checked becomes the
// selection. In strict mode a child that is not an item fails the whole pass before
// anything is registered.
func (g *Group) Bind(children ...Node) error {
	if g.mode == Strict {
		for idx, child := range children {
			if _, ok := child.(*Item); !ok {
				err := &ConfigurationError{GroupID: g.id, Index: idx, Child: child}
				log.Error("group bind rejected", "group", g.id, "err", err)
				return err
			}
		}
	}

	before := len(g.members)
	visited := make(map[Container]bool)
	for _, child := range children {
		g.discover(child, visited)
	}
	log.Debug("group bound", "group", g.id, "mode", g.mode, "added", len(g.members)-before, "members", len(g.members))
	return nil
}

// Unbind drops every member and subscription
func (g *Group) Unbind() {
	for _, cancel := range g.unsubscribe {
		cancel()
	}
	g.unsubscribe = make(map[*Item]func())
	g.members = nil
	g.pending = nil
	g.lastChecked = NoPosition
}

func (g *Group) discover(node Node, visited map[Container]bool) {
	switch n := node.(type) {
	case *Item:
		g.register(n)
	case Container:
		if g.mode != Permissive {
			return
		}
		if reflect.TypeOf(n).Comparable() {
			if visited[n] {
				return
			}
			visited[n] = true
		}
		for _, child := range n.Children() {
			g.discover(child, visited)
		}
	}
}

func (g *Group) register(item *Item) {
	if item == nil {
		return
	}
	if _, ok := g.unsubscribe[item]; !ok {
		g.members = append(g.members, item)
		g.unsubscribe[item] = item.Observe(g.onMemberChanged)
	}
	if item.IsChecked() {
		// adopted silently, group observers only hear about the forced unchecks
		g.lastChecked = g.IndexOf(item)
		g.settle()
	}
}

func (g *Group) onMemberChanged(item *Item, checked bool) {
	if item.IsChecked() != checked {
		// superseded by a change made from an earlier observer
		return
	}
	if !checked {
		g.notify(item, false)
		return
	}
	g.lastChecked = g.IndexOf(item)
	if g.sweeping {
		g.pending = append(g.pending, item)
		return
	}
	g.settle(item)
}

// settle sweeps for the current selection, then forwards the one check among
// checked and those that arrived during the sweep that is still the selection.
// A check that was undone by the sweep is never forwarded.
func (g *Group) settle(checked ...*Item) {
	if g.sweeping {
		return
	}
	g.sweep()
	checked = append(checked, g.pending...)
	g.pending = nil
	for _, item := range checked {
		if item.IsChecked() && g.IndexOf(item) == g.lastChecked {
			g.notify(item, true)
			return
		}
	}
}

// sweep unchecks every checked member other than lastChecked, in member order.
// Forced unchecks come back through onMemberChanged with checked=false, which never
// sweeps. If an observer checks another member meanwhile, the pass is repeated for it
// and the check is queued in pending.
func (g *Group) sweep() {
	if g.sweeping {
		return
	}
	g.sweeping = true
	defer func() { g.sweeping = false }()

	for pass := 0; pass <= len(g.members); pass++ {
		target := g.lastChecked
		for idx, member := range g.members {
			if idx != g.lastChecked && member.IsChecked() {
				member.SetChecked(false)
			}
		}
		if g.lastChecked == target {
			return
		}
	}
	log.Warn("group selection did not settle", "group", g.id, "last_checked", g.lastChecked)
}

func (g *Group) notify(item *Item, checked bool) {
	observers := make([]groupObserver, len(g.observers))
	copy(observers, g.observers)
	for _, o := range observers {
		o.fn(g, item, checked)
	}
}

// Observe registers a group observer and returns a function that removes it
func (g *Group) Observe(fn GroupObserver) func() {
	g.nextObsID++
	id := g.nextObsID
	g.observers = append(g.observers, groupObserver{id: id, fn: fn})

	return func() {
		for idx, o := range g.observers {
			if o.id == id {
				g.observers = append(g.observers[:idx:idx], g.observers[idx+1:]...)
				return
			}
		}
	}
}

// Check checks the member at position
func (g *Group) Check(position int) error {
	if position < 0 || position >= len(g.members) {
		return fmt.Errorf("group %q: check %d of %d members: %w", g.id, position, len(g.members), ErrPositionOutOfRange)
	}
	item := g.members[position]
	item.SetChecked(true)
	if !item.Ready() {
		// no notification during setup, keep the bookkeeping ourselves
		g.lastChecked = position
		g.settle()
	}
	return nil
}

// ClearCheck unchecks the checked member, if any
func (g *Group) ClearCheck() {
	if item := g.CheckedItem(); item != nil {
		item.SetChecked(false)
	}
}

// CheckedPosition returns the position of the checked member or NoPosition
func (g *Group) CheckedPosition() int {
	for idx, member := range g.members {
		if member.IsChecked() {
			return idx
		}
	}
	return NoPosition
}

// CheckedItem returns the checked member or nil
func (g *Group) CheckedItem() *Item {
	for _, member := range g.members {
		if member.IsChecked() {
			return member
		}
	}
	return nil
}

// LastCheckedIndex returns the position recorded by the last check. It is not cleared
// when that member is unchecked.
func (g *Group) LastCheckedIndex() int {
	return g.lastChecked
}

// IndexOf returns the member position of item or NoPosition
func (g *Group) IndexOf(item *Item) int {
	for idx, member := range g.members {
		if member == item {
			return idx
		}
	}
	return NoPosition
}

// Members returns the members in discovery order
func (g *Group) Members() []*Item {
	members := make([]*Item, len(g.members))
	copy(members, g.members)
	return members
}

// Len returns the number of members
func (g *Group) Len() int {
	return len(g.members)
}

// SaveState captures the persisted state
func (g *Group) SaveState() GroupState {
	return GroupState{LastCheckedIndex: g.lastChecked}
}

// RestoreState restores the recorded position. Members and their checked states
// come back through Bind.
func (g *Group) RestoreState(s GroupState) {
	g.lastChecked = s.LastCheckedIndex
}
