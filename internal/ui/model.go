package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"checkable/internal/checkable"
	"checkable/internal/config"
	"checkable/internal/eventbus"
	"checkable/internal/state"
	"checkable/internal/ui/services/navigation"
	"checkable/internal/ui/tile"
	"checkable/internal/ui/views"
)

// E2EEnv makes the view print a ready marker for the pty test harness
const E2EEnv = "CHECKABLE_E2E_TEST"

const (
	readyMarker = "__READY__"
	tileGap     = 1
	originX     = 2 // Main style padding
	originY     = 1
)

// hitBox is the screen rectangle of one tile from the last render
type hitBox struct {
	x, y, w, h int
	index      int
}

// Model is the gallery: standalone tiles followed by one single-selection group
type Model struct {
	bus    eventbus.EventBus
	config *config.Config
	store  state.Store
	styles *views.Styles
	keys   keyMap
	help   help.Model
	nav    *navigation.Service
	events *EventLog
	pager  *PagerOps

	items      []*checkable.Item
	tiles      []*tile.Model // standalone tiles first, then group members in group order
	byID       map[string]*tile.Model
	standalone int
	group      *checkable.Group
	cancels    []func()

	width       int
	height      int
	status      string
	statusStyle lipgloss.Style
	hits        []hitBox
	inPagerMode bool
	e2e         bool

	// Program reference for terminal management
	program *tea.Program
}

// NewModel builds the tiles and group from cfg. Saved state is restored before
// setup finishes so that the group adopts restored checks without notifying.
func NewModel(bus eventbus.EventBus, cfg *config.Config, store state.Store) (*Model, error) {
	m := &Model{
		bus:    bus,
		config: cfg,
		store:  store,
		styles: views.NewStyles(),
		keys:   defaultKeyMap(),
		help:   help.New(),
		nav:    navigation.NewService(bus),
		events: NewEventLog(bus, DefaultEventLogSize),
		byID:   make(map[string]*tile.Model),
		e2e:    os.Getenv(E2EEnv) != "",
	}
	m.statusStyle = m.styles.Status

	appearance := cfg.Appearance.ToAppearance()
	newTile := func(tc config.TileConfig) *checkable.Item {
		item := checkable.NewItem(tc.ID,
			checkable.WithLabel(tc.Label),
			checkable.WithChecked(tc.Checked),
			checkable.WithAppearance(appearance),
		)
		t := tile.New(item, tc.Glyph, tc.CheckedGlyph)
		m.items = append(m.items, item)
		m.byID[tc.ID] = t
		return item
	}

	for _, tc := range cfg.Tiles {
		newTile(tc)
	}

	var nodes []checkable.Node
	panels := make(map[string]*checkable.Panel)
	for _, tc := range cfg.Group.Tiles {
		item := newTile(tc)
		if tc.Panel == "" {
			nodes = append(nodes, item)
			continue
		}
		panel, ok := panels[tc.Panel]
		if !ok {
			panel = checkable.NewPanel(tc.Panel)
			panels[tc.Panel] = panel
			nodes = append(nodes, panel)
		}
		panel.Add(item)
	}

	if cfg.Group.ID != "" {
		m.group = checkable.NewGroup(cfg.Group.ID, cfg.Group.Mode)
	}

	if store != nil {
		snapshot, err := store.Load()
		if err != nil {
			log.Warn("Ignoring saved state", "err", err)
			m.publish(eventbus.ErrorEvent{Message: "restore state", Err: err})
			m.setStatus("Saved state ignored, see log", m.styles.StatusWarning)
		} else {
			restored := snapshot.Apply(m.items, m.groups()...)
			log.Debug("Restored state", "items", restored)
		}
	}

	for _, item := range m.items {
		item.FinishSetup()
	}

	if m.group != nil {
		if err := m.group.Bind(nodes...); err != nil {
			m.events.Close()
			return nil, fmt.Errorf("failed to bind group %q: %w", cfg.Group.ID, err)
		}
		m.cancels = append(m.cancels, m.group.Observe(m.onGroupChanged))
	}

	for _, tc := range cfg.Tiles {
		m.tiles = append(m.tiles, m.byID[tc.ID])
	}
	m.standalone = len(m.tiles)
	if m.group != nil {
		for _, member := range m.group.Members() {
			m.tiles = append(m.tiles, m.byID[member.ID()])
		}
	}

	for _, item := range m.items {
		m.cancels = append(m.cancels, item.Observe(m.onItemChanged))
	}

	m.nav.SetLayout(len(m.tiles), cfg.UISettings.Columns)
	m.focus(m.nav.GetCursor())
	if m.status == "" {
		m.status = "Ready"
	}
	return m, nil
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.pager = NewPagerOps(p)
}

// Group returns the single-selection group, or nil when none is configured
func (m *Model) Group() *checkable.Group {
	return m.group
}

// Items returns every item, standalone ones first
func (m *Model) Items() []*checkable.Item {
	return m.items
}

// EventLog returns the recorder behind the L key
func (m *Model) EventLog() *EventLog {
	return m.events
}

// Status returns the status line message
func (m *Model) Status() string {
	return m.status
}

// Focused returns the index of the focused tile
func (m *Model) Focused() int {
	return m.nav.GetCursor()
}

// Close detaches the observers and the event log
func (m *Model) Close() {
	for _, cancel := range m.cancels {
		cancel()
	}
	m.cancels = nil
	m.events.Close()
}

// SaveState writes the current tile state to the store
func (m *Model) SaveState() error {
	if m.store == nil {
		return nil
	}
	return m.store.Save(state.Capture(m.items, m.groups()...))
}

func (m *Model) groups() []*checkable.Group {
	if m.group == nil {
		return nil
	}
	return []*checkable.Group{m.group}
}

func (m *Model) publish(event eventbus.DomainEvent) {
	if m.bus != nil {
		m.bus.Publish(event)
	}
}

func (m *Model) onItemChanged(item *checkable.Item, checked bool) {
	m.publish(eventbus.ItemCheckedChangedEvent{
		ItemID:  item.ID(),
		Label:   item.Label(),
		Checked: checked,
	})
	if m.group != nil && m.group.IndexOf(item) >= 0 {
		return
	}
	m.setStatus(fmt.Sprintf("%s %s", displayName(item), checkedWord(checked)), m.styles.Status)
}

func (m *Model) onGroupChanged(g *checkable.Group, item *checkable.Item, checked bool) {
	position := g.IndexOf(item)
	m.publish(eventbus.GroupCheckedChangedEvent{
		GroupID:  g.ID(),
		ItemID:   item.ID(),
		Position: position,
		Checked:  checked,
	})
	if checked {
		m.setStatus(fmt.Sprintf("%s: %s", m.groupTitle(), displayName(item)), m.styles.Status)
	} else if g.CheckedPosition() == checkable.NoPosition {
		m.setStatus(fmt.Sprintf("%s: nothing picked", m.groupTitle()), m.styles.Status)
	}
}

func (m *Model) setStatus(msg string, style lipgloss.Style) {
	m.status = msg
	m.statusStyle = style
}

func (m *Model) groupTitle() string {
	if m.config.Group.Title != "" {
		return m.config.Group.Title
	}
	return m.group.ID()
}

func displayName(item *checkable.Item) string {
	if item.Label() != "" {
		return item.Label()
	}
	return item.ID()
}

func (m *Model) focus(index int) {
	for i, t := range m.tiles {
		if i == index {
			t.Focus()
		} else {
			t.Blur()
		}
	}
}

// startAnimations collects the first frame of every tile whose transition is
// waiting. A single key press can change several tiles through the group.
func (m *Model) startAnimations() tea.Cmd {
	var cmds []tea.Cmd
	for _, t := range m.tiles {
		if cmd := t.StartCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("checkable"), m.startAnimations())
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.relayout()
		return m, nil

	case tile.FrameMsg:
		if t, ok := m.byID[msg.ID]; ok {
			_, cmd := t.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case EventMsg:
		if e, ok := msg.Event.(eventbus.ErrorEvent); ok {
			m.setStatus(fmt.Sprintf("%s: %v", e.Message, e.Err), m.styles.StatusError)
		}
		return m, nil

	case pauseRenderingMsg:
		m.inPagerMode = true
		return m, nil

	case resumeRenderingMsg:
		m.inPagerMode = false
		return m, nil

	case pagerMsg:
		if msg.err != nil {
			log.Error("Pager failed", "title", msg.title, "err", msg.err)
			m.setStatus(fmt.Sprintf("Cannot show %s: %v", msg.title, msg.err), m.styles.StatusError)
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.config.UISettings.Autosave {
			if err := m.SaveState(); err != nil {
				log.Error("Autosave failed", "err", err)
			}
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.navigate(navigation.DirectionUp)
	case key.Matches(msg, m.keys.Down):
		m.navigate(navigation.DirectionDown)
	case key.Matches(msg, m.keys.Left):
		m.navigate(navigation.DirectionLeft)
	case key.Matches(msg, m.keys.Right):
		m.navigate(navigation.DirectionRight)
	case key.Matches(msg, m.keys.Home):
		m.navigate(navigation.DirectionHome)
	case key.Matches(msg, m.keys.End):
		m.navigate(navigation.DirectionEnd)

	case key.Matches(msg, m.keys.Activate), key.Matches(msg, m.keys.Force):
		if t := m.focusedTile(); t != nil {
			_, cmd := t.Update(msg)
			return m, tea.Batch(cmd, m.startAnimations())
		}

	case key.Matches(msg, m.keys.Clear):
		if m.group != nil {
			m.group.ClearCheck()
		}

	case key.Matches(msg, m.keys.Position):
		m.checkPosition(int(msg.Runes[0] - '1'))

	case key.Matches(msg, m.keys.Save):
		if err := m.SaveState(); err != nil {
			log.Error("Save failed", "err", err)
			m.setStatus(fmt.Sprintf("Save failed: %v", err), m.styles.StatusError)
		} else {
			m.setStatus("State saved", m.styles.StatusSuccess)
		}

	case key.Matches(msg, m.keys.Log):
		return m, m.showPager("event log", m.events.String())

	case key.Matches(msg, m.keys.Help):
		title := ""
		if m.group != nil {
			title = m.groupTitle()
		}
		return m, m.showPager("help", NewHelpRenderer().RenderHelpContent(title))
	}

	return m, m.startAnimations()
}

func (m *Model) navigate(direction navigation.Direction) {
	m.nav.Navigate(direction)
	m.focus(m.nav.GetCursor())
}

func (m *Model) focusedTile() *tile.Model {
	i := m.nav.GetCursor()
	if i < 0 || i >= len(m.tiles) {
		return nil
	}
	return m.tiles[i]
}

func (m *Model) checkPosition(position int) {
	if m.group == nil {
		return
	}
	if err := m.group.Check(position); err != nil {
		m.setStatus(fmt.Sprintf("No tile at position %d", position+1), m.styles.StatusWarning)
		return
	}
	m.nav.MoveToIndex(m.standalone + position)
	m.focus(m.nav.GetCursor())
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.config.UISettings.Mouse {
		return m, nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	index := m.tileAt(msg.X, msg.Y)
	if index < 0 {
		return m, nil
	}
	m.nav.MoveToIndex(index)
	m.focus(index)
	m.tiles[index].Item().Activate()
	return m, m.startAnimations()
}

func (m *Model) tileAt(x, y int) int {
	for _, h := range m.hits {
		if x >= h.x && x < h.x+h.w && y >= h.y && y < h.y+h.h {
			return h.index
		}
	}
	return -1
}

// showPager hands the terminal to ov, pausing frames while it runs
func (m *Model) showPager(title, content string) tea.Cmd {
	if m.program == nil || m.pager == nil {
		m.setStatus("Pager unavailable", m.styles.StatusWarning)
		return nil
	}
	program, pager := m.program, m.pager
	return func() tea.Msg {
		program.Send(pauseRenderingMsg{})
		err := pager.Show(title, content)
		program.Send(resumeRenderingMsg{})
		return pagerMsg{title: title, err: err}
	}
}

// columns is the configured grid width, reduced to what fits the terminal
func (m *Model) columns() int {
	cols := m.config.UISettings.Columns
	if m.width > 0 && len(m.tiles) > 0 {
		per := m.tiles[0].Width() + tileGap
		// group box border and padding take four cells
		if fit := (m.width - 2*originX - 4) / per; fit < cols {
			cols = fit
		}
	}
	if cols < 1 {
		cols = 1
	}
	return cols
}

func (m *Model) relayout() {
	m.nav.SetLayout(len(m.tiles), m.columns())
	m.focus(m.nav.GetCursor())
}

// View renders the gallery
func (m *Model) View() string {
	if m.inPagerMode {
		return ""
	}

	m.hits = m.hits[:0]
	cols := m.nav.GetColumns()

	var lines []string
	title := m.styles.Title.Render("checkable")
	lines = append(lines, strings.Split(title, "\n")...)

	if m.standalone > 0 {
		grid := m.renderGrid(m.tiles[:m.standalone], 0, cols, originX, originY+len(lines))
		lines = append(lines, grid...)
		lines = append(lines, "")
	}

	if m.group != nil {
		header := m.styles.GroupTitle.Render(m.groupTitle())
		if m.group.Mode() == checkable.Strict {
			header += m.styles.Dim.Render(" (strict)")
		}
		// border row plus the header row
		top := originY + len(lines) + 2
		inner := []string{header}
		inner = append(inner, m.renderGrid(m.tiles[m.standalone:], m.standalone, cols, originX+2, top)...)
		box := m.styles.GroupBox.Render(strings.Join(inner, "\n"))
		lines = append(lines, strings.Split(box, "\n")...)
	}

	status := m.statusStyle.Render(m.status)
	if m.group != nil {
		status = lipgloss.JoinHorizontal(lipgloss.Top, status, m.styles.Status.Render("  "+m.groupSummary()))
	}
	lines = append(lines, status)
	lines = append(lines, m.styles.Help.Render(m.help.View(m.keys)))

	if m.e2e {
		lines = append(lines, readyMarker)
	}

	return m.styles.Main.Render(strings.Join(lines, "\n"))
}

// renderGrid lays tiles out in rows and records where each one landed
func (m *Model) renderGrid(tiles []*tile.Model, first, cols, x, y int) []string {
	var out []string
	for start := 0; start < len(tiles); start += cols {
		end := start + cols
		if end > len(tiles) {
			end = len(tiles)
		}
		var row []string
		cx := x
		height := 0
		for i, t := range tiles[start:end] {
			view := t.View()
			w, h := lipgloss.Width(view), lipgloss.Height(view)
			m.hits = append(m.hits, hitBox{x: cx, y: y, w: w, h: h, index: first + start + i})
			if i > 0 {
				row = append(row, strings.Repeat(" ", tileGap))
			}
			row = append(row, view)
			cx += w + tileGap
			if h > height {
				height = h
			}
		}
		out = append(out, strings.Split(lipgloss.JoinHorizontal(lipgloss.Top, row...), "\n")...)
		y += height
	}
	return out
}

func (m *Model) groupSummary() string {
	item := m.group.CheckedItem()
	if item == nil {
		return fmt.Sprintf("[%s: none]", m.group.ID())
	}
	return fmt.Sprintf("[%s: %s %d/%d]", m.group.ID(), displayName(item), m.group.CheckedPosition()+1, m.group.Len())
}
