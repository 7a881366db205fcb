package tile

import (
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	colorful "github.com/lucasb-eyer/go-colorful"

	"checkable/internal/checkable"
)

const (
	// ImageRows is the height of the glyph area inside the border
	ImageRows = 3

	// DefaultWidth is the inner width of a tile in cells
	DefaultWidth = 12

	fps           = 60
	checkmark     = "✓"
	focusColor    = "#ffaf00"
	settleEpsilon = 0.005
)

// FrameMsg advances the animation of one tile
type FrameMsg struct {
	ID string
}

// KeyMap defines the keys a focused tile reacts to
type KeyMap struct {
	Activate key.Binding
	Force    key.Binding
}

// DefaultKeyMap returns the stock tile bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Activate: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space/enter", "toggle"),
		),
		Force: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "toggle without animation"),
		),
	}
}

// Model renders one checkable.Item and animates its transitions
type Model struct {
	item         *checkable.Item
	glyph        string
	checkedGlyph string
	width        int
	focused      bool
	keys         KeyMap

	spring    harmonica.Spring
	progress  float64 // 0 shows the unchecked look, 1 the checked one
	velocity  float64
	target    float64
	animating bool
	pending   bool
	frames    int
}

// New creates a tile for item and installs itself as the item's transition hook.
// checkedGlyph may be empty to reuse glyph.
func New(item *checkable.Item, glyph, checkedGlyph string) *Model {
	if checkedGlyph == "" {
		checkedGlyph = glyph
	}
	m := &Model{
		item:         item,
		glyph:        glyph,
		checkedGlyph: checkedGlyph,
		width:        DefaultWidth,
		keys:         DefaultKeyMap(),
	}
	m.spring = newSpring(item.Appearance().AnimationDuration)
	if item.IsChecked() {
		m.progress, m.target = 1, 1
	}
	item.SetTransition(m.transition)
	return m
}

// newSpring maps a duration onto an under-damped spring, which gives the
// overshoot the check animation is meant to have
func newSpring(d time.Duration) harmonica.Spring {
	seconds := d.Seconds()
	if seconds <= 0 {
		seconds = checkable.DefaultAnimationDuration.Seconds()
	}
	return harmonica.NewSpring(harmonica.FPS(fps), 2*math.Pi/seconds, 0.6)
}

// Item returns the underlying item
func (m *Model) Item() *checkable.Item {
	return m.item
}

// ID returns the item id
func (m *Model) ID() string {
	return m.item.ID()
}

// SetWidth sets the inner width in cells
func (m *Model) SetWidth(width int) {
	if width < 3 {
		width = 3
	}
	m.width = width
}

// SetKeyMap replaces the tile bindings
func (m *Model) SetKeyMap(keys KeyMap) {
	m.keys = keys
}

// Focus marks the tile as the keyboard target
func (m *Model) Focus() {
	m.focused = true
}

// Blur removes keyboard focus
func (m *Model) Blur() {
	m.focused = false
}

// Focused reports whether the tile has focus
func (m *Model) Focused() bool {
	return m.focused
}

// Progress returns the animation position, 0 unchecked and 1 checked
func (m *Model) Progress() float64 {
	return m.progress
}

// Animating reports whether frames are still pending
func (m *Model) Animating() bool {
	return m.animating || m.pending
}

func (m *Model) transition(checked bool, animated bool) {
	m.target = 0
	if checked {
		m.target = 1
	}
	if !animated || m.item.Appearance().AnimationDuration <= 0 {
		m.progress, m.velocity = m.target, 0
		m.animating, m.pending = false, false
		return
	}
	m.spring = newSpring(m.item.Appearance().AnimationDuration)
	m.frames = 0
	if !m.animating {
		m.pending = true
	}
}

// StartCmd returns the first animation frame when a transition is waiting to
// start. Transitions can be triggered by other tiles through a group, so the
// owner calls this on every tile after handling input.
func (m *Model) StartCmd() tea.Cmd {
	if !m.pending {
		return nil
	}
	m.pending = false
	m.animating = true
	return m.frame()
}

func (m *Model) frame() tea.Cmd {
	id := m.item.ID()
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg {
		return FrameMsg{ID: id}
	})
}

// Init implements the bubbletea component contract
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles activation keys and animation frames
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		if msg.ID != m.item.ID() || !m.animating {
			return m, nil
		}
		return m, m.step()

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Activate):
			m.item.Activate()
			return m, m.StartCmd()
		case key.Matches(msg, m.keys.Force):
			m.item.ForceSetChecked(!m.item.IsChecked())
			return m, m.StartCmd()
		}
	}
	return m, nil
}

func (m *Model) step() tea.Cmd {
	m.progress, m.velocity = m.spring.Update(m.progress, m.velocity, m.target)
	m.frames++

	limit := int(3*m.item.Appearance().AnimationDuration.Seconds()*fps) + fps
	settled := math.Abs(m.progress-m.target) < settleEpsilon && math.Abs(m.velocity) < settleEpsilon
	if settled || m.frames > limit {
		m.progress, m.velocity = m.target, 0
		m.animating = false
		return nil
	}
	return m.frame()
}

// Width returns the rendered width including the border
func (m *Model) Width() int {
	return lipgloss.Width(m.View())
}

// Height returns the rendered height including the border
func (m *Model) Height() int {
	return lipgloss.Height(m.View())
}

// View renders the tile
func (m *Model) View() string {
	a := m.item.Appearance()
	p := clamp(m.progress, 0, 1)
	bg := lipgloss.Color(blend(a.NormalBackground, a.CheckedBackground, p))

	rows := make([][]string, ImageRows)
	for r := range rows {
		rows[r] = blankCells(m.width)
	}

	// the normal glyph slides down and out while the checked one slides in from above
	center := ImageRows / 2
	normalRow := center + int(math.Round(m.progress*ImageRows))
	checkedRow := center + int(math.Round((m.progress-1)*ImageRows))
	glyphStyle := lipgloss.NewStyle().Background(bg)
	if normalRow >= 0 && normalRow < ImageRows {
		placeCentered(rows[normalRow], glyphStyle.Foreground(lipgloss.Color(a.NormalGlyphColor)).Render(m.glyph), lipgloss.Width(m.glyph))
	}
	if checkedRow >= 0 && checkedRow < ImageRows && checkedRow != normalRow {
		placeCentered(rows[checkedRow], glyphStyle.Foreground(lipgloss.Color(a.CheckedGlyphColor)).Bold(true).Render(m.checkedGlyph), lipgloss.Width(m.checkedGlyph))
	}

	if m.progress >= 0.5 {
		mark := lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color(a.CheckmarkColor)).Bold(true).Render(checkmark)
		row, col := markCell(a.CheckmarkPosition, m.width)
		if col == -1 {
			placeCentered(rows[row], mark, lipgloss.Width(checkmark))
		} else {
			place(rows[row], col, mark, lipgloss.Width(checkmark))
		}
	}

	fill := lipgloss.NewStyle().Background(bg)
	lines := make([]string, 0, ImageRows+1)
	for _, cells := range rows {
		lines = append(lines, renderCells(cells, fill))
	}
	if label := m.item.Label(); label != "" {
		lines = append(lines, lipgloss.NewStyle().
			Width(m.width).
			Align(lipgloss.Center).
			Background(bg).
			Foreground(lipgloss.Color(a.LabelColor)).
			Render(ansi.Truncate(label, m.width, "…")))
	}

	borderColor := a.BorderColor
	if m.focused {
		borderColor = focusColor
	}
	return lipgloss.NewStyle().
		Border(borderFor(a)).
		BorderForeground(lipgloss.Color(borderColor)).
		Render(strings.Join(lines, "\n"))
}

// borderFor picks the closest terminal border for the configured metrics
func borderFor(a checkable.Appearance) lipgloss.Border {
	switch {
	case a.BorderWidth <= 0:
		return lipgloss.HiddenBorder()
	case a.BorderWidth >= 4 && a.BorderRadius <= 0:
		return lipgloss.ThickBorder()
	case a.BorderRadius > 0:
		return lipgloss.RoundedBorder()
	default:
		return lipgloss.NormalBorder()
	}
}

// markCell returns row and column of the checkmark. Column -1 means centered.
func markCell(pos checkable.CheckPosition, width int) (int, int) {
	switch pos {
	case checkable.TopLeft:
		return 0, 0
	case checkable.Center:
		return ImageRows / 2, -1
	case checkable.BottomLeft:
		return ImageRows - 1, 0
	case checkable.BottomRight:
		return ImageRows - 1, width - 1
	default:
		return 0, width - 1
	}
}

func blankCells(width int) []string {
	cells := make([]string, width)
	for i := range cells {
		cells[i] = " "
	}
	return cells
}

// place writes a rendered piece at col; wide pieces swallow the following cells
func place(cells []string, col int, rendered string, width int) {
	if col < 0 || width < 1 || col+width > len(cells) {
		return
	}
	// blank out any wide piece the new one overlaps
	for k := col; k < col+width; k++ {
		if cells[k] != "" {
			continue
		}
		for h := k - 1; h >= 0; h-- {
			head := cells[h]
			cells[h] = " "
			if head != "" {
				break
			}
		}
	}
	for k := col + width; k < len(cells) && cells[k] == ""; k++ {
		cells[k] = " "
	}
	cells[col] = rendered
	for k := 1; k < width; k++ {
		cells[col+k] = ""
	}
}

func placeCentered(cells []string, rendered string, width int) {
	place(cells, (len(cells)-width)/2, rendered, width)
}

func renderCells(cells []string, fill lipgloss.Style) string {
	var b strings.Builder
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			b.WriteString(fill.Render(run.String()))
			run.Reset()
		}
	}
	for _, c := range cells {
		if c == " " {
			run.WriteString(c)
			continue
		}
		flush()
		b.WriteString(c)
	}
	flush()
	return b.String()
}

// blend mixes two hex colors in Lab space. Non-hex colors switch at the midpoint.
func blend(from, to string, t float64) string {
	c1, err1 := colorful.Hex(from)
	c2, err2 := colorful.Hex(to)
	if err1 != nil || err2 != nil {
		if t < 0.5 {
			return from
		}
		return to
	}
	return c1.BlendLab(c2, t).Clamped().Hex()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
