package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"
)

// HelpRenderer handles help content rendering
type HelpRenderer struct{}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer() *HelpRenderer {
	return &HelpRenderer{}
}

// RenderHelpContent generates help content with colors for the pager
func (r *HelpRenderer) RenderHelpContent(groupTitle string) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	row := func(keys, desc string) string {
		return fmt.Sprintf("  %s %s\n", keyStyle.Render(keys), descStyle.Render(desc))
	}

	var help strings.Builder

	help.WriteString(titleStyle.Render("Checkable Help"))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Focus"))
	help.WriteString("\n")
	help.WriteString(row("↑/↓, k/j", "Move focus up/down a row"))
	help.WriteString(row("←/→, h/l", "Move focus left/right"))
	help.WriteString(row("g/G", "First/last tile"))
	help.WriteString(row("click", "Focus and toggle a tile"))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Tiles"))
	help.WriteString("\n")
	help.WriteString(row("Space/Enter", "Toggle the focused tile"))
	help.WriteString(row("f", "Toggle without animation"))
	help.WriteString("\n")

	if groupTitle == "" {
		groupTitle = "Group"
	}
	help.WriteString(sectionStyle.Render(groupTitle))
	help.WriteString("\n")
	help.WriteString(row("1-9", "Check the tile at that position"))
	help.WriteString(row("c", "Clear the group"))
	help.WriteString(lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")).
		Render("  Checking a tile in the group unchecks every other one."))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Other"))
	help.WriteString("\n")
	help.WriteString(row("s", "Save tile state"))
	help.WriteString(row("L", "Show the event log"))
	help.WriteString(row("?", "Show this help"))
	help.WriteString(row("q", "Quit (saves when autosave is on)"))

	return help.String()
}

// PagerOps shows text in the ov pager, handing the terminal over while it runs
type PagerOps struct {
	program *tea.Program
}

// NewPagerOps creates a new pager operations instance
func NewPagerOps(program *tea.Program) *PagerOps {
	return &PagerOps{program: program}
}

// Show runs ov on content until the user quits it
func (p *PagerOps) Show(title, content string) error {
	if p.program == nil {
		return fmt.Errorf("program not set")
	}

	// Release terminal control to run ov
	if err := p.program.ReleaseTerminal(); err != nil {
		return err
	}

	defer func() {
		// Small delay to ensure ov has fully exited before restoring terminal
		time.Sleep(100 * time.Millisecond)
		_ = p.program.RestoreTerminal()
	}()

	return runPager(title, strings.NewReader(content))
}

func runPager(title string, r io.Reader) error {
	root, err := oviewer.NewRoot(r)
	if err != nil {
		return err
	}

	// don't write the buffer back to our screen on exit
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)
	root.Doc.Caption = title

	return root.Run()
}
