package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/structfmt/witlayout"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// ExploreCmd opens a TUI that recompiles the format on every keystroke.
// Without a terminal it prints the layout once.
type ExploreCmd struct {
	Format string `arg:"" optional:"" help:"Initial format string"`
}

func (c *ExploreCmd) Run(g *Globals) error {
	if f, ok := g.Out.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		if c.Format == "" {
			return fmt.Errorf("explore needs a terminal or a format")
		}
		s, err := g.compile(c.Format)
		if err != nil {
			return err
		}
		writeLayout(g.Out, s.Layout())
		return nil
	}

	p := tea.NewProgram(newExploreModel(g, c.Format), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type exploreView int

const (
	viewLayout exploreView = iota
	viewWit
)

type exploreModel struct {
	err    error
	g      *Globals
	layout string
	wit    string
	input  textinput.Model
	view   exploreView
}

func newExploreModel(g *Globals, source string) *exploreModel {
	ti := textinput.New()
	ti.Placeholder = "@bhl"
	ti.Prompt = "format: "
	ti.Width = 60
	ti.SetValue(source)
	ti.Focus()

	m := &exploreModel{g: g, input: ti}
	m.refresh()
	return m
}

func (m *exploreModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.view = (m.view + 1) % 2
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.refresh()
	}
	return m, cmd
}

// refresh recompiles the current input.
func (m *exploreModel) refresh() {
	m.layout, m.wit, m.err = "", "", nil
	source := m.input.Value()
	if strings.TrimSpace(source) == "" {
		return
	}

	s, err := m.g.compile(source)
	if err != nil {
		m.err = err
		return
	}

	var b strings.Builder
	writeLayout(&b, s.Layout())
	m.layout = b.String()

	td, err := witlayout.Record("record", s.Layout())
	if err != nil {
		m.wit = err.Error()
		return
	}
	m.wit = witlayout.Render(td)
	if err := witlayout.Compatible(s.Layout()); err != nil {
		m.wit += "\n// not canonical ABI compatible: " + err.Error()
	} else {
		m.wit += "\n// canonical ABI compatible"
	}
}

func (m *exploreModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("structc explore"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	for i, name := range []string{"layout", "wit"} {
		if exploreView(i) == m.view {
			b.WriteString(activeTabStyle.Render(" " + name + " "))
		} else {
			b.WriteString(tabStyle.Render(" " + name + " "))
		}
	}
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.view == viewLayout:
		b.WriteString(resultStyle.Render(m.layout))
	default:
		b.WriteString(resultStyle.Render(m.wit))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("type to edit • tab layout/wit • esc quit"))

	return b.String()
}
