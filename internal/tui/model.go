// Package tui presents the quiz in a terminal. It drives the same engine and
// builds the same view as the HTTP widget; only the drawing differs.
package tui

import (
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"quiz-widget/internal/models"
	"quiz-widget/internal/quiz"
	"quiz-widget/internal/widget"
)

// LoadFunc produces the engine. Until it returns the model shows the loading
// placeholder, the terminal counterpart of waiting for the host SDK.
type LoadFunc func() (*quiz.Engine, error)

type engineLoadedMsg struct {
	engine *quiz.Engine
	err    error
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Advance key.Binding
	Restart key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Advance, k.Restart, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Advance, k.Restart, k.Quit},
	}
}

// forSession switches off the bindings that do nothing in the session's
// current phase, so help lists only what applies.
func (k keyMap) forSession(finished bool) keyMap {
	k.Up.SetEnabled(!finished)
	k.Down.SetEnabled(!finished)
	k.Select.SetEnabled(!finished)
	k.Advance.SetEnabled(!finished)
	k.Restart.SetEnabled(finished)
	return k
}

var defaultKeys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys(" ", "x"),
		key.WithHelp("space/1-9", "select"),
	),
	Advance: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "next"),
	),
	Restart: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "play again"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q", "esc"),
		key.WithHelp("q/esc", "quit"),
	),
}

type Model struct {
	load    LoadFunc
	header  models.Header
	engine  *quiz.Engine
	session models.Session
	cursor  int
	err     error
	keys    keyMap
	help    help.Model
}

func New(load LoadFunc, header models.Header) Model {
	return Model{load: load, header: header, keys: defaultKeys, help: help.New()}
}

func (m Model) Init() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		engine, err := load()
		return engineLoadedMsg{engine: engine, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case engineLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.engine = msg.engine
		m.session = m.engine.Start("terminal")
		m.cursor = 0
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.engine == nil {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.session.Finished {
		if key.Matches(msg, m.keys.Restart) {
			m.session = m.engine.Start("terminal")
			m.cursor = 0
		}
		return m, nil
	}

	options := len(m.engine.Question(m.session.CurrentIndex).Options)
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < options-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		m.selectOption(m.cursor)
	case key.Matches(msg, m.keys.Advance):
		next, err := m.engine.Advance(m.session)
		if err != nil {
			if !errors.Is(err, models.ErrNoSelection) {
				slog.Warn("advance rejected", "error", err)
			}
			return m, nil
		}
		m.session = next
		m.cursor = 0
	default:
		if k := msg.String(); len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
			idx := int(k[0] - '1')
			if idx < options {
				m.cursor = idx
				m.selectOption(idx)
			}
		}
	}
	return m, nil
}

func (m *Model) selectOption(index int) {
	next, err := m.engine.Select(m.session, index)
	if err != nil {
		slog.Warn("select rejected", "index", index, "error", err)
		return
	}
	m.session = next
}

// Session returns the current session state.
func (m Model) Session() models.Session {
	return m.session
}

func (m Model) Err() error {
	return m.err
}

func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}
	if m.engine == nil {
		return Render(models.View{Loading: true}, m.cursor)
	}
	view := Render(widget.Build(m.engine, m.session, true, m.header), m.cursor)
	return view + "\n" + m.help.View(m.keys.forSession(m.session.Finished)) + "\n"
}
