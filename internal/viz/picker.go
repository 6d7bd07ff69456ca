package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Opener builds the viewer for a named scenario.
type Opener func(name string) (Model, error)

const (
	stateMenu = iota
	stateSim
)

// sessionTick tags a viewer frame with the session that scheduled it, so a
// frame still in flight after esc cannot drive the next viewer.
type sessionTick struct {
	session int
	tick    TickMsg
}

// picker lists scenarios and hands over to the live viewer once one is
// chosen.
type picker struct {
	state, cursor int
	session       int
	names         []string
	descriptions  map[string]string
	open          Opener
	styles        panelStyles
	live          Model
	err           error
	width, height int
}

func NewPicker(names []string, descriptions map[string]string, open Opener) tea.Model {
	return picker{
		names:        names,
		descriptions: descriptions,
		open:         open,
		styles:       stylesFor(Themes[0]),
	}
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
	}
	if st, ok := msg.(sessionTick); ok {
		if m.state != stateSim || st.session != m.session {
			return m, nil
		}
		msg = st.tick
	}
	if m.state == stateSim {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			m.state = stateMenu
			m.session++
			return m, nil
		}
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, m.tag(cmd)
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.names)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.names) == 0 {
			return m, nil
		}
		live, err := m.open(m.names[m.cursor])
		if err != nil {
			m.err = err
			return m, nil
		}
		if m.width > 0 {
			live.resize(m.width, m.height)
		}
		m.live, m.err, m.state = live, nil, stateSim
		m.session++
		return m, m.tag(m.live.Init())
	}
	return m, nil
}

// tag wraps the viewer's frame ticks with the current session.
func (m picker) tag(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	session := m.session
	return func() tea.Msg {
		msg := cmd()
		if t, ok := msg.(TickMsg); ok {
			return sessionTick{session: session, tick: t}
		}
		return msg
	}
}

func (m picker) View() string {
	if m.state == stateSim {
		return m.live.View()
	}

	st := m.styles
	var b strings.Builder
	b.WriteString("\n\n    " + st.header.Render("NBODY") + "\n    " + st.label.Render("gravitational n-body scenes") + "\n\n")
	for i, name := range m.names {
		line := fmt.Sprintf("%-12s %s", name, m.descriptions[name])
		if i == m.cursor {
			b.WriteString("    " + st.cursor.Render("▸ "+line) + "\n")
		} else {
			b.WriteString("      " + st.value.Render(line) + "\n")
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + st.failed.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + st.help.Render("j/k navigate  enter select  esc back  q quit") + "\n")
	return b.String()
}

func RunPicker(p tea.Model) error {
	_, err := tea.NewProgram(p, tea.WithAltScreen()).Run()
	return err
}
