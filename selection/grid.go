package selection

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mdmdirector/devicesweep/log"
	"github.com/mdmdirector/devicesweep/types"
	"github.com/pkg/errors"
)

const defaultGridHeight = 20

var (
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	checkedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// GridSurface is a full screen checklist
type GridSurface struct {
	In    io.Reader
	Out   io.Writer
	Title string
}

func (s *GridSurface) Select(ctx context.Context, candidates []types.Entity) ([]types.Entity, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if s.In != nil {
		opts = append(opts, tea.WithInput(s.In))
	}
	if s.Out != nil {
		opts = append(opts, tea.WithOutput(s.Out))
	}

	release := log.Hold()
	defer release()

	final, err := tea.NewProgram(newGridModel(s.Title, candidates), opts...).Run()
	if err != nil {
		return nil, errors.Wrap(err, "GridSurface:Run")
	}
	m, ok := final.(gridModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type from bubbletea: %T", final)
	}
	return m.selected(), nil
}

type gridModel struct {
	title      string
	candidates []types.Entity
	checked    []bool
	cursor     int
	offset     int
	height     int
	widths     []int

	done      bool
	cancelled bool
}

func newGridModel(title string, candidates []types.Entity) gridModel {
	if title == "" {
		title = fmt.Sprintf("Select candidates (%d)", len(candidates))
	}
	return gridModel{
		title:      title,
		candidates: candidates,
		checked:    make([]bool, len(candidates)),
		height:     defaultGridHeight,
		widths:     columnWidths(candidates),
	}
}

func (m gridModel) Init() tea.Cmd {
	return nil
}

func (m gridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// title, header, footer
		m.height = msg.Height - 4
		if m.height < 1 {
			m.height = 1
		}
		m.scroll()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.candidates)-1 {
				m.cursor++
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = len(m.candidates) - 1
		case " ", "space", "x":
			if len(m.checked) > 0 {
				m.checked[m.cursor] = !m.checked[m.cursor]
			}
		case "a":
			m.toggleAll()
		case "enter":
			m.done = true
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
		m.scroll()
	}
	return m, nil
}

func (m *gridModel) toggleAll() {
	all := true
	for _, c := range m.checked {
		if !c {
			all = false
			break
		}
	}
	for i := range m.checked {
		m.checked[i] = !all
	}
}

func (m *gridModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m gridModel) selected() []types.Entity {
	if m.cancelled || !m.done {
		return nil
	}
	return pick(m.candidates, m.checked)
}

func (m gridModel) count() int {
	n := 0
	for _, c := range m.checked {
		if c {
			n++
		}
	}
	return n
}

func (m gridModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.title)
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("      " + formatRow(m.candidates[0].Columns(), m.widths)))
	b.WriteString("\n")

	end := m.offset + m.height
	if end > len(m.candidates) {
		end = len(m.candidates)
	}
	for i := m.offset; i < end; i++ {
		box := "[ ]"
		if m.checked[i] {
			box = checkedStyle.Render("[x]")
		}
		pointer := "  "
		row := formatRow(m.candidates[i].Values(), m.widths)
		if i == m.cursor {
			pointer = cursorStyle.Render("> ")
			row = cursorStyle.Render(row)
		}
		fmt.Fprintf(&b, "%s%s %s\n", pointer, box, row)
	}

	b.WriteString(helpStyle.Render(fmt.Sprintf(
		"%d/%d selected  space: toggle  a: all  enter: accept  q: cancel", m.count(), len(m.candidates))))
	return b.String()
}

func columnWidths(candidates []types.Entity) []int {
	if len(candidates) == 0 {
		return nil
	}
	cols := candidates[0].Columns()
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = lipgloss.Width(c)
	}
	for _, e := range candidates {
		for i, v := range e.Values() {
			if i < len(widths) && lipgloss.Width(v) > widths[i] {
				widths[i] = lipgloss.Width(v)
			}
		}
	}
	return widths
}

func formatRow(values []string, widths []int) string {
	cells := make([]string, len(values))
	for i, v := range values {
		w := 0
		if i < len(widths) {
			w = widths[i]
		}
		cells[i] = v + strings.Repeat(" ", max(0, w-lipgloss.Width(v)))
	}
	return strings.Join(cells, "  ")
}
