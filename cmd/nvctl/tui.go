package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wippyai/nvapi/control"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	rangeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const gaugeWidth = 30

// vibrance is the part of the control client the browser drives.
type vibrance interface {
	EnumDisplayHandles() ([]control.DisplayHandle, error)
	DisplayName(h control.DisplayHandle) (string, error)
	DVCInfo(h control.DisplayHandle, output control.OutputID) (control.DVC, error)
	SetDVCLevel(h control.DisplayHandle, output control.OutputID, level int32) error
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Dec    key.Binding
	Inc    key.Binding
	PgDown key.Binding
	PgUp   key.Binding
	Reset  key.Binding
	Edit   key.Binding
	Cancel key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Dec, k.Inc, k.Reset, k.Edit, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Dec, k.Inc, k.PgDown, k.PgUp},
		{k.Reset, k.Edit, k.Cancel, k.Quit},
	}
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Dec:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "-1")),
	Inc:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "+1")),
	PgDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "-10")),
	PgUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "+10")),
	Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "default")),
	Edit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "type level")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type dvcRow struct {
	err    error
	name   string
	dvc    control.DVC
	handle control.DisplayHandle
}

type dvcModel struct {
	err      error
	client   vibrance
	status   string
	rows     []dvcRow
	help     help.Model
	spinner  spinner.Model
	input    textinput.Model
	selected int
	loading  bool
	editing  bool
}

type loadedMsg struct {
	err  error
	rows []dvcRow
}

type setMsg struct {
	err   error
	index int
	level int32
}

func newDVCModel(c vibrance) *dvcModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	ti := textinput.New()
	ti.Prompt = "level: "
	ti.CharLimit = 4
	ti.Width = 8
	return &dvcModel{
		client:  c,
		help:    help.New(),
		spinner: s,
		input:   ti,
		loading: true,
	}
}

func (m *dvcModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load)
}

// load reads every display. A display whose vibrance cannot be read is
// kept with its error so the rest stay usable.
func (m *dvcModel) load() tea.Msg {
	handles, err := m.client.EnumDisplayHandles()
	if err != nil {
		return loadedMsg{err: err}
	}
	rows := make([]dvcRow, 0, len(handles))
	for _, h := range handles {
		row := dvcRow{handle: h, name: h.String()}
		if name, err := m.client.DisplayName(h); err == nil {
			row.name = name
		}
		row.dvc, row.err = m.client.DVCInfo(h, 0)
		rows = append(rows, row)
	}
	return loadedMsg{rows: rows}
}

// set returns a command applying level to the selected display, clamped
// to the range the driver reported.
func (m *dvcModel) set(level int32) tea.Cmd {
	if m.selected >= len(m.rows) {
		return nil
	}
	row := m.rows[m.selected]
	if row.err != nil {
		return nil
	}
	level = max(row.dvc.Min, min(row.dvc.Max, level))
	if level == row.dvc.Current {
		return nil
	}
	idx, h, c := m.selected, row.handle, m.client
	return func() tea.Msg {
		return setMsg{index: idx, level: level, err: c.SetDVCLevel(h, 0, level)}
	}
}

func (m *dvcModel) adjust(delta int32) tea.Cmd {
	if m.selected >= len(m.rows) {
		return nil
	}
	return m.set(m.rows[m.selected].dvc.Current + delta)
}

func (m *dvcModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.updateInput(msg)
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.selected > 0 {
				m.selected--
			}
		case key.Matches(msg, keys.Down):
			if m.selected < len(m.rows)-1 {
				m.selected++
			}
		case key.Matches(msg, keys.Dec):
			return m, m.adjust(-1)
		case key.Matches(msg, keys.Inc):
			return m, m.adjust(1)
		case key.Matches(msg, keys.PgDown):
			return m, m.adjust(-10)
		case key.Matches(msg, keys.PgUp):
			return m, m.adjust(10)
		case key.Matches(msg, keys.Reset):
			if m.selected < len(m.rows) {
				row := m.rows[m.selected]
				if !row.dvc.Extended {
					m.status = "driver reports no default level"
					return m, nil
				}
				return m, m.set(row.dvc.Default)
			}
		case key.Matches(msg, keys.Edit):
			if len(m.rows) > 0 {
				m.editing = true
				m.input.SetValue("")
				return m, m.input.Focus()
			}
		}

	case loadedMsg:
		m.loading = false
		m.err = msg.err
		m.rows = msg.rows

	case setMsg:
		if msg.index < len(m.rows) {
			if msg.err != nil {
				m.status = msg.err.Error()
			} else {
				m.rows[msg.index].dvc.Current = msg.level
				m.status = ""
			}
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *dvcModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel):
		m.editing = false
		m.input.Blur()
		return m, nil
	case msg.Type == tea.KeyEnter:
		m.editing = false
		m.input.Blur()
		level, err := strconv.ParseInt(strings.TrimSpace(m.input.Value()), 10, 32)
		if err != nil {
			m.status = fmt.Sprintf("invalid level %q", m.input.Value())
			return m, nil
		}
		return m, m.set(int32(level))
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func gauge(d control.DVC) string {
	span := d.Max - d.Min
	if span <= 0 {
		return strings.Repeat("░", gaugeWidth)
	}
	filled := int((d.Current - d.Min) * gaugeWidth / span)
	filled = max(0, min(gaugeWidth, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", gaugeWidth-filled)
}

func (m *dvcModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.loading {
		return m.spinner.View() + " Reading displays..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Digital Vibrance"))
	b.WriteString("\n\n")
	if len(m.rows) == 0 {
		b.WriteString("No displays attached.\n")
	}
	for i, row := range m.rows {
		line := fmt.Sprintf("%-16s ", row.name)
		if row.err != nil {
			line += errorStyle.Render(row.err.Error())
		} else {
			line += gauge(row.dvc) + " " +
				rangeStyle.Render(fmt.Sprintf("%d (%d..%d)", row.dvc.Current, row.dvc.Min, row.dvc.Max))
		}
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> ") + nameStyle.Render(line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.editing {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.help.View(keys)))
	return b.String()
}

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Adjust digital vibrance interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.driver()
			if err != nil {
				return err
			}
			p := tea.NewProgram(newDVCModel(c), tea.WithAltScreen(), tea.WithInput(cmd.InOrStdin()), tea.WithOutput(a.out))
			_, err = p.Run()
			return err
		},
	}
}
