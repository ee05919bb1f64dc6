package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/pdfium-bridge/config"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	logStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// logTail is how many captured log lines the result view shows.
const logTail = 8

type action int

const (
	actionSave action = iota
	actionForm
	actionOutput
	actionStats
	actionQuit
)

type modelState int

const (
	stateSelectAction modelState = iota
	stateInputPath
	stateShowResult
)

type interactiveModel struct {
	err      error
	cfg      *config.Config
	session  *session
	logs     *observer.ObservedLogs
	input    string
	output   string
	password string
	result   string
	path     textinput.Model
	selected int
	state    modelState
}

func newInteractiveModel(cfg *config.Config, input, output, password string) *interactiveModel {
	return &interactiveModel{
		cfg:      cfg,
		input:    input,
		output:   output,
		password: password,
		state:    stateSelectAction,
	}
}

type loadedMsg struct {
	err     error
	session *session
	logs    *observer.ObservedLogs
}

type actionResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadDocument
}

func (m *interactiveModel) loadDocument() tea.Msg {
	level, err := zapcore.ParseLevel(m.cfg.Log.Level)
	if err != nil {
		return loadedMsg{err: err}
	}
	core, logs := observer.New(level)

	s, err := openSession(context.Background(), m.cfg, zap.New(core), m.input, m.output, m.password)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{session: s, logs: logs}
}

func (m *interactiveModel) actions() []action {
	return []action{actionSave, actionForm, actionOutput, actionStats, actionQuit}
}

func (m *interactiveModel) label(a action) string {
	switch a {
	case actionSave:
		return "Save as copy to " + m.output
	case actionForm:
		if m.session != nil && m.session.formBound() {
			return "Exit form-fill environment"
		}
		return "Bind form-fill environment"
	case actionOutput:
		return "Change output path"
	case actionStats:
		return "Show bridge stats"
	case actionQuit:
		return "Quit"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

func (m *interactiveModel) quit() (tea.Model, tea.Cmd) {
	if m.session != nil {
		m.session.close(context.Background())
	}
	return m, tea.Quit
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateInputPath {
			return m.updatePath(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m.quit()

		case "up", "k":
			if m.state == stateSelectAction && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectAction && m.selected < len(m.actions())-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectAction:
				return m.run(m.actions()[m.selected])

			case stateShowResult:
				m.state = stateSelectAction
				m.result = ""
				m.err = nil
			}

		case "esc":
			if m.state == stateShowResult {
				m.state = stateSelectAction
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.session = msg.session
		m.logs = msg.logs

	case actionResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	return m, nil
}

func (m *interactiveModel) updatePath(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "enter":
		if v := strings.TrimSpace(m.path.Value()); v != "" {
			m.output = v
			m.session.output = v
		}
		m.state = stateSelectAction
		return m, nil
	case "esc":
		m.state = stateSelectAction
		return m, nil
	}

	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m *interactiveModel) run(a action) (tea.Model, tea.Cmd) {
	if m.session == nil {
		return m, nil
	}
	switch a {
	case actionQuit:
		return m.quit()
	case actionOutput:
		ti := textinput.New()
		ti.Prompt = "output: "
		ti.SetValue(m.output)
		ti.Width = 60
		ti.Focus()
		m.path = ti
		m.state = stateInputPath
		return m, textinput.Blink
	}
	return m, func() tea.Msg { return m.perform(a) }
}

func (m *interactiveModel) perform(a action) tea.Msg {
	ctx := context.Background()
	s := m.session

	switch a {
	case actionSave:
		res, err := s.save(ctx)
		if err != nil {
			return actionResultMsg{err: err}
		}
		return actionResultMsg{result: res.String()}

	case actionForm:
		if s.formBound() {
			return actionResultMsg{err: s.exitForm(ctx), result: "form-fill environment exited"}
		}
		return actionResultMsg{err: s.bindForm(ctx), result: "form-fill environment bound"}

	case actionStats:
		st := s.bridge.Stats()
		return actionResultMsg{result: fmt.Sprintf(
			"documents %d, sinks %d (%d bytes), form infos %d, environments %d, pages %d\n"+
				"sink memory: %d bytes in %d blocks, peak %d, limit %d",
			st.Documents, st.Sinks, st.SinkBytes, st.FormInfos, st.FormEnvironments, st.FormPages,
			st.Memory.TotalAllocated, st.Memory.AllocationCount, st.Memory.Peak, st.Memory.Limit,
		)}
	}
	return actionResultMsg{}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.session == nil {
		return "Loading document..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("PDF Bridge"))
	b.WriteString(" ")
	b.WriteString(m.input)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectAction:
		b.WriteString("Select an action:\n\n")
		for i, a := range m.actions() {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + m.label(a)))
			} else {
				b.WriteString("  " + actionStyle.Render(m.label(a)))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter run • q quit"))

	case stateInputPath:
		b.WriteString(m.path.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter confirm • esc back"))

	case stateShowResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		if lines := m.recentLogs(); len(lines) > 0 {
			b.WriteString(logStyle.Render(strings.Join(lines, "\n")))
			b.WriteString("\n\n")
		}
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

// recentLogs formats the last captured log entries.
func (m *interactiveModel) recentLogs() []string {
	if m.logs == nil {
		return nil
	}
	entries := m.logs.All()
	if len(entries) > logTail {
		entries = entries[len(entries)-logTail:]
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		fields := e.ContextMap()
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		line := e.LoggerName + ": " + e.Message
		for _, k := range keys {
			line += fmt.Sprintf(" %s=%v", k, fields[k])
		}
		lines = append(lines, line)
	}
	return lines
}

func runInteractive(cfg *config.Config, input, output, password string) error {
	p := tea.NewProgram(newInteractiveModel(cfg, input, output, password), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
