package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/wasm-programs/handle"
	"github.com/wippyai/wasm-programs/value"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	programStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	methodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectProgram modelState = iota
	stateSelectMethod
	stateInputArgs
	stateShowResult
)

type programInfo struct {
	id      handle.Handle
	methods []string
}

type interactiveModel struct {
	ctx      context.Context
	err      error
	env      *env
	result   string
	programs []programInfo
	input    textinput.Model
	program  int
	method   int
	state    modelState
	loaded   bool
}

type loadedMsg struct {
	err      error
	programs []programInfo
}

type callResultMsg struct {
	err    error
	result string
}

func newInteractiveModel(ctx context.Context, e *env) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "int:5, text:hello, addr:<hex>, program:1"
	ti.Prompt = "params: "
	ti.Width = 60
	return &interactiveModel{
		ctx:   ctx,
		env:   e,
		input: ti,
		state: stateSelectProgram,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadPrograms
}

func (m *interactiveModel) loadPrograms() tea.Msg {
	ids, err := m.env.backend.Programs(m.ctx)
	if err != nil {
		return loadedMsg{err: err}
	}
	programs := make([]programInfo, 0, len(ids))
	for _, id := range ids {
		methods, err := m.env.rt.ProgramMethods(m.ctx, id)
		if err != nil {
			return loadedMsg{err: fmt.Errorf("load %s: %w", id, err)}
		}
		programs = append(programs, programInfo{id: id, methods: methods})
	}
	return loadedMsg{programs: programs}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state != stateInputArgs {
				m.move(-1)
				return m, nil
			}

		case "down", "j":
			if m.state != stateInputArgs {
				m.move(1)
				return m, nil
			}

		case "enter":
			switch m.state {
			case stateSelectProgram:
				if len(m.programs) > 0 && len(m.programs[m.program].methods) > 0 {
					m.method = 0
					m.state = stateSelectMethod
				}
			case stateSelectMethod:
				m.input.SetValue("")
				m.input.Focus()
				m.state = stateInputArgs
			case stateInputArgs:
				m.input.Blur()
				return m, m.callMethod
			case stateShowResult:
				m.reset(stateSelectMethod)
			}
			return m, nil

		case "esc":
			switch m.state {
			case stateSelectMethod:
				m.state = stateSelectProgram
			case stateInputArgs:
				m.input.Blur()
				m.state = stateSelectMethod
			case stateShowResult:
				m.reset(stateSelectMethod)
			}
			return m, nil
		}

	case loadedMsg:
		m.loaded = true
		m.err = msg.err
		m.programs = msg.programs
		return m, nil

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
		return m, nil
	}

	if m.state == stateInputArgs {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) move(delta int) {
	switch m.state {
	case stateSelectProgram:
		m.program = clamp(m.program+delta, len(m.programs))
	case stateSelectMethod:
		m.method = clamp(m.method+delta, len(m.programs[m.program].methods))
	}
}

func clamp(i, n int) int {
	return max(0, min(i, n-1))
}

func (m *interactiveModel) reset(state modelState) {
	m.result = ""
	m.err = nil
	m.state = state
}

func (m *interactiveModel) selected() (handle.Handle, string) {
	p := m.programs[m.program]
	return p.id, p.methods[m.method]
}

func (m *interactiveModel) callMethod() tea.Msg {
	args, err := value.ParseList(m.input.Value())
	if err != nil {
		return callResultMsg{err: err}
	}
	id, method := m.selected()
	out, err := call(m.ctx, m.env, id, method, args, true)
	return callResultMsg{result: out, err: err}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if !m.loaded {
		return "Loading programs..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Program Simulator"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectProgram:
		if len(m.programs) == 0 {
			b.WriteString("No programs published. Use: simulator program create -wasm <file>\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}
		b.WriteString("Select a program:\n\n")
		for i, p := range m.programs {
			line := programStyle.Render(p.id.String()) + "  " + strings.Join(p.methods, ", ")
			writeItem(&b, line, i == m.program)
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter choose • q quit"))

	case stateSelectMethod:
		id := m.programs[m.program].id
		b.WriteString(fmt.Sprintf("Methods of %s:\n\n", programStyle.Render(id.String())))
		for i, name := range m.programs[m.program].methods {
			writeItem(&b, methodStyle.Render(name), i == m.method)
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter choose • esc back • q quit"))

	case stateInputArgs:
		id, method := m.selected()
		b.WriteString(fmt.Sprintf("Calling %s on %s\n\n", methodStyle.Render(method), programStyle.Render(id.String())))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter call • esc back"))

	case stateShowResult:
		_, method := m.selected()
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", methodStyle.Render(method)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func writeItem(b *strings.Builder, line string, selected bool) {
	if selected {
		b.WriteString(selectedStyle.Render("> " + line))
	} else {
		b.WriteString("  " + line)
	}
	b.WriteString("\n")
}

func runInteractive(ctx context.Context, e *env) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}
	p := tea.NewProgram(newInteractiveModel(ctx, e), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
