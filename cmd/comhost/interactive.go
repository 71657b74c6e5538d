package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oleworks/com-runtime/comerr"
	"github.com/oleworks/com-runtime/object"
	"github.com/oleworks/com-runtime/typedesc"
)

var (
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
	stateSelectMethod modelState = iota
	stateInputArgs
	stateShowResult
)

type interactiveModel struct {
	inst     *object.Instance
	ref      *object.Ref
	methods  []typedesc.Method
	inputs   []textinput.Model
	result   string
	selected int
	focusIdx int
	state    modelState
}

func newInteractiveModel() *interactiveModel {
	inst := newDemo()
	ref, _ := inst.Query(iidCalculator)

	var methods []typedesc.Method
	for _, level := range calculatorInterface.Chain() {
		methods = append(methods, level.Methods...)
	}
	return &interactiveModel{
		inst:    inst,
		ref:     ref,
		methods: methods,
		state:   stateSelectMethod,
	}
}

type callResultMsg struct {
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state != stateInputArgs || msg.String() == "ctrl+c" {
				if m.ref != nil {
					m.ref.Release()
				}
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectMethod && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectMethod && m.selected < len(m.methods)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectMethod:
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callSlot
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.callSlot

			case stateShowResult:
				m.state = stateSelectMethod
				m.result = ""
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectMethod
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectMethod
				m.result = ""
			}
		}

	case callResultMsg:
		m.result = msg.result
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

// prepareInputs builds one text field per input parameter. Outputs get
// cells at call time, never fields.
func (m *interactiveModel) prepareInputs() {
	f := m.methods[m.selected]
	m.inputs = nil
	for _, p := range f.Params {
		if p.Flags.Out() {
			continue
		}
		ti := textinput.New()
		ti.Placeholder = p.Type
		ti.Prompt = p.Name + ": "
		ti.Width = 40
		if len(m.inputs) == 0 {
			ti.Focus()
		}
		m.inputs = append(m.inputs, ti)
	}
	m.focusIdx = 0
}

func (m *interactiveModel) callSlot() tea.Msg {
	f := m.methods[m.selected]

	var raw []string
	for _, input := range m.inputs {
		raw = append(raw, input.Value())
	}
	args, outs := packArgs(f, strings.Join(raw, ","))

	hr := m.ref.CallNamed(f.Name, args...)

	var b strings.Builder
	b.WriteString("HRESULT: " + hr.String())
	if hr.Failed() {
		if rec := comerr.LastRecord(); rec != nil {
			b.WriteString("\n" + errorStyle.Render(rec.Error()))
		}
		return callResultMsg{result: b.String()}
	}
	i := 0
	for _, p := range f.Params {
		if !p.Flags.Out() {
			continue
		}
		if i < len(outs) && outs[i].IsSet() {
			b.WriteString(fmt.Sprintf("\n%s = %v", p.Name, outs[i].Get()))
		}
		i++
	}
	return callResultMsg{result: b.String()}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(headStyle.Render("comhost"))
	b.WriteString(" ")
	b.WriteString(calculatorInterface.Name)
	b.WriteString(fmt.Sprintf("  refs=%d", m.inst.Refs()))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectMethod:
		b.WriteString("Select a method to call:\n\n")
		for i, f := range m.methods {
			cursor := "  "
			if i == m.selected {
				cursor = "> "
				b.WriteString(selectedStyle.Render(cursor + formatMethod(f)))
			} else {
				b.WriteString(cursor + formatMethod(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		f := m.methods[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", slotStyle.Render(f.Name)))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		f := m.methods[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", slotStyle.Render(f.Name)))
		b.WriteString(resultStyle.Render(m.result))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func formatMethod(f typedesc.Method) string {
	var params []string
	for _, p := range f.Params {
		dir := ""
		if p.Flags.Out() {
			dir = "out "
		}
		params = append(params, p.Name+": "+sigStyle.Render(dir+p.Type))
	}
	return slotStyle.Render(f.Name) + "(" + strings.Join(params, ", ") + ")"
}

func runInteractive() error {
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
