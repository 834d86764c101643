// Package tui is the bubbletea front end: it owns the terminal, renders the
// transcript and input bar, and turns keypresses into chatcontroller.Controller
// calls. Every line of agent activity it shows — streaming deltas, tool
// start/end, sub-agent lifecycle, permission prompts — arrives as an
// eventbus.ChatEvent; this package has no privileged access to the agent
// loop's internals beyond what the bus already publishes.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/coreagent/gencore/internal/chatcontroller"
	"github.com/coreagent/gencore/internal/eventbus"
	"github.com/coreagent/gencore/internal/permission"
)

const (
	defaultWidth = 80
	inputHeight  = 3
)

type eventMsg struct{ ev eventbus.ChatEvent }

type turnResultMsg struct{ out chatcontroller.Output }

// permissionRequestMsg is sent into the bubbletea event loop by the confirm
// callback wired into the Controller's permission.Broker. The callback
// blocks on resp until Update answers it from a keypress.
type permissionRequestMsg struct {
	req  permission.Request
	resp chan<- permission.Outcome
}

type model struct {
	ctrl *chatcontroller.Controller

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	lines     []transcriptLine
	streaming strings.Builder

	busy               bool
	turnStreamedOutput bool
	pending            *permissionPrompt

	eventCh <-chan eventbus.ChatEvent

	width, height int
	ready         bool
}

func newModel(ctrl *chatcontroller.Controller, eventCh <-chan eventbus.ChatEvent) model {
	ta := textarea.New()
	ta.Placeholder = "type a message, /help for commands, >cmd to run a shell command"
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.SetHeight(inputHeight)
	ta.SetWidth(defaultWidth)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = toolStyle

	return model{
		ctrl:     ctrl,
		textarea: ta,
		spinner:  sp,
		eventCh:  eventCh,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, waitForEvent(m.eventCh))
}

func waitForEvent(ch <-chan eventbus.ChatEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg{ev: ev}
	}
}

func (m model) submit(line string) tea.Cmd {
	return func() tea.Msg {
		out := m.ctrl.HandleLine(context.Background(), line)
		return turnResultMsg{out: out}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		vpHeight := msg.Height - inputHeight - 2
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(msg.Width)
		m.refreshViewport()
		return m, nil

	case permissionRequestMsg:
		m.pending = &permissionPrompt{req: msg.req, resp: msg.resp}
		return m, nil

	case eventMsg:
		m.applyEvent(msg.ev)
		m.refreshViewport()
		return m, waitForEvent(m.eventCh)

	case turnResultMsg:
		m.busy = false
		m.streaming.Reset()
		switch msg.out.Kind {
		case chatcontroller.KindExit:
			return m, tea.Quit
		case chatcontroller.KindTurnCompleted:
			// The final summary is normally already streamed line-by-line
			// via StreamDelta/StreamEnd events; only append it directly if
			// this turn produced no streamed text at all (e.g. a
			// tool-only turn with a synthesized summary).
			if msg.out.Text != "" && !m.turnStreamedOutput {
				m.appendLine(transcriptLine{kind: lineAssistant, text: msg.out.Text})
			}
		case chatcontroller.KindTurnInterrupted:
			m.appendLine(transcriptLine{kind: lineNotice, text: msg.out.Text})
		case chatcontroller.KindTurnFailed:
			m.appendLine(transcriptLine{kind: lineError, text: msg.out.Text})
		case chatcontroller.KindCommandReply:
			m.appendLine(transcriptLine{kind: lineNotice, text: msg.out.Text})
		}
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		if handled, cmd := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey intercepts keys the default textarea/viewport update shouldn't
// see: permission answers, Ctrl+C cancellation, and Enter-to-submit. It
// reports whether it consumed the key.
func (m *model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if m.pending != nil {
		if m.pending.answer(msg.String()) {
			m.pending = nil
		}
		return true, nil
	}

	switch msg.String() {
	case "ctrl+c":
		if m.busy {
			m.ctrl.Cancel()
			return true, nil
		}
		return true, tea.Quit

	case "enter":
		line := m.textarea.Value()
		if strings.TrimSpace(line) == "" || m.busy {
			return true, nil
		}
		m.textarea.Reset()
		m.appendLine(transcriptLine{kind: lineUser, text: line})
		m.busy = true
		m.turnStreamedOutput = false
		m.refreshViewport()
		return true, m.submit(line)
	}

	return false, nil
}

// applyEvent folds one bus event into transcript/streaming state.
// StreamDelta accumulates into the in-progress assistant line rather than
// appending a line per chunk; StreamEnd flushes it.
func (m *model) applyEvent(ev eventbus.ChatEvent) {
	switch ev.Type {
	case eventbus.EventStreamStart:
		m.streaming.Reset()
	case eventbus.EventStreamDelta:
		m.streaming.WriteString(ev.Text)
	case eventbus.EventStreamEnd:
		if m.streaming.Len() > 0 {
			m.appendLine(transcriptLine{kind: lineAssistant, text: m.streaming.String()})
			m.streaming.Reset()
			m.turnStreamedOutput = true
		}
	default:
		if line, ok := eventToLine(ev); ok {
			m.appendLine(line)
		}
	}
}

func (m *model) appendLine(l transcriptLine) {
	m.lines = append(m.lines, l)
}

func (m *model) refreshViewport() {
	if !m.ready {
		return
	}
	content := joinLines(m.lines, m.width)
	if m.streaming.Len() > 0 {
		if content != "" {
			content += "\n"
		}
		content += assistantStyle.Render(m.streaming.String())
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

func (m model) View() string {
	if !m.ready {
		return "\n  starting up...\n"
	}

	if m.pending != nil {
		return m.viewport.View() + "\n" + separatorStyle.Render(strings.Repeat("─", m.width)) + "\n" + m.pending.render()
	}

	separator := separatorStyle.Render(strings.Repeat("─", m.width))

	var status string
	if m.busy {
		status = statusStyle.Render(m.spinner.View() + " working…  (ctrl+c to cancel)")
	} else {
		status = statusStyle.Render(fmt.Sprintf("model: %s", m.ctrl.Model))
	}

	return m.viewport.View() + "\n" + separator + "\n" +
		inputPromptStl.Render("❯ ") + m.textarea.View() + "\n" + status
}

// Run starts the interactive TUI against ctrl. It wires a permission confirm
// callback into ctrl.Broker that routes prompts through the bubbletea
// program itself, so a tool awaiting a permission decision blocks its
// background goroutine on a channel the keypress handler answers.
func Run(ctrl *chatcontroller.Controller) error {
	var program *tea.Program
	confirm := func(req permission.Request) permission.Outcome {
		resp := make(chan permission.Outcome, 1)
		if program == nil {
			return permission.OutcomeDeny
		}
		program.Send(permissionRequestMsg{req: req, resp: resp})
		return <-resp
	}
	ctrl.Broker = permission.NewBroker(confirm)

	eventCh, unsubscribe := ctrl.Bus.Subscribe()
	defer unsubscribe()

	m := newModel(ctrl, eventCh)
	program = tea.NewProgram(m, tea.WithAltScreen())

	_, err := program.Run()
	return err
}
