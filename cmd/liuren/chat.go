package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"liuren/internal/pipeline"
)

// chatCmd starts the interactive chat interface.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	statusStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type replyMsg struct {
	resp pipeline.Response
}

type chatModel struct {
	coordinator *pipeline.Coordinator
	sessionID   string

	input    textinput.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer

	messages []string
	waiting  bool
	ready    bool
}

func newChatModel(coordinator *pipeline.Coordinator) chatModel {
	input := textinput.New()
	input.Placeholder = "说说想占卜的事，比如：算事业，数字3和5，男"
	input.Focus()
	input.CharLimit = 500

	return chatModel{
		coordinator: coordinator,
		sessionID:   uuid.NewString(),
		input:       input,
		messages: []string{
			assistantStyle.Render("小六壬占卜助手。请提供两个1到6之间的数字、您的性别，以及想问的事情。"),
		},
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		inputHeight := 3
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-inputHeight)
			renderer, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(msg.Width-2),
			)
			if err == nil {
				m.renderer = renderer
			}
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - inputHeight
		}
		m.input.Width = msg.Width - 4
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.waiting {
				return m, nil
			}
			if text == "/quit" || text == "/exit" {
				return m, tea.Quit
			}
			if text == "/new" {
				m.coordinator.ResetSession(m.sessionID)
				m.sessionID = uuid.NewString()
				m.messages = append(m.messages, statusStyle.Render("— 新的一卦 —"))
				m.input.Reset()
				m.refresh()
				return m, nil
			}

			m.messages = append(m.messages, userStyle.Render("你：")+text)
			m.input.Reset()
			m.waiting = true
			m.refresh()
			return m, m.send(text)
		}

	case replyMsg:
		m.waiting = false
		m.messages = append(m.messages, m.renderReply(msg.resp))
		m.refresh()
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m chatModel) send(text string) tea.Cmd {
	coordinator := m.coordinator
	sessionID := m.sessionID
	return func() tea.Msg {
		resp := coordinator.Handle(context.Background(), sessionID, userID, text)
		return replyMsg{resp: resp}
	}
}

func (m chatModel) renderReply(resp pipeline.Response) string {
	reply := resp.Reply
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(reply); err == nil {
			reply = strings.TrimRight(rendered, "\n")
		}
	}

	switch resp.Status {
	case pipeline.StatusSuccess:
		return assistantStyle.Render("卦：") + reply
	case pipeline.StatusClarificationNeeded:
		return assistantStyle.Render("问：") + reply
	case pipeline.StatusToolError, pipeline.StatusError:
		return errorStyle.Render(reply)
	default:
		return reply
	}
}

func (m *chatModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.messages, "\n\n"))
	m.viewport.GotoBottom()
}

func (m chatModel) View() string {
	if !m.ready {
		return "loading..."
	}
	status := ""
	if m.waiting {
		status = statusStyle.Render(" 起卦中…")
	}
	return m.viewport.View() + "\n" + m.input.View() + status + "\n" +
		statusStyle.Render("enter 发送 · /new 重新起卦 · esc 退出")
}

func runChat() error {
	s, err := buildStack(context.Background())
	if err != nil {
		return err
	}
	defer s.Close()

	program := tea.NewProgram(newChatModel(s.coordinator), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat interface: %w", err)
	}
	return nil
}
