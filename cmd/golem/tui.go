package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tanglewood/golem/engine"
)

var (
	userStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	botStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// chatModel is the bubbletea model for the interactive session: a
// scrollback viewport plus a single-line text input.
type chatModel struct {
	bot       *engine.Bot
	sessionID string

	viewport viewport.Model
	input    textinput.Model
	history  []string
	quitting bool
	err      error
}

func newChatModel(bot *engine.Bot, sessionID string) chatModel {
	ti := textinput.New()
	ti.Placeholder = "say something..."
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60

	vp := viewport.New(78, 18)
	vp.SetContent(helpStyle.Render("Type a message and press Enter. Type 'exit' or 'quit' to leave."))

	return chatModel{bot: bot, sessionID: sessionID, viewport: vp, input: ti}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if text == "" {
		return m, nil
	}
	if text == "exit" || text == "quit" {
		m.quitting = true
		return m, tea.Quit
	}

	m.history = append(m.history, userStyle.Render("you> ")+text)
	reply, err := m.bot.Respond(context.Background(), m.sessionID, text)
	if err != nil {
		m.err = err
		m.history = append(m.history, helpStyle.Render("error: "+err.Error()))
	} else if reply == "" {
		m.history = append(m.history, botStyle.Render("golem> ")+helpStyle.Render("(no response)"))
	} else {
		m.history = append(m.history, botStyle.Render("golem> ")+reply)
	}

	m.viewport.SetContent(strings.Join(m.history, "\n"))
	m.viewport.GotoBottom()
	return m, nil
}

func (m chatModel) View() string {
	if m.quitting {
		return "Goodbye.\n"
	}
	return fmt.Sprintf("%s\n%s\n", m.viewport.View(), m.input.View())
}

// runChat drives the interactive bubbletea session until the user quits.
func runChat(bot *engine.Bot, sessionID string) error {
	p := tea.NewProgram(newChatModel(bot, sessionID))
	_, err := p.Run()
	return err
}
