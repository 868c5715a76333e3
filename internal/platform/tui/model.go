package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/akshara-arcade/akshara/internal/manager"
)

var (
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Model is the Bubble Tea model driving the platform.
type Model struct {
	platform *Platform
	mgr      *manager.Manager
	keys     keyMap
	help     help.Model
	quitting bool
}

// NewModel creates the top-level model.
func NewModel(p *Platform, mgr *manager.Manager) Model {
	return Model{
		platform: p,
		mgr:      mgr,
		keys:     defaultKeyMap(),
		help:     help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.platform.Resize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			if m.platform.Paused() {
				m.mgr.Resume()
			} else {
				m.mgr.Pause()
			}
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

		if m.platform.Paused() {
			return m, nil
		}
		if scene := m.platform.CurrentScene(); scene != nil {
			scene.HandleKey(msg.String())
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width, height := m.platform.Size()

	body := "no active scene"
	if scene := m.platform.CurrentScene(); scene != nil {
		body = scene.View(width, height)
	}
	if m.platform.Paused() {
		body += "\n\n" + pausedStyle.Render("PAUSED")
	}

	if m.platform.store != nil {
		ui := m.platform.store.GetState().UI
		if ui.ActiveNotification != nil {
			body += "\n" + noteStyle.Render(ui.ActiveNotification.Message)
		}
		if modal := ui.ActiveModal; modal != nil {
			body += "\n" + errStyle.Render(modal.Title+": "+modal.Body)
		}
	}

	return body + "\n\n" + m.help.View(m.keys)
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(p *Platform, mgr *manager.Manager) error {
	program := tea.NewProgram(NewModel(p, mgr), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
