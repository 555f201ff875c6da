package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/opsdeck/opsdeck/internal/api"
)

// Key bindings as constants for consistency.
const (
	KeyQuit        = "q"
	KeyQuitAlt     = "ctrl+c"
	KeyRefresh     = "R"
	KeyNextTab     = "tab"
	KeyTabOverview = "1"
	KeyTabServices = "2"
	KeyTabSystem   = "3"
	KeySelectPrev  = "up"
	KeySelectPrevK = "k"
	KeySelectNext  = "down"
	KeySelectNextJ = "j"
	KeyStart       = "s"
	KeyStop        = "x"
	KeyRestart     = "r"
	KeyToggleHelp  = "?"
	KeyCloseHelp   = "esc"
)

// HandleKeyMsg processes keyboard input and returns updated model state and command.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	// Help toggle takes priority
	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key == KeyCloseHelp {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		return true, tea.Quit

	case KeyRefresh:
		return true, m.fetchServicesCmd()

	case KeyNextTab:
		m.tab = Tab((int(m.tab) + 1) % 3)
		return true, nil

	case KeyTabOverview:
		m.tab = TabOverview
		return true, nil

	case KeyTabServices:
		m.tab = TabServices
		return true, nil

	case KeyTabSystem:
		m.tab = TabSystem
		return true, nil
	}

	// Selection and actions only apply on the services tab.
	if m.tab != TabServices {
		return false, nil
	}

	switch key {
	case KeySelectPrev, KeySelectPrevK:
		if m.selected > 0 {
			m.selected--
		}
		return true, nil

	case KeySelectNext, KeySelectNextJ:
		if m.selected < len(m.services)-1 {
			m.selected++
		}
		return true, nil

	case KeyStart:
		return m.invokeSelected(api.ActionStart)

	case KeyStop:
		return m.invokeSelected(api.ActionStop)

	case KeyRestart:
		return m.invokeSelected(api.ActionRestart)
	}

	return false, nil
}

// invokeSelected dispatches an action against the highlighted unit.
func (m *Model) invokeSelected(action string) (bool, tea.Cmd) {
	service, ok := m.selectedService()
	if !ok {
		return true, nil
	}
	return true, m.invokeCmd(service.Name, action)
}
