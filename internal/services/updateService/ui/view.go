package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

func (m UIModel) View() string {
	status := statusStyle.Render(m.status)
	if m.isError {
		status = errorStyle.Render(m.status)
	}

	spin := m.spin.View()
	if m.done {
		spin = "*"
	}

	return fmt.Sprintf("%s\n\n[%s] Application Running... Status: %s\n\n%s\n",
		titleStyle.Render(fmt.Sprintf("upkeep v%s", m.appVersion)),
		spin,
		status,
		helpStyle.Render("Press q to quit."),
	)
}
