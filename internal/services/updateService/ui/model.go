package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	updateservice "github.com/redjax/upkeep/internal/services/updateService"
)

// UIModel renders the running application's status line while the update
// worker reports progress. It is the sole consumer of the event channel.
type UIModel struct {
	events <-chan updateservice.UpdateEvent

	appVersion string
	status     string
	isError    bool
	done       bool

	spin spinner.Model
}

func NewUIModel(events <-chan updateservice.UpdateEvent, appVersion string) UIModel {
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return UIModel{
		events:     events,
		appVersion: appVersion,
		status:     "Checking for updates in background...",
		spin:       sp,
	}
}

func (m UIModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForEvent(m.events))
}

// waitForEvent blocks in a command goroutine so the render loop never does.
func waitForEvent(ch <-chan updateservice.UpdateEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return workerDoneMsg{}
		}
		return updateEventMsg(ev)
	}
}
