package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	updateservice "github.com/redjax/upkeep/internal/services/updateService"
)

func (m UIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}

	case updateEventMsg:
		ev := updateservice.UpdateEvent(msg)
		m.isError = false
		switch ev.Kind {
		case updateservice.EventMessage:
			m.status = ev.Text
		case updateservice.EventUpToDate:
			m.status = "System is up to date."
		case updateservice.EventSuccess:
			m.status = fmt.Sprintf("Update ready! Restart to use v%s", ev.Version)
		case updateservice.EventError:
			m.status = fmt.Sprintf("Update failed: %s", ev.Text)
			m.isError = true
		}
		// Keep draining until the worker closes the channel.
		return m, waitForEvent(m.events)

	case workerDoneMsg:
		// The attempt is over; keep rendering the final status so the user
		// can read it before quitting.
		m.done = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}
