package tui

import tea "github.com/charmbracelet/bubbletea"

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case TickMsg:
		return m, tickCmd()

	case MessageEventMsg:
		switch msg.Kind {
		case "provider_selected":
			m.CurrentProvider = msg.Provider
			m.Attempts = append(m.Attempts, AttemptRecord{Provider: msg.Provider})
		case "channel_established":
			// no attempt-list change; channel reuse/creation is not shown
			// in the dashboard.
		case "order_error":
			if n := len(m.Attempts); n > 0 {
				m.Attempts[n-1].Outcome = "error"
			}
		}

	case ProgressEventMsg:
		switch msg.Kind {
		case "job_size":
			m.JobSize = msg.Bytes
		case "progress_bytes":
			m.ReceivedBytes = msg.Bytes
		case "completed":
			if n := len(m.Attempts); n > 0 {
				m.Attempts[n-1].Outcome = "ok"
			}
			m.Done = true
			return m, tea.Quit
		case "unavailable":
			if n := len(m.Attempts); n > 0 {
				m.Attempts[n-1].Outcome = "unavailable"
			}
		case "order_error":
			if n := len(m.Attempts); n > 0 {
				m.Attempts[n-1].Outcome = "error"
			}
			m.Err = "order failed"
			m.Done = true
			return m, tea.Quit
		}

	case ConnErrMsg:
		m.ConnErr = msg.Err.Error()

	case DoneMsg:
		m.Done = true
		return m, tea.Quit

	case QuitMsg:
		m.Quitting = true
		return m, tea.Quit
	}

	return m, nil
}
