package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.Quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderProvider())
	b.WriteString("\n")
	b.WriteString(m.renderProgress())
	b.WriteString("\n\n")
	b.WriteString(m.renderAttempts())

	if m.ConnErr != "" {
		b.WriteString("\n")
		b.WriteString(m.Styles.Error.Render("connection error: " + m.ConnErr))
		b.WriteString("\n")
	}
	if m.Err != "" {
		b.WriteString("\n")
		b.WriteString(m.Styles.Error.Render(m.Err))
		b.WriteString("\n")
	}
	if m.Done && m.Err == "" {
		b.WriteString("\n")
		b.WriteString(m.Styles.AttemptOK.Render(IconOK + " order complete"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

func (m *Model) renderHeader() string {
	elapsed := time.Since(m.StartTime).Round(time.Second)
	timer := fmt.Sprintf("[%s]", formatDuration(elapsed))
	return fmt.Sprintf("%s  %s",
		m.Styles.Title.Render(m.Order),
		m.Styles.Timer.Render(timer),
	)
}

func (m *Model) renderProvider() string {
	if m.CurrentProvider == "" {
		return m.Styles.ProviderLabel.Render("  provider: (selecting)")
	}
	return fmt.Sprintf("  %s %s",
		m.Styles.ProviderLabel.Render("provider:"),
		m.Styles.ProviderName.Render(m.CurrentProvider),
	)
}

func (m *Model) renderProgress() string {
	width := 30
	var filled int
	if m.JobSize > 0 {
		filled = int((m.ReceivedBytes * uint64(width)) / m.JobSize)
		if filled > width {
			filled = width
		}
	}

	bar := "[" +
		m.Styles.ProgressFilled.Render(strings.Repeat("█", filled)) +
		m.Styles.ProgressEmpty.Render(strings.Repeat("░", width-filled)) +
		"]"

	var sizeText string
	if m.JobSize > 0 {
		sizeText = fmt.Sprintf("%s / %s", humanize.Bytes(m.ReceivedBytes), humanize.Bytes(m.JobSize))
	} else {
		sizeText = humanize.Bytes(m.ReceivedBytes)
	}

	return fmt.Sprintf("  %s %s", bar, m.Styles.ProgressText.Render(sizeText))
}

func (m *Model) renderAttempts() string {
	if len(m.Attempts) == 0 {
		return "  No attempts yet"
	}

	var b strings.Builder
	b.WriteString("  Attempts:\n")
	for i, a := range m.Attempts {
		var rendered string
		switch a.Outcome {
		case "ok":
			rendered = m.Styles.AttemptOK.Render(IconOK)
		case "error":
			rendered = m.Styles.AttemptError.Render(IconFailed)
		default:
			rendered = m.Styles.AttemptOther.Render(IconActive)
		}
		fmt.Fprintf(&b, "    %d. %s %s\n", i+1, rendered, a.Provider)
	}
	return b.String()
}

func (m *Model) renderFooter() string {
	key := m.Styles.FooterKey.Render("q")
	return m.Styles.Footer.Render(fmt.Sprintf("  Press %s to quit", key))
}

func formatDuration(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	mn := d / time.Minute
	d -= mn * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, mn, s)
}
