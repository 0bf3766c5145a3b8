// Package tui is the Bubble Tea dashboard for a single in-flight order,
// attached via `flexo tail <order>` to a running `flexo serve` instance's
// SSE endpoint. Explicitly out of the core engine's scope (see spec.md §1).
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// AttemptRecord is one entry in the attempt history shown in the
// dashboard: a provider the Attempt Loop selected and, once known, how
// that attempt ended.
type AttemptRecord struct {
	Provider string
	Outcome  string // "" while in flight, then "ok" or an error summary
}

// Model is the bubbletea model for the order dashboard.
type Model struct {
	Order  string
	Styles Styles

	CurrentProvider string
	Attempts        []AttemptRecord

	JobSize       uint64
	ReceivedBytes uint64

	StartTime time.Time
	Done      bool
	Err       string

	ConnErr string

	Width  int
	Height int

	Quitting bool
}

// NewModel creates a dashboard model for the given order path.
func NewModel(order string) *Model {
	return &Model{
		Order:     order,
		Styles:    DefaultStyles(),
		StartTime: time.Now(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

// TickMsg is sent every second to refresh the elapsed timer.
type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// MessageEventMsg carries one value off the order's message stream,
// relayed from internal/web's SSE endpoint.
type MessageEventMsg struct {
	Kind     string
	Provider string
}

// ProgressEventMsg carries one value off the order's progress stream.
type ProgressEventMsg struct {
	Kind  string
	Bytes uint64
}

// ConnErrMsg reports a failure to connect to, or a dropped, SSE stream.
type ConnErrMsg struct {
	Err error
}

// DoneMsg signals the order finished (successfully or not); the program
// should exit after rendering the final frame.
type DoneMsg struct{}

// QuitMsg signals the user requested quit (q or Ctrl+C).
type QuitMsg struct{}
