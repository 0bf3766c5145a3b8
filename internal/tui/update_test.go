package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateTracksProviderSelectionAndAttempts(t *testing.T) {
	m := NewModel("core/os/x86_64/core.db")

	next, _ := m.Update(MessageEventMsg{Kind: "provider_selected", Provider: "mirror-a"})
	m = next.(*Model)

	require.Len(t, m.Attempts, 1)
	assert.Equal(t, "mirror-a", m.CurrentProvider)
	assert.Equal(t, "mirror-a", m.Attempts[0].Provider)
	assert.Empty(t, m.Attempts[0].Outcome)
}

func TestUpdateMarksAttemptErrorOnOrderError(t *testing.T) {
	m := NewModel("x")
	next, _ := m.Update(MessageEventMsg{Kind: "provider_selected", Provider: "mirror-a"})
	m = next.(*Model)

	next, _ = m.Update(MessageEventMsg{Kind: "order_error"})
	m = next.(*Model)

	require.Len(t, m.Attempts, 1)
	assert.Equal(t, "error", m.Attempts[0].Outcome)
}

func TestUpdateTracksProgressBytes(t *testing.T) {
	m := NewModel("x")
	next, _ := m.Update(ProgressEventMsg{Kind: "job_size", Bytes: 1000})
	m = next.(*Model)
	assert.EqualValues(t, 1000, m.JobSize)

	next, _ = m.Update(ProgressEventMsg{Kind: "progress_bytes", Bytes: 250})
	m = next.(*Model)
	assert.EqualValues(t, 250, m.ReceivedBytes)
}

func TestUpdateCompletionMarksDoneAndQuits(t *testing.T) {
	m := NewModel("x")
	next, _ := m.Update(MessageEventMsg{Kind: "provider_selected", Provider: "mirror-a"})
	m = next.(*Model)

	next, cmd := m.Update(ProgressEventMsg{Kind: "completed"})
	m = next.(*Model)

	assert.True(t, m.Done)
	assert.Equal(t, "ok", m.Attempts[0].Outcome)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdateOrderErrorProgressMarksFailureAndQuits(t *testing.T) {
	m := NewModel("x")
	next, _ := m.Update(MessageEventMsg{Kind: "provider_selected", Provider: "mirror-a"})
	m = next.(*Model)

	next, cmd := m.Update(ProgressEventMsg{Kind: "order_error"})
	m = next.(*Model)

	assert.True(t, m.Done)
	assert.NotEmpty(t, m.Err)
	assert.Equal(t, "error", m.Attempts[0].Outcome)
	require.NotNil(t, cmd)
}

func TestUpdateQuitKeyStopsProgram(t *testing.T) {
	m := NewModel("x")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = next.(*Model)

	assert.True(t, m.Quitting)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
