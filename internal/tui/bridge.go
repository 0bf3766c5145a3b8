package tui

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mirrorproxy/flexo/internal/web"
)

// Bridge connects a running serve instance's SSE endpoint for one order to
// a bubbletea program.
type Bridge struct {
	send   func(tea.Msg)
	client *http.Client
}

// NewBridge creates a bridge that will deliver events to program.
func NewBridge(program *tea.Program) *Bridge {
	return &Bridge{send: program.Send, client: http.DefaultClient}
}

// NewBridgeWithSender creates a bridge that delivers events to send instead
// of a bubbletea program, for callers that render the stream without a
// full-screen UI (see flexo tail's non-terminal fallback).
func NewBridgeWithSender(send func(tea.Msg)) *Bridge {
	return &Bridge{send: send, client: http.DefaultClient}
}

// Run connects to baseURL's /events/<order> endpoint and streams events
// into the program until ctx is cancelled or the connection drops. It
// blocks; call it from its own goroutine.
func (b *Bridge) Run(ctx context.Context, baseURL, order string) {
	url := strings.TrimRight(baseURL, "/") + "/events/" + order

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		b.send(ConnErrMsg{Err: err})
		return
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := b.client.Do(req)
	if err != nil {
		b.send(ConnErrMsg{Err: err})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b.send(ConnErrMsg{Err: fmt.Errorf("tui: unexpected status %d from %s", resp.StatusCode, url)})
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var eventType string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			eventType = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			b.handleData(eventType, strings.TrimPrefix(line, "data: "))
		case line == "":
			eventType = ""
		}
	}
	if err := scanner.Err(); err != nil {
		b.send(ConnErrMsg{Err: err})
	}
}

func (b *Bridge) handleData(eventType, data string) {
	var evt web.Event
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return
	}

	switch eventType {
	case "message":
		if evt.Message == nil {
			return
		}
		b.send(MessageEventMsg{Kind: evt.Message.Kind, Provider: evt.Message.Provider})
	case "progress":
		if evt.Progress == nil {
			return
		}
		b.send(ProgressEventMsg{Kind: evt.Progress.Kind, Bytes: evt.Progress.Bytes})
	}
}

// SendQuit sends a QuitMsg to the program.
func (b *Bridge) SendQuit() {
	b.send(QuitMsg{})
}
