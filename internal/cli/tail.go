package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mirrorproxy/flexo/internal/tui"
)

// NewTailCmd creates the tail command.
// Usage: flexo tail <order>
func NewTailCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "tail <order>",
		Short: "Attach a live dashboard to an in-flight order on a running serve instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order := args[0]

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if term.IsTerminal(int(os.Stdout.Fd())) {
				return runDashboard(ctx, addr, order)
			}
			return runPlain(ctx, addr, order)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "http://localhost:7878", "address of the running flexo serve instance")
	return cmd
}

// runDashboard drives the full-screen bubbletea dashboard.
func runDashboard(ctx context.Context, addr, order string) error {
	model := tui.NewModel(order)
	program := tea.NewProgram(model)
	bridge := tui.NewBridge(program)

	go bridge.Run(ctx, addr, order)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tail: %w", err)
	}
	return nil
}

// runPlain streams the same events as plain lines, for redirected/piped
// output where a full-screen UI would only produce escape-code noise.
func runPlain(ctx context.Context, addr, order string) error {
	done := make(chan struct{})
	var closeOnce func()

	send := func(msg tea.Msg) {
		switch m := msg.(type) {
		case tui.MessageEventMsg:
			fmt.Printf("[%s] %s provider=%s\n", order, m.Kind, m.Provider)
		case tui.ProgressEventMsg:
			fmt.Printf("[%s] %s bytes=%d\n", order, m.Kind, m.Bytes)
			if m.Kind == "completed" || m.Kind == "order_error" {
				closeOnce()
			}
		case tui.ConnErrMsg:
			fmt.Fprintf(os.Stderr, "[%s] connection error: %v\n", order, m.Err)
			closeOnce()
		case tui.DoneMsg, tui.QuitMsg:
			closeOnce()
		}
	}

	var closed bool
	closeOnce = func() {
		if !closed {
			closed = true
			close(done)
		}
	}

	bridge := tui.NewBridgeWithSender(send)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go bridge.Run(runCtx, addr, order)

	<-done
	return nil
}
