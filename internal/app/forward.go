package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Forward returns an engine change callback that wakes program p. Calls
// never block, since the controller may invoke the callback from inside
// Update; bursts collapse into a single message.
func Forward(ctx context.Context, p *tea.Program) func() {
	pending := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-pending:
				p.Send(engineChangedMsg{})
			}
		}
	}()
	return func() {
		select {
		case pending <- struct{}{}:
		default:
		}
	}
}
