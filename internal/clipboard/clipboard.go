// Package clipboard copies text to the system clipboard, falling back to an
// OSC 52 escape sequence when no clipboard tool is available.
package clipboard

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// Writer puts text on a clipboard.
type Writer interface {
	Write(ctx context.Context, text string) error
}

// System writes through the platform clipboard tool (pbcopy, xclip,
// xsel, wl-copy, clip). When none works it emits OSC 52 on Terminal.
type System struct {
	Terminal io.Writer
	// Tmux wraps the OSC 52 sequence for tmux passthrough.
	Tmux bool

	writeAll    func(string) error
	unsupported bool
}

func NewSystem() *System {
	return &System{
		Terminal:    os.Stderr,
		Tmux:        os.Getenv("TMUX") != "",
		writeAll:    clipboard.WriteAll,
		unsupported: clipboard.Unsupported,
	}
}

func (s *System) Write(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.unsupported && s.writeAll != nil {
		err := s.writeAll(text)
		if err == nil {
			return nil
		}
		if s.Terminal == nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
	}
	if s.Terminal == nil {
		return fmt.Errorf("copy to clipboard: no clipboard available")
	}
	seq := osc52.New(text)
	if s.Tmux {
		seq = seq.Tmux()
	}
	if _, err := seq.WriteTo(s.Terminal); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

// Func adapts a function to Writer.
type Func func(ctx context.Context, text string) error

func (f Func) Write(ctx context.Context, text string) error { return f(ctx, text) }
