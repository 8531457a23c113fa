package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/routine/pkg/domain"
	"github.com/muesli/termenv"
)

// TextHandler implements the human-readable interface.
// By default it only prints ticks where something happened.
type TextHandler struct {
	Writer  io.Writer
	Verbose bool

	out       *termenv.Output
	lastDepth int
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithVerbose prints every tick, including quiet ones.
func WithVerbose(verbose bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.Verbose = verbose
	}
}

// NewTextHandler creates a handler writing to w (default: stdout).
// Colors are used only when w is a terminal.
func NewTextHandler(w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{Writer: w}
	for _, opt := range opts {
		opt(h)
	}
	h.out = termenv.NewOutput(w)
	return h
}

func (h *TextHandler) Report(ctx context.Context, rep *domain.TickReport) error {
	var parts []string
	if len(rep.Ran) > 0 {
		parts = append(parts, h.paint("run "+strings.Join(rep.Ran, ","), "2"))
	}
	if len(rep.Ended) > 0 {
		parts = append(parts, h.paint("end "+strings.Join(rep.Ended, ","), "4"))
	}
	switch {
	case rep.PauseDepth > h.lastDepth:
		parts = append(parts, h.paint(fmt.Sprintf("default paused (depth %d)", rep.PauseDepth), "3"))
	case rep.PauseDepth < h.lastDepth && rep.PauseDepth == 0:
		parts = append(parts, h.paint("default resumed", "3"))
	case rep.PauseDepth < h.lastDepth:
		parts = append(parts, h.paint(fmt.Sprintf("default still paused (depth %d)", rep.PauseDepth), "3"))
	}
	h.lastDepth = rep.PauseDepth
	for _, f := range rep.Failed {
		parts = append(parts, h.paint("failed "+f, "1"))
	}

	if len(parts) == 0 && !h.Verbose {
		return nil
	}
	if len(parts) == 0 {
		parts = append(parts, "-")
	}
	_, err := fmt.Fprintf(h.Writer, "%8.3fs  tick %-5d %s\n", rep.Elapsed.Seconds(), rep.Tick, strings.Join(parts, "  "))
	return err
}

func (h *TextHandler) Finish(ctx context.Context, sum Summary) error {
	color := "2"
	if sum.Status == domain.StatusInterrupted {
		color = "1"
	}
	msg := fmt.Sprintf("%s after %d ticks (%.3fs)", sum.Status, sum.Ticks, sum.Elapsed.Seconds())
	_, err := fmt.Fprintln(h.Writer, h.out.String(msg).Bold().Foreground(h.out.Color(color)))
	return err
}

func (h *TextHandler) paint(s, color string) string {
	return h.out.String(s).Foreground(h.out.Color(color)).String()
}
