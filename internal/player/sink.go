package player

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/mgpai22/kara/internal/caption"
)

// Sink presents frames. Present is called only when the frame changed.
type Sink interface {
	Present(frame caption.Frame) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(frame caption.Frame) error

func (f SinkFunc) Present(frame caption.Frame) error {
	return f(frame)
}

// TerminalSink prints captions to a terminal. On a TTY the caption line is
// redrawn in place and the active word is drawn in the style's highlight
// color; otherwise one line is printed per frame with the active word in
// brackets.
type TerminalSink struct {
	w     io.Writer
	color bool
}

func NewTerminalSink(f *os.File) *TerminalSink {
	tty := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	return &TerminalSink{w: f, color: tty}
}

// plain output to any writer
func NewPlainSink(w io.Writer) *TerminalSink {
	return &TerminalSink{w: w}
}

func (s *TerminalSink) Present(frame caption.Frame) error {
	line := s.render(frame)
	var err error
	if s.color {
		_, err = fmt.Fprintf(s.w, "\r\033[K%s", line)
	} else {
		_, err = fmt.Fprintln(s.w, line)
	}
	return err
}

func (s *TerminalSink) render(frame caption.Frame) string {
	if len(frame.Window) == 0 {
		return frame.SegmentText
	}

	parts := make([]string, len(frame.Window))
	for i, w := range frame.Window {
		text := strings.TrimSpace(w.Text)
		if i == frame.Highlight {
			if s.color {
				text = ansiColor(frame.Style.HighlightColor) + text + "\033[0m"
			} else {
				text = "[" + text + "]"
			}
		}
		parts[i] = text
	}
	return strings.Join(parts, " ")
}

// bold 24-bit foreground escape for #RRGGBB; bold only when unparseable
func ansiColor(hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) < 6 {
		return "\033[1m"
	}
	v, err := strconv.ParseUint(hex[:6], 16, 32)
	if err != nil {
		return "\033[1m"
	}
	return fmt.Sprintf("\033[1;38;2;%d;%d;%dm", (v>>16)&0xFF, (v>>8)&0xFF, v&0xFF)
}
