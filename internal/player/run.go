package player

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mgpai22/kara/internal/caption"
	"github.com/mgpai22/kara/internal/logging"
)

const DefaultInterval = 50 * time.Millisecond

type Options struct {
	// tick period; defaults to DefaultInterval
	Interval time.Duration
	// playback stops once the clock passes End; zero runs until ctx ends
	End    time.Duration
	Logger *logging.Logger
}

// Run ticks session from clock and presents every frame that differs from
// the previous one. It returns nil when the clock passes opts.End and the
// context error when ctx ends first.
func Run(ctx context.Context, clock Clock, session *caption.Session, sink Sink, opts Options) error {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		last    string
		started bool
		frames  int
	)
	for {
		pos := clock.Position()
		if opts.End > 0 && pos > opts.End {
			log.Debugw("playback finished", "position", pos, "frames", frames)
			return nil
		}

		frame := session.Tick(pos)
		if key := FrameKey(frame); !started || key != last {
			if err := sink.Present(frame); err != nil {
				return fmt.Errorf("failed to present frame: %w", err)
			}
			last, started = key, true
			frames++
			log.Debugw("frame", "position", pos, "segment", frame.Segment, "highlight", frame.Highlight)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// FrameKey identifies what a frame shows. Frames with equal keys look the
// same; the position alone never changes the key.
func FrameKey(f caption.Frame) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d|%d|%d|%d|%s|%s", f.Segment, f.Word.Segment, f.Word.Word, f.Highlight, f.SegmentText, f.Style.Name)
	for _, w := range f.Window {
		sb.WriteString("|")
		sb.WriteString(w.Text)
	}
	return sb.String()
}
