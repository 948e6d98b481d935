package caption

import (
	"errors"
	"fmt"
	"time"

	"github.com/mgpai22/kara/internal/style"
	"github.com/mgpai22/kara/internal/transcript"
)

// ErrInvalidWindowSize is returned for window sizes below one.
var ErrInvalidWindowSize = errors.New("window size must be at least 1")

const DefaultWindowSize = 6

// Frame is what a render target receives on each tick.
type Frame struct {
	Result
	// index of the active word in Window, -1 for none
	Highlight int
	// text of the active segment; shown as-is when there is no word data
	SegmentText string
	Style       style.Style
}

// newFrame builds the render target's view of res against t.
func newFrame(t *transcript.Transcript, res Result, st style.Style) Frame {
	f := Frame{Result: res, Highlight: -1, Style: st}
	if res.HasSegment() && t != nil && res.Segment < len(t.Segments) {
		f.SegmentText = t.Segments[res.Segment].Text
	}
	_, f.Highlight = f.Active(t)
	return f
}

// Active returns the active word and its index inside the window, or -1.
func (f Frame) Active(t *transcript.Transcript) (transcript.Word, int) {
	if !f.HasWord() {
		return transcript.Word{}, -1
	}
	w, ok := t.Word(f.Word.Segment, f.Word.Word)
	if !ok {
		return transcript.Word{}, -1
	}
	return w, HighlightIndex(f.Window, w)
}

// Engine drives one transcript from a playback clock.
//
// An Engine is not safe for concurrent use; callers serialize ticks and
// edits (see Session).
type Engine struct {
	transcript *transcript.Transcript
	resolver   *Resolver
	windowSize int
}

func NewEngine(t *transcript.Transcript, windowSize int) (*Engine, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is required")
	}
	if windowSize < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidWindowSize, windowSize)
	}
	return &Engine{
		transcript: t,
		resolver:   NewResolver(t),
		windowSize: windowSize,
	}, nil
}

// Tick resolves pos and builds the word window for it.
func (e *Engine) Tick(pos time.Duration) Result {
	res := e.resolver.Resolve(pos)
	res.Window = BuildWindow(e.transcript, res.Word, e.windowSize)
	return res
}

// EditWord corrects one word. Timing is unchanged, so the resolver index
// stays valid.
func (e *Engine) EditWord(segment, word int, text string) error {
	return e.transcript.EditWord(segment, word, text)
}

func (e *Engine) SetWindowSize(n int) error {
	if n < 1 {
		return fmt.Errorf("%w, got %d", ErrInvalidWindowSize, n)
	}
	e.windowSize = n
	return nil
}

func (e *Engine) WindowSize() int {
	return e.windowSize
}

func (e *Engine) Transcript() *transcript.Transcript {
	return e.transcript
}
