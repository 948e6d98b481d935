package player

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mgpai22/kara/internal/caption"
	"github.com/mgpai22/kara/internal/style"
	"github.com/mgpai22/kara/internal/transcript"
)

// advances by step on every read
type stepClock struct {
	pos  time.Duration
	step time.Duration
}

func (c *stepClock) Position() time.Duration {
	p := c.pos
	c.pos += c.step
	return p
}

func testSession(t *testing.T) *caption.Session {
	t.Helper()
	st, err := style.NewRegistry().Get(style.DefaultPreset)
	if err != nil {
		t.Fatal(err)
	}
	s, err := caption.NewSession(2, st)
	if err != nil {
		t.Fatal(err)
	}
	tr := transcript.New("en", []transcript.Segment{{
		StartTime: 0,
		EndTime:   2 * time.Second,
		Words: []transcript.Word{
			{Text: "a1", StartTime: 0, EndTime: time.Second},
			{Text: "a2", StartTime: time.Second, EndTime: 2 * time.Second},
		},
	}})
	if err := s.Load(tr); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRunPresentsOnlyChanges(t *testing.T) {
	var frames []caption.Frame
	sink := SinkFunc(func(f caption.Frame) error {
		frames = append(frames, f)
		return nil
	})

	clock := &stepClock{step: 250 * time.Millisecond}
	err := Run(context.Background(), clock, testSession(t), sink, Options{
		Interval: time.Millisecond,
		End:      3 * time.Second,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// a1 active, a2 active, then nothing
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	if frames[0].Highlight != 0 || frames[1].Highlight != 1 {
		t.Errorf("unexpected highlights %d, %d", frames[0].Highlight, frames[1].Highlight)
	}
	if frames[2].HasSegment() || len(frames[2].Window) != 0 {
		t.Errorf("expected empty final frame, got %+v", frames[2])
	}
	if clock.pos <= 3*time.Second {
		t.Errorf("run stopped early at %v", clock.pos)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := SinkFunc(func(caption.Frame) error {
		cancel()
		return nil
	})
	err := Run(ctx, &stepClock{}, testSession(t), sink, Options{Interval: time.Hour})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunSinkError(t *testing.T) {
	sink := SinkFunc(func(caption.Frame) error {
		return errors.New("display gone")
	})
	err := Run(context.Background(), &stepClock{}, testSession(t), sink, Options{})
	if err == nil || !strings.Contains(err.Error(), "display gone") {
		t.Errorf("expected sink error, got %v", err)
	}
}

func TestFrameKeyIgnoresPosition(t *testing.T) {
	a := windowFrame(0, "x", "y")
	b := windowFrame(0, "x", "y")
	a.Position, b.Position = time.Second, 2*time.Second
	if FrameKey(a) != FrameKey(b) {
		t.Error("position alone should not change the key")
	}
	b.Highlight = 1
	if FrameKey(a) == FrameKey(b) {
		t.Error("highlight change should change the key")
	}
}
