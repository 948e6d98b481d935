package subtitle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mgpai22/kara/internal/caption"
	"github.com/mgpai22/kara/internal/transcript"
)

// ErrNoWordTiming is returned when karaoke cues are requested for a
// transcript without word timing.
var ErrNoWordTiming = errors.New("transcript has no word timing")

// KaraokeGenerator emits one cue per word, spanning the word's interval and
// showing the same window the caption engine shows at that moment.
type KaraokeGenerator struct {
	WindowSize int
}

func NewKaraokeGenerator(windowSize int) (*KaraokeGenerator, error) {
	if windowSize < 1 {
		return nil, fmt.Errorf("%w, got %d", caption.ErrInvalidWindowSize, windowSize)
	}
	return &KaraokeGenerator{WindowSize: windowSize}, nil
}

func (g *KaraokeGenerator) Generate(t *transcript.Transcript) (*Subtitle, error) {
	if !t.HasWords() {
		return nil, ErrNoWordTiming
	}

	sub := &Subtitle{Entries: []Entry{}, Language: t.Language, Format: string(FormatKaraoke)}
	for s, seg := range t.Segments {
		for i, w := range seg.Words {
			// subtitle players never display a cue with no duration; a
			// zero-length word still shows up in its neighbours' windows
			if w.StartTime < 0 || w.EndTime <= w.StartTime {
				continue
			}

			window := caption.BuildWindow(t, caption.WordRef{Segment: s, Word: i}, g.WindowSize)
			words := make([]string, len(window))
			for j, ww := range window {
				words[j] = strings.TrimSpace(ww.Text)
			}

			sub.Entries = append(sub.Entries, Entry{
				Index:     len(sub.Entries) + 1,
				StartTime: w.StartTime,
				EndTime:   w.EndTime,
				Text:      strings.Join(words, " "),
				Karaoke: &KaraokeLine{
					Words:     words,
					Highlight: caption.HighlightIndex(window, w),
				},
			})
		}
	}
	return sub, nil
}
