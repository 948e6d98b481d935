package caption

import (
	"strings"

	"github.com/mgpai22/kara/internal/transcript"
)

// BuildWindow returns up to size words around the active word, with the
// active word at index size/2 when enough words precede it. A window that is
// short within its own segment is padded from the start of the next segment
// only; nothing is borrowed from earlier segments.
//
// Words are copies. The window carries no active marker; see HighlightIndex.
func BuildWindow(t *transcript.Transcript, active WordRef, size int) []transcript.Word {
	if t == nil || size < 1 || !active.Valid() || active.Segment >= len(t.Segments) {
		return nil
	}
	words := t.Segments[active.Segment].Words
	if active.Word >= len(words) {
		return nil
	}

	before := size / 2
	after := size - before - 1

	start := max(0, active.Word-before)
	end := min(len(words), active.Word+after+1)

	window := make([]transcript.Word, 0, size)
	window = append(window, words[start:end]...)

	if len(window) < size && active.Segment+1 < len(t.Segments) {
		next := t.Segments[active.Segment+1].Words
		take := min(size-len(window), len(next))
		window = append(window, next[:take]...)
	}
	return window
}

// HighlightIndex locates the active word inside a window by its text and
// timing. Spillover words come from another segment, so position in the
// source segment cannot be used. Returns -1 if the word is not present.
func HighlightIndex(window []transcript.Word, active transcript.Word) int {
	want := strings.TrimSpace(active.Text)
	for i, w := range window {
		if w.StartTime == active.StartTime &&
			w.EndTime == active.EndTime &&
			strings.TrimSpace(w.Text) == want {
			return i
		}
	}
	return -1
}
