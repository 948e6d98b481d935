package transcript

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEdit is returned when a word correction is rejected. The
// transcript is left unchanged.
var ErrInvalidEdit = errors.New("invalid edit")

// EditWord replaces the text of one word and re-derives the owning segment's
// text and the flat transcript. Timing and confidence are never touched.
func (t *Transcript) EditWord(segment, word int, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: empty text", ErrInvalidEdit)
	}
	if t == nil || segment < 0 || segment >= len(t.Segments) {
		return fmt.Errorf("%w: segment %d out of range", ErrInvalidEdit, segment)
	}

	seg := &t.Segments[segment]
	if word < 0 || word >= len(seg.Words) {
		return fmt.Errorf(
			"%w: word %d out of range for segment %d",
			ErrInvalidEdit,
			word,
			segment,
		)
	}

	seg.Words[word].Text = text
	t.reconcile(segment)
	return nil
}

// recomputes derived text after segment's words changed
func (t *Transcript) reconcile(segment int) {
	seg := &t.Segments[segment]
	seg.Text = deriveSegmentText(*seg)
	t.text = joinSegments(t.Segments)
}
