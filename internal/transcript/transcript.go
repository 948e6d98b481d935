package transcript

import (
	"strings"
	"time"
)

// smallest timed unit of a transcript
type Word struct {
	Text       string
	StartTime  time.Duration
	EndTime    time.Duration
	Confidence float64
}

// contiguous span of speech; owns its words
type Segment struct {
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
	Words     []Word
}

// Transcript is the timed transcript of one media file.
//
// Segment text (for segments with words) and the flat text are derived and
// are recomputed from the words whenever a word changes. Segment index is
// the stable identity of a segment for the lifetime of the transcript.
type Transcript struct {
	Language string
	Segments []Segment

	text string
}

// builds a transcript and derives all text from its words
func New(language string, segments []Segment) *Transcript {
	t := &Transcript{
		Language: language,
		Segments: segments,
	}
	for i := range t.Segments {
		t.Segments[i].Text = deriveSegmentText(t.Segments[i])
	}
	t.text = joinSegments(t.Segments)
	return t
}

// flat transcript: all segment texts joined by single spaces
func (t *Transcript) Text() string {
	if t == nil {
		return ""
	}
	return t.text
}

// reports whether any segment carries word-level timing
func (t *Transcript) HasWords() bool {
	if t == nil {
		return false
	}
	for _, seg := range t.Segments {
		if len(seg.Words) > 0 {
			return true
		}
	}
	return false
}

func (t *Transcript) WordCount() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, seg := range t.Segments {
		n += len(seg.Words)
	}
	return n
}

// returns the word at (segment, word) if both indices are in range
func (t *Transcript) Word(segment, word int) (Word, bool) {
	if t == nil || segment < 0 || segment >= len(t.Segments) {
		return Word{}, false
	}
	words := t.Segments[segment].Words
	if word < 0 || word >= len(words) {
		return Word{}, false
	}
	return words[word], true
}

// end of the last segment or word, whichever is later
func (t *Transcript) Duration() time.Duration {
	if t == nil {
		return 0
	}
	var end time.Duration
	for _, seg := range t.Segments {
		if seg.EndTime > end {
			end = seg.EndTime
		}
		for _, w := range seg.Words {
			if w.EndTime > end {
				end = w.EndTime
			}
		}
	}
	return end
}

// deep copy; edits to the clone never reach the original
func (t *Transcript) Clone() *Transcript {
	if t == nil {
		return nil
	}
	segments := make([]Segment, len(t.Segments))
	for i, seg := range t.Segments {
		segments[i] = seg
		if seg.Words != nil {
			segments[i].Words = append([]Word(nil), seg.Words...)
		}
	}
	return &Transcript{
		Language: t.Language,
		Segments: segments,
		text:     t.text,
	}
}

// Shift moves every segment and word by offset. Used when merging chunked
// transcriptions.
func (t *Transcript) Shift(offset time.Duration) {
	for i := range t.Segments {
		seg := &t.Segments[i]
		seg.StartTime += offset
		seg.EndTime += offset
		for j := range seg.Words {
			seg.Words[j].StartTime += offset
			seg.Words[j].EndTime += offset
		}
	}
}

// Merge concatenates transcripts in order into a new transcript.
func Merge(language string, parts ...*Transcript) *Transcript {
	var segments []Segment
	for _, p := range parts {
		if p == nil {
			continue
		}
		segments = append(segments, p.Clone().Segments...)
	}
	return New(language, segments)
}

// JoinWords joins trimmed word texts with single spaces.
func JoinWords(words []Word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = strings.TrimSpace(w.Text)
	}
	return strings.Join(parts, " ")
}

func deriveSegmentText(seg Segment) string {
	if len(seg.Words) == 0 {
		// segment-only data: provider text is the only source
		return strings.TrimSpace(seg.Text)
	}
	return JoinWords(seg.Words)
}

func joinSegments(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = seg.Text
	}
	return strings.Join(parts, " ")
}
