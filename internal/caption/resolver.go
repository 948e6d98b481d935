package caption

import (
	"time"

	"github.com/mgpai22/kara/internal/transcript"
)

// position of a word inside a transcript
type WordRef struct {
	Segment int
	Word    int
}

// NoWord is the WordRef of an unresolved word.
var NoWord = WordRef{Segment: -1, Word: -1}

func (r WordRef) Valid() bool {
	return r.Segment >= 0 && r.Word >= 0
}

// Result is what should be on screen at one playback position. It is
// recomputed on every tick and never stored in the transcript.
type Result struct {
	Position time.Duration
	// -1 when no segment contains the position
	Segment int
	Word    WordRef
	Window  []transcript.Word
}

func emptyResult(pos time.Duration) Result {
	return Result{Position: pos, Segment: -1, Word: NoWord}
}

func (r Result) HasSegment() bool {
	return r.Segment >= 0
}

func (r Result) HasWord() bool {
	return r.Word.Valid()
}

// Resolve finds the active segment and word for pos with a full scan.
func Resolve(t *transcript.Transcript, pos time.Duration) Result {
	return NewResolver(t).fullScan(pos)
}

// Resolver maps playback positions to the active segment and word. It keeps
// the last resolved indices so that a playing clock is resolved without
// rescanning the transcript; any seek gives the same answer as Resolve.
//
// A Resolver indexes timing only. Word text edits do not invalidate it.
type Resolver struct {
	segments timeline
	words    timeline
	refs     []WordRef

	segmentHint int
	wordHint    int
}

func NewResolver(t *transcript.Transcript) *Resolver {
	words, refs := wordTimeline(t)
	return &Resolver{
		segments: segmentTimeline(t),
		words:    words,
		refs:     refs,
	}
}

func (r *Resolver) Resolve(pos time.Duration) Result {
	res := emptyResult(pos)

	if i := r.segments.seek(pos, r.segmentHint); i >= 0 {
		res.Segment = i
		r.segmentHint = i
	}
	if i := r.words.seek(pos, r.wordHint); i >= 0 {
		res.Word = r.refs[i]
		r.wordHint = i
	}
	return res
}

func (r *Resolver) fullScan(pos time.Duration) Result {
	res := emptyResult(pos)
	if i := r.segments.scan(pos); i >= 0 {
		res.Segment = i
	}
	if i := r.words.scan(pos); i >= 0 {
		res.Word = r.refs[i]
	}
	return res
}

// Reset forgets the cursor; the next lookup starts from the beginning.
func (r *Resolver) Reset() {
	r.segmentHint = 0
	r.wordHint = 0
}
