package caption

import (
	"time"

	"github.com/mgpai22/kara/internal/transcript"
)

// closed interval [start, end]; malformed intervals (end < start) never match
type span struct {
	start time.Duration
	end   time.Duration
}

func (s span) valid() bool {
	return s.end >= s.start
}

func (s span) contains(pos time.Duration) bool {
	return s.valid() && pos >= s.start && pos <= s.end
}

// timeline is an ordered list of intervals searched for the first interval
// containing a position.
//
// ordered is true when every valid interval starts at or after the end of the
// previous valid one. Only then may a search start from a cursor; otherwise
// every lookup is a full scan.
type timeline struct {
	spans   []span
	ordered bool
}

func newTimeline(spans []span) timeline {
	ordered := true
	prev := -1
	for i, s := range spans {
		if !s.valid() {
			continue
		}
		if prev >= 0 && s.start < spans[prev].end {
			ordered = false
			break
		}
		prev = i
	}
	return timeline{spans: spans, ordered: ordered}
}

func segmentTimeline(t *transcript.Transcript) timeline {
	if t == nil {
		return timeline{ordered: true}
	}
	spans := make([]span, len(t.Segments))
	for i, seg := range t.Segments {
		spans[i] = span{start: seg.StartTime, end: seg.EndTime}
	}
	return newTimeline(spans)
}

// flattens all words in segment order; refs maps a timeline index back to
// its (segment, word) position
func wordTimeline(t *transcript.Transcript) (timeline, []WordRef) {
	if t == nil {
		return timeline{ordered: true}, nil
	}
	var (
		spans []span
		refs  []WordRef
	)
	for si, seg := range t.Segments {
		for wi, w := range seg.Words {
			spans = append(spans, span{start: w.StartTime, end: w.EndTime})
			refs = append(refs, WordRef{Segment: si, Word: wi})
		}
	}
	return newTimeline(spans), refs
}

// first interval containing pos, or -1
func (tl timeline) scan(pos time.Duration) int {
	for i, s := range tl.spans {
		if s.contains(pos) {
			return i
		}
	}
	return -1
}

// seek returns the same index as scan, starting the search from hint. On an
// ordered timeline the cost is proportional to the distance from hint, so
// steadily advancing positions resolve in amortized constant time.
func (tl timeline) seek(pos time.Duration, hint int) int {
	n := len(tl.spans)
	if n == 0 {
		return -1
	}
	if !tl.ordered {
		return tl.scan(pos)
	}

	i := hint
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}

	// rewind after a backwards seek
	for i > 0 && (!tl.spans[i].valid() || tl.spans[i].start > pos) {
		i--
	}

	found := -1
	for j := i; j < n; j++ {
		s := tl.spans[j]
		if !s.valid() {
			continue
		}
		if s.start > pos {
			break
		}
		if s.end >= pos {
			found = j
			break
		}
	}

	// earlier intervals can still match when their end touches pos
	from := found
	if from < 0 {
		from = i
	}
	for k := tl.prevValid(from - 1); k >= 0 && tl.spans[k].contains(pos); k = tl.prevValid(k - 1) {
		found = k
	}
	return found
}

func (tl timeline) prevValid(i int) int {
	for ; i >= 0; i-- {
		if tl.spans[i].valid() {
			return i
		}
	}
	return -1
}
