package subtitle

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mgpai22/kara/internal/transcript"
)

// DefaultGenerator builds one cue per segment and splits segments that are
// too long to read. Segments with word timing are split at word boundaries
// using the words' own times; segment-only data is split proportionally.
type DefaultGenerator struct {
	MaxCharsPerLine int
	MaxLinesPerSub  int
	MaxDuration     time.Duration
}

func NewDefaultGenerator() *DefaultGenerator {
	return &DefaultGenerator{
		MaxCharsPerLine: 42, // Standard subtitle line length
		MaxLinesPerSub:  2,  // Most players support 2 lines
		MaxDuration:     7 * time.Second,
	}
}

func (g *DefaultGenerator) maxChars() int {
	return g.MaxCharsPerLine * g.MaxLinesPerSub
}

// converts transcript segments to subtitle cues
func (g *DefaultGenerator) Generate(t *transcript.Transcript) (*Subtitle, error) {
	sub := &Subtitle{Entries: []Entry{}, Format: string(FormatSRT)}
	if t == nil {
		return sub, nil
	}
	sub.Language = t.Language

	for _, seg := range t.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}

		var entries []Entry
		switch {
		case !g.needsSplit(text, seg.EndTime-seg.StartTime):
			entries = []Entry{{
				StartTime: seg.StartTime,
				EndTime:   seg.EndTime,
				Text:      g.formatText(text),
			}}
		case len(seg.Words) > 0:
			entries = g.splitWords(seg)
		default:
			entries = g.splitSegment(seg)
		}
		sub.Entries = append(sub.Entries, entries...)
	}

	for i := range sub.Entries {
		sub.Entries[i].Index = i + 1
	}
	return sub, nil
}

func (g *DefaultGenerator) needsSplit(
	text string,
	duration time.Duration,
) bool {
	return utf8.RuneCountInString(text) > g.maxChars() || duration > g.MaxDuration
}

// groups words greedily into cues that fit both the character and the
// duration limit; a single oversized word still gets its own cue
func (g *DefaultGenerator) splitWords(seg transcript.Segment) []Entry {
	var (
		entries []Entry
		group   []transcript.Word
		chars   int
	)

	flush := func() {
		if len(group) == 0 {
			return
		}
		entries = append(entries, Entry{
			StartTime: group[0].StartTime,
			EndTime:   group[len(group)-1].EndTime,
			Text:      g.formatText(transcript.JoinWords(group)),
		})
		group = nil
		chars = 0
	}

	for _, w := range seg.Words {
		n := utf8.RuneCountInString(strings.TrimSpace(w.Text))
		if len(group) > 0 {
			tooLong := chars+1+n > g.maxChars()
			tooSlow := w.EndTime-group[0].StartTime > g.MaxDuration
			if tooLong || tooSlow {
				flush()
			}
		}
		if len(group) > 0 {
			chars++
		}
		chars += n
		group = append(group, w)
	}
	flush()

	// the cues cover the whole segment
	entries[0].StartTime = min(entries[0].StartTime, seg.StartTime)
	last := len(entries) - 1
	entries[last].EndTime = max(entries[last].EndTime, seg.EndTime)
	return entries
}

// splits long segment into multiple entries
func (g *DefaultGenerator) splitSegment(seg transcript.Segment) []Entry {
	text := strings.TrimSpace(seg.Text)
	words := strings.Fields(text)
	totalDuration := seg.EndTime - seg.StartTime

	if len(words) == 0 {
		return nil
	}

	maxChars := g.maxChars()
	totalChars := utf8.RuneCountInString(text)

	// estimate of splits needed
	numSplits := max((totalChars+maxChars-1)/maxChars, 1)
	if durationSplits := int(totalDuration/g.MaxDuration) + 1; durationSplits > numSplits {
		numSplits = durationSplits
	}

	wordsPerSplit := (len(words) + numSplits - 1) / numSplits
	durationPerSplit := totalDuration / time.Duration(numSplits)

	var entries []Entry
	currentStart := seg.StartTime

	for i := 0; i < numSplits && len(words) > 0; i++ {
		endIdx := min(wordsPerSplit, len(words))
		splitWords := words[:endIdx]
		words = words[endIdx:]

		currentEnd := currentStart + durationPerSplit
		// Last split should end at the original end time
		if len(words) == 0 {
			currentEnd = seg.EndTime
		}

		entries = append(entries, Entry{
			StartTime: currentStart,
			EndTime:   currentEnd,
			Text:      g.formatText(strings.Join(splitWords, " ")),
		})

		currentStart = currentEnd
	}

	return entries
}

// formatText formats text for display with line wrapping
func (g *DefaultGenerator) formatText(text string) string {
	text = strings.TrimSpace(text)
	runeCount := utf8.RuneCountInString(text)

	// if text fits on one line, return as is
	if runeCount <= g.MaxCharsPerLine {
		return text
	}

	// try to split into two lines at a natural break point
	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	// find the best split point (closest to middle)
	middle := runeCount / 2
	bestSplit := 0
	bestDiff := runeCount

	currentLen := 0
	for i, word := range words[:len(words)-1] {
		currentLen += utf8.RuneCountInString(word)
		if i > 0 {
			currentLen++ // space
		}

		diff := abs(currentLen - middle)
		if diff < bestDiff {
			bestDiff = diff
			bestSplit = i + 1
		}
	}

	if bestSplit > 0 && bestSplit < len(words) {
		line1 := strings.Join(words[:bestSplit], " ")
		line2 := strings.Join(words[bestSplit:], " ")
		return line1 + "\n" + line2
	}

	return text
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
