package proofread

import (
	"context"
	"fmt"
	"strings"

	"github.com/mgpai22/kara/internal/transcript"
)

// outcome of applying corrections to a transcript
type Report struct {
	Applied   int // words whose text changed
	Unchanged int // words returned as-is
	Rejected  int // words whose correction was refused
	Skipped   int // corrections for unknown segments or with the wrong word count
}

// Items returns one item per segment that carries words. Segments without
// words cannot be corrected word by word and are left out.
func Items(t *transcript.Transcript) []Item {
	if t == nil {
		return nil
	}
	var items []Item
	for i, seg := range t.Segments {
		if len(seg.Words) == 0 {
			continue
		}
		words := make([]string, len(seg.Words))
		for j, w := range seg.Words {
			words[j] = strings.TrimSpace(w.Text)
		}
		items = append(items, Item{Index: i, Words: words})
	}
	return items
}

// Apply edits t in place. A correction whose word count differs from the
// segment's is skipped whole, since words cannot be realigned to timings.
func Apply(t *transcript.Transcript, corrections []Correction) Report {
	var r Report
	for _, c := range corrections {
		if c.Index < 0 || c.Index >= len(t.Segments) ||
			len(c.Words) != len(t.Segments[c.Index].Words) {
			r.Skipped++
			continue
		}
		for j, text := range c.Words {
			current, _ := t.Word(c.Index, j)
			if strings.TrimSpace(text) == strings.TrimSpace(current.Text) {
				r.Unchanged++
				continue
			}
			if err := t.EditWord(c.Index, j, text); err != nil {
				r.Rejected++
				continue
			}
			r.Applied++
		}
	}
	return r
}

// Run proofreads t with p and applies the corrections in place.
func Run(ctx context.Context, p Proofreader, t *transcript.Transcript) (Report, error) {
	items := Items(t)
	if len(items) == 0 {
		return Report{}, nil
	}
	corrections, err := p.Proofread(ctx, items)
	if err != nil {
		return Report{}, fmt.Errorf("proofreading failed: %w", err)
	}
	return Apply(t, corrections), nil
}
