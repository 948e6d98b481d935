package proofread

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mgpai22/kara/internal/transcript"
)

func sampleTranscript() *transcript.Transcript {
	ms := time.Millisecond
	return transcript.New("en", []transcript.Segment{
		{
			StartTime: 0,
			EndTime:   1000 * ms,
			Words: []transcript.Word{
				{Text: " helo", StartTime: 0, EndTime: 400 * ms},
				{Text: "wrld", StartTime: 400 * ms, EndTime: 1000 * ms},
			},
		},
		{StartTime: 1000 * ms, EndTime: 2000 * ms, Text: "no words here"},
		{
			StartTime: 2000 * ms,
			EndTime:   3000 * ms,
			Words: []transcript.Word{
				{Text: "fine", StartTime: 2000 * ms, EndTime: 3000 * ms},
			},
		},
	})
}

func TestItems(t *testing.T) {
	items := Items(sampleTranscript())
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Index != 0 || items[1].Index != 2 {
		t.Errorf("expected segment indices 0 and 2, got %d and %d", items[0].Index, items[1].Index)
	}
	if items[0].Words[0] != "helo" {
		t.Errorf("expected trimmed word, got %q", items[0].Words[0])
	}
	if Items(nil) != nil {
		t.Error("expected no items for nil transcript")
	}
}

func TestApply(t *testing.T) {
	tr := sampleTranscript()
	report := Apply(tr, []Correction{
		{Index: 0, Words: []string{"hello", "world"}},
		{Index: 2, Words: []string{"fine", "extra"}},
		{Index: 9, Words: []string{"ghost"}},
	})

	want := Report{Applied: 2, Skipped: 2}
	if report != want {
		t.Errorf("Apply() report = %+v, want %+v", report, want)
	}
	if tr.Text() != "hello world no words here fine" {
		t.Errorf("unexpected text after apply: %q", tr.Text())
	}
	w, _ := tr.Word(0, 1)
	if w.StartTime != 400*time.Millisecond || w.EndTime != time.Second {
		t.Errorf("timing changed: %+v", w)
	}
}

func TestApplyUnchangedAndRejected(t *testing.T) {
	tr := sampleTranscript()
	report := Apply(tr, []Correction{
		{Index: 0, Words: []string{"helo", "  "}},
	})

	want := Report{Unchanged: 1, Rejected: 1}
	if report != want {
		t.Errorf("Apply() report = %+v, want %+v", report, want)
	}
	if tr.Segments[0].Text != "helo wrld" {
		t.Errorf("rejected edit changed the segment: %q", tr.Segments[0].Text)
	}
}

type fakeProofreader struct {
	corrections []Correction
	err         error
	got         []Item
}

func (f *fakeProofreader) Proofread(ctx context.Context, items []Item) ([]Correction, error) {
	f.got = items
	return f.corrections, f.err
}

func TestRun(t *testing.T) {
	tr := sampleTranscript()
	fake := &fakeProofreader{corrections: []Correction{
		{Index: 0, Words: []string{"Hello", "world"}},
		{Index: 2, Words: []string{"fine"}},
	}}

	report, err := Run(context.Background(), fake, tr)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(fake.got) != 2 {
		t.Errorf("expected 2 items sent, got %d", len(fake.got))
	}
	if report.Applied != 2 || report.Unchanged != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	if tr.Segments[0].Text != "Hello world" {
		t.Errorf("unexpected segment text: %q", tr.Segments[0].Text)
	}
}

func TestRunProviderError(t *testing.T) {
	tr := sampleTranscript()
	boom := errors.New("quota exceeded")
	_, err := Run(context.Background(), &fakeProofreader{err: boom}, tr)
	if !errors.Is(err, boom) {
		t.Errorf("expected provider error, got %v", err)
	}
	if tr.Text() != "helo wrld no words here fine" {
		t.Errorf("transcript changed on error: %q", tr.Text())
	}
}

func TestRunWithoutWords(t *testing.T) {
	tr := transcript.New("en", []transcript.Segment{{EndTime: time.Second, Text: "plain"}})
	fake := &fakeProofreader{}
	report, err := Run(context.Background(), fake, tr)
	if err != nil || report != (Report{}) {
		t.Errorf("expected empty report, got %+v, %v", report, err)
	}
	if fake.got != nil {
		t.Error("proofreader should not be called without words")
	}
}
