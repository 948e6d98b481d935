package server

import (
	"math"
	"time"

	"github.com/mgpai22/kara/internal/caption"
	"github.com/mgpai22/kara/internal/style"
)

// JSON view of a caption.Frame; times are float seconds like the transcript
// wire format
type frameView struct {
	Position    float64     `json:"position"`
	Segment     int         `json:"segment"`
	Word        wordRefView `json:"word"`
	Window      []wordView  `json:"window"`
	Highlight   int         `json:"highlight"`
	SegmentText string      `json:"segmentText"`
	Style       style.Style `json:"style"`
}

type wordRefView struct {
	Segment int `json:"segment"`
	Word    int `json:"word"`
}

type wordView struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func newFrameView(f caption.Frame) frameView {
	v := frameView{
		Position:    toSeconds(f.Position),
		Segment:     f.Segment,
		Word:        wordRefView{Segment: f.Word.Segment, Word: f.Word.Word},
		Window:      make([]wordView, len(f.Window)),
		Highlight:   f.Highlight,
		SegmentText: f.SegmentText,
		Style:       f.Style,
	}
	for i, w := range f.Window {
		v.Window[i] = wordView{Text: w.Text, Start: toSeconds(w.StartTime), End: toSeconds(w.EndTime)}
	}
	return v
}

func toSeconds(d time.Duration) float64 {
	return d.Seconds()
}

func fromSeconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
