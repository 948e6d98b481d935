package transcribe

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mgpai22/kara/internal/transcript"
)

// ErrProvider is returned when a provider answers with an error payload
// (for example "No speech detected").
var ErrProvider = errors.New("provider error")

// Response is the transcript wire format shared by the whisper server, the
// HTTP API and transcript files on disk. Times are float seconds.
type Response struct {
	Language     string        `json:"language"`
	Transcript   string        `json:"transcript"`
	Segments     []WireSegment `json:"segments"`
	WordSegments []WordSegment `json:"word_segments,omitempty"`
	Error        string        `json:"error,omitempty"`
}

type WireSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type WordSegment struct {
	SegmentStart float64    `json:"segment_start"`
	SegmentEnd   float64    `json:"segment_end"`
	SegmentText  string     `json:"segment_text"`
	Words        []WireWord `json:"words"`
}

type WireWord struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

// ParseResponse decodes the wire format into a transcript. word_segments
// are authoritative; without them the transcript is built from segments and
// carries no word data.
func ParseResponse(data []byte) (*transcript.Transcript, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse transcript JSON: %w", err)
	}
	return resp.ToTranscript()
}

// ToTranscript converts a decoded response.
func (r Response) ToTranscript() (*transcript.Transcript, error) {
	if r.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrProvider, r.Error)
	}

	if len(r.WordSegments) > 0 {
		segments := make([]transcript.Segment, len(r.WordSegments))
		for i, ws := range r.WordSegments {
			seg := transcript.Segment{
				StartTime: seconds(ws.SegmentStart),
				EndTime:   seconds(ws.SegmentEnd),
				Text:      ws.SegmentText,
			}
			if len(ws.Words) > 0 {
				seg.Words = make([]transcript.Word, len(ws.Words))
				for j, w := range ws.Words {
					seg.Words[j] = transcript.Word{
						Text:       w.Word,
						StartTime:  seconds(w.Start),
						EndTime:    seconds(w.End),
						Confidence: w.Probability,
					}
				}
			}
			segments[i] = seg
		}
		return transcript.New(r.Language, segments), nil
	}

	segments := make([]transcript.Segment, len(r.Segments))
	for i, s := range r.Segments {
		segments[i] = transcript.Segment{
			StartTime: seconds(s.Start),
			EndTime:   seconds(s.End),
			Text:      s.Text,
		}
	}
	return transcript.New(r.Language, segments), nil
}

// NewResponse renders t in the wire format. word_segments are written only
// when t carries word timing.
func NewResponse(t *transcript.Transcript) Response {
	resp := Response{
		Language:   t.Language,
		Transcript: t.Text(),
		Segments:   make([]WireSegment, len(t.Segments)),
	}
	for i, seg := range t.Segments {
		resp.Segments[i] = WireSegment{
			Start: seg.StartTime.Seconds(),
			End:   seg.EndTime.Seconds(),
			Text:  seg.Text,
		}
	}
	if !t.HasWords() {
		return resp
	}

	resp.WordSegments = make([]WordSegment, len(t.Segments))
	for i, seg := range t.Segments {
		words := make([]WireWord, len(seg.Words))
		for j, w := range seg.Words {
			words[j] = WireWord{
				Word:        w.Text,
				Start:       w.StartTime.Seconds(),
				End:         w.EndTime.Seconds(),
				Probability: w.Confidence,
			}
		}
		resp.WordSegments[i] = WordSegment{
			SegmentStart: seg.StartTime.Seconds(),
			SegmentEnd:   seg.EndTime.Seconds(),
			SegmentText:  seg.Text,
			Words:        words,
		}
	}
	return resp
}

// EncodeResponse writes t as indented wire-format JSON.
func EncodeResponse(t *transcript.Transcript) ([]byte, error) {
	data, err := json.MarshalIndent(NewResponse(t), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode transcript: %w", err)
	}
	return data, nil
}
