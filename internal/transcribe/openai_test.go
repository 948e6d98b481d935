package transcribe

import (
	"testing"
	"time"
)

func TestParseVerboseJSON(t *testing.T) {
	tests := []struct {
		name         string
		rawJSON      string
		wantSegments int
		wantWords    int
		wantErr      bool
	}{
		{
			name: "segments with words",
			rawJSON: `{
				"text": "Hello world. How are you?",
				"language": "english",
				"duration": 3.0,
				"segments": [
					{"start": 0.0, "end": 1.5, "text": " Hello world."},
					{"start": 1.5, "end": 3.0, "text": " How are you?"}
				],
				"words": [
					{"word": "Hello", "start": 0.0, "end": 0.6},
					{"word": "world.", "start": 0.6, "end": 1.4},
					{"word": "How", "start": 1.5, "end": 1.9},
					{"word": "are", "start": 1.9, "end": 2.3},
					{"word": "you?", "start": 2.3, "end": 3.0}
				]
			}`,
			wantSegments: 2,
			wantWords:    5,
		},
		{
			name: "words without segments",
			rawJSON: `{
				"text": "just words",
				"words": [
					{"word": "just", "start": 0.2, "end": 0.5},
					{"word": "words", "start": 0.5, "end": 1.0}
				]
			}`,
			wantSegments: 1,
			wantWords:    2,
		},
		{
			name: "segments only",
			rawJSON: `{
				"text": "Hello world",
				"segments": [
					{"start": 0.0, "end": 0.5, "text": ""},
					{"start": 0.5, "end": 1.5, "text": "Hello world"},
					{"start": 1.5, "end": 2.0, "text": "   "}
				]
			}`,
			wantSegments: 1,
			wantWords:    0,
		},
		{
			name:         "text only",
			rawJSON:      `{"text": "No timing at all.", "duration": 2.5}`,
			wantSegments: 1,
		},
		{
			name:    "empty response",
			rawJSON: "",
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			rawJSON: `{"text": "incomplete`,
			wantErr: true,
		},
		{
			name:    "no segments and no text",
			rawJSON: `{"text": "", "segments": [], "duration": 0}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := parseVerboseJSON(tt.rawJSON, 5*time.Second)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tr.Segments) != tt.wantSegments {
				t.Errorf("got %d segments, want %d", len(tr.Segments), tt.wantSegments)
			}
			if tr.WordCount() != tt.wantWords {
				t.Errorf("got %d words, want %d", tr.WordCount(), tt.wantWords)
			}
			for i, seg := range tr.Segments {
				if seg.Text == "" {
					t.Errorf("segment %d has empty text", i)
				}
			}
		})
	}
}

func TestParseVerboseJSONAssignsWordsBySegment(t *testing.T) {
	rawJSON := `{
		"text": "Hello world. Goodbye.",
		"language": "en",
		"segments": [
			{"start": 1.5, "end": 3.0, "text": "Hello world."},
			{"start": 3.0, "end": 5.5, "text": "Goodbye."}
		],
		"words": [
			{"word": "Hello", "start": 1.4, "end": 2.0},
			{"word": "world.", "start": 2.0, "end": 3.0},
			{"word": "Goodbye.", "start": 3.0, "end": 5.5}
		]
	}`

	tr, err := parseVerboseJSON(rawJSON, 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := tr.Segments[0].Text; got != "Hello world." {
		t.Errorf("segment 0 text: got %q, want %q", got, "Hello world.")
	}
	if len(tr.Segments[0].Words) != 2 {
		t.Errorf("expected early word to join the first segment, got %d words", len(tr.Segments[0].Words))
	}
	if len(tr.Segments[1].Words) != 1 {
		t.Errorf("expected boundary word in the second segment, got %d words", len(tr.Segments[1].Words))
	}
	if tr.Segments[1].StartTime != 3*time.Second {
		t.Errorf("segment 1 start time: got %v, want 3s", tr.Segments[1].StartTime)
	}
	if tr.Segments[0].Words[0].StartTime != 1400*time.Millisecond {
		t.Errorf("word timing changed: %v", tr.Segments[0].Words[0].StartTime)
	}
}

func TestParseVerboseJSONFallbackSegment(t *testing.T) {
	tr, err := parseVerboseJSON(`{"text": "This is a transcription without segments.", "duration": 10.5}`, 15*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tr.Segments) != 1 {
		t.Fatalf("expected 1 fallback segment, got %d", len(tr.Segments))
	}
	if tr.Segments[0].StartTime != 0 {
		t.Errorf("fallback segment start time should be 0, got %v", tr.Segments[0].StartTime)
	}
	if want := time.Duration(10.5 * float64(time.Second)); tr.Segments[0].EndTime != want {
		t.Errorf("fallback segment end time: got %v, want %v", tr.Segments[0].EndTime, want)
	}
	if tr.HasWords() {
		t.Error("fallback segment should carry no words")
	}
}
