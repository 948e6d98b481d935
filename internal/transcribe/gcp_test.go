package transcribe

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
)

func speechWord(text string, start, end time.Duration, conf float32) *speechpb.WordInfo {
	return &speechpb.WordInfo{
		Word:       text,
		StartTime:  durationpb.New(start),
		EndTime:    durationpb.New(end),
		Confidence: conf,
	}
}

func TestParseSpeechResults(t *testing.T) {
	results := []*speechpb.SpeechRecognitionResult{
		{
			Alternatives: []*speechpb.SpeechRecognitionAlternative{{
				Transcript: "hello world",
				Words: []*speechpb.WordInfo{
					speechWord("hello", 100*time.Millisecond, 500*time.Millisecond, 0.9),
					speechWord("world", 500*time.Millisecond, 1100*time.Millisecond, 0.8),
				},
			}},
			ResultEndTime: durationpb.New(1200 * time.Millisecond),
			LanguageCode:  "en-us",
		},
		{
			Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "   "}},
		},
		{
			Alternatives: []*speechpb.SpeechRecognitionAlternative{{
				Transcript: " no offsets ",
			}},
			ResultEndTime: durationpb.New(3 * time.Second),
		},
		nil,
	}

	tr := parseSpeechResults("en-US", results)

	if len(tr.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(tr.Segments))
	}
	if tr.Language != "en-us" {
		t.Errorf("expected language from results, got %q", tr.Language)
	}

	first := tr.Segments[0]
	if first.StartTime != 100*time.Millisecond || first.EndTime != 1200*time.Millisecond {
		t.Errorf("unexpected first segment span [%v, %v]", first.StartTime, first.EndTime)
	}
	if len(first.Words) != 2 || first.Words[1].Confidence < 0.79 || first.Words[1].Confidence > 0.81 {
		t.Errorf("unexpected words: %+v", first.Words)
	}

	second := tr.Segments[1]
	if second.StartTime != 1200*time.Millisecond || second.EndTime != 3*time.Second {
		t.Errorf("expected segment to start at previous end, got [%v, %v]", second.StartTime, second.EndTime)
	}
	if second.Text != "no offsets" || len(second.Words) != 0 {
		t.Errorf("unexpected second segment: %+v", second)
	}
}

func TestRetryRecognize(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   bool
	}{
		{"success first try", nil, 1, false},
		{"transient then success", []error{status.Error(codes.Unavailable, "busy")}, 2, false},
		{
			"retries exhausted",
			[]error{
				status.Error(codes.ResourceExhausted, "quota"),
				status.Error(codes.ResourceExhausted, "quota"),
				status.Error(codes.DeadlineExceeded, "slow"),
			},
			3,
			true,
		},
		{"permanent error", []error{status.Error(codes.InvalidArgument, "bad audio")}, 1, true},
		{"plain error", []error{errors.New("boom")}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			_, err := retryRecognize(ctx, 2, time.Millisecond, func() (*speechpb.LongRunningRecognizeResponse, error) {
				calls++
				if calls <= len(tt.errs) {
					return nil, tt.errs[calls-1]
				}
				return &speechpb.LongRunningRecognizeResponse{}, nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("retryRecognize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("expected %d calls, got %d", tt.wantCalls, calls)
			}
		})
	}
}

func TestInferSpeechEncoding(t *testing.T) {
	tests := map[string]speechpb.RecognitionConfig_AudioEncoding{
		"a.wav":  speechpb.RecognitionConfig_LINEAR16,
		"a.FLAC": speechpb.RecognitionConfig_FLAC,
		"a.mp3":  speechpb.RecognitionConfig_MP3,
		"a.opus": speechpb.RecognitionConfig_OGG_OPUS,
		"a.m4a":  speechpb.RecognitionConfig_ENCODING_UNSPECIFIED,
	}
	for path, want := range tests {
		if got := inferSpeechEncoding(path); got != want {
			t.Errorf("inferSpeechEncoding(%q) = %v, want %v", path, got, want)
		}
	}
}
