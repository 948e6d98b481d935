package transcribe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const whisperPayload = `{
  "language": "en",
  "transcript": "hello world",
  "segments": [{"start": 0.0, "end": 1.4, "text": "hello world"}],
  "word_segments": [{
    "segment_start": 0.0,
    "segment_end": 1.4,
    "segment_text": "hello world",
    "words": [
      {"word": "hello", "start": 0.0, "end": 0.6, "probability": 0.98},
      {"word": "world", "start": 0.6, "end": 1.4, "probability": 0.91}
    ]
  }]
}`

func stubProbe(t *testing.T, d time.Duration, err error) {
	t.Helper()
	orig := probeDuration
	probeDuration = func(ctx context.Context, path string) (time.Duration, error) {
		return d, err
	}
	t.Cleanup(func() { probeDuration = orig })
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp3")
	if err := os.WriteFile(path, []byte("fake audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newWhisperServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
	mux.HandleFunc("/transcribe-with-words", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "clip.mp3" || string(data) != "fake audio" {
			http.Error(w, "unexpected upload", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestWhisperTranscribe(t *testing.T) {
	stubProbe(t, 90*time.Second, nil)
	srv := newWhisperServer(t, http.StatusOK, whisperPayload)

	tr, err := NewWhisperTranscriber(Options{BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("NewWhisperTranscriber failed: %v", err)
	}

	result, err := tr.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if result.Duration != 90*time.Second {
		t.Errorf("expected probed duration, got %v", result.Duration)
	}
	got := result.Transcript
	if got.Language != "en" || got.WordCount() != 2 {
		t.Fatalf("unexpected transcript: %+v", got)
	}
	w := got.Segments[0].Words[1]
	if w.Text != "world" || w.StartTime != 600*time.Millisecond || w.EndTime != 1400*time.Millisecond {
		t.Errorf("unexpected word: %+v", w)
	}
}

func TestWhisperTranscribeDurationFallback(t *testing.T) {
	stubProbe(t, 0, errors.New("ffprobe missing"))
	srv := newWhisperServer(t, http.StatusOK, whisperPayload)

	tr, _ := NewWhisperTranscriber(Options{BaseURL: srv.URL})
	result, err := tr.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if result.Duration != 1400*time.Millisecond {
		t.Errorf("expected transcript end as duration, got %v", result.Duration)
	}
}

func TestWhisperTranscribeErrors(t *testing.T) {
	stubProbe(t, time.Second, nil)

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
		target  error
	}{
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    "model not loaded",
			wantErr: "model not loaded",
		},
		{
			name:    "error payload",
			status:  http.StatusOK,
			body:    `{"error": "No speech detected"}`,
			wantErr: "No speech detected",
			target:  ErrProvider,
		},
		{
			name:    "invalid json",
			status:  http.StatusOK,
			body:    `{"segments": [`,
			wantErr: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newWhisperServer(t, tt.status, tt.body)
			tr, _ := NewWhisperTranscriber(Options{BaseURL: srv.URL})

			_, err := tr.Transcribe(context.Background(), writeAudio(t))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected errors.Is(%v), got %v", tt.target, err)
			}
		})
	}
}

func TestWhisperMissingFile(t *testing.T) {
	tr, _ := NewWhisperTranscriber(Options{})
	_, err := tr.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.mp3"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestWhisperHealth(t *testing.T) {
	healthy := newWhisperServer(t, http.StatusOK, "")
	tr, _ := NewWhisperTranscriber(Options{BaseURL: healthy.URL})
	if err := tr.Health(context.Background()); err != nil {
		t.Errorf("expected healthy server, got %v", err)
	}

	down := newWhisperServer(t, http.StatusServiceUnavailable, "")
	tr, _ = NewWhisperTranscriber(Options{BaseURL: down.URL})
	if err := tr.Health(context.Background()); err == nil {
		t.Error("expected unhealthy server error")
	}
}

func TestNewWhisperTranscriberURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"", DefaultWhisperURL, false},
		{"http://gpu-box:9000/", "http://gpu-box:9000", false},
		{"https://whisper.example.com", "https://whisper.example.com", false},
		{"gpu-box:9000", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			tr, err := NewWhisperTranscriber(Options{BaseURL: tt.url})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewWhisperTranscriber(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if err == nil && tr.baseURL != tt.want {
				t.Errorf("baseURL = %q, want %q", tr.baseURL, tt.want)
			}
		})
	}
}
