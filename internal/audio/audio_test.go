package audio

import (
	"testing"
	"time"
)

func TestPlanChunks(t *testing.T) {
	tests := []struct {
		name      string
		total     time.Duration
		chunk     time.Duration
		wantCount int
		wantLast  time.Duration
	}{
		{"exact multiple", 3 * time.Minute, time.Minute, 3, 3 * time.Minute},
		{"short tail", 150 * time.Second, time.Minute, 3, 150 * time.Second},
		{"shorter than one chunk", 20 * time.Second, time.Minute, 1, 20 * time.Second},
		{"zero total", 0, time.Minute, 0, 0},
		{"zero chunk", time.Minute, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := PlanChunks(tt.total, tt.chunk)
			if len(chunks) != tt.wantCount {
				t.Fatalf("expected %d chunks, got %d", tt.wantCount, len(chunks))
			}
			if len(chunks) == 0 {
				return
			}
			if got := chunks[len(chunks)-1].EndTime; got != tt.wantLast {
				t.Errorf("expected last chunk to end at %v, got %v", tt.wantLast, got)
			}
			for i, c := range chunks {
				if c.Index != i {
					t.Errorf("chunk %d has index %d", i, c.Index)
				}
				if i > 0 && c.StartTime != chunks[i-1].EndTime {
					t.Errorf("chunk %d starts at %v, previous ends at %v", i, c.StartTime, chunks[i-1].EndTime)
				}
			}
		})
	}
}

func TestParseProbeDuration(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"typical", `{"format": {"duration": "12.500000"}}`, 12500 * time.Millisecond, false},
		{"missing", `{"format": {}}`, 0, true},
		{"garbage", `not json`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProbeDuration([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseProbeDuration() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMediaFileDetection(t *testing.T) {
	tests := []struct {
		path  string
		audio bool
		video bool
	}{
		{"talk.MP3", true, false},
		{"clip.mp4", false, true},
		{"clip.webm", false, true},
		{"voice.opus", true, false},
		{"notes.txt", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsAudioFile(tt.path); got != tt.audio {
				t.Errorf("IsAudioFile(%q) = %v, want %v", tt.path, got, tt.audio)
			}
			if got := IsVideoFile(tt.path); got != tt.video {
				t.Errorf("IsVideoFile(%q) = %v, want %v", tt.path, got, tt.video)
			}
			if got := IsMediaFile(tt.path); got != (tt.audio || tt.video) {
				t.Errorf("IsMediaFile(%q) = %v", tt.path, got)
			}
		})
	}
}

func TestCompressionKwArgs(t *testing.T) {
	kw := DefaultCompressionOptions().KwArgs()
	if kw["acodec"] != "libmp3lame" || kw["b:a"] != "64k" || kw["ac"] != 1 {
		t.Errorf("unexpected kwargs: %v", kw)
	}

	wav := CompressionOptions{Format: "wav", SampleRate: 16000, Channels: 1, Bitrate: "64k"}.KwArgs()
	if wav["acodec"] != "pcm_s16le" {
		t.Errorf("expected pcm_s16le for wav, got %v", wav["acodec"])
	}
	if _, ok := wav["b:a"]; ok {
		t.Error("bitrate should not be set for wav")
	}
}
