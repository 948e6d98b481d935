package video

import (
	"math"
	"testing"
)

func TestBurnKwArgs(t *testing.T) {
	kw := BurnKwArgs("/tmp/caps.ass", DefaultBurnOptions())
	if kw["vf"] != "ass=/tmp/caps.ass" {
		t.Errorf("unexpected filter: %v", kw["vf"])
	}
	if kw["c:v"] != "libx264" || kw["c:a"] != "copy" {
		t.Errorf("unexpected codecs: %v", kw)
	}
	if kw["crf"] != 20 {
		t.Errorf("expected crf 20, got %v", kw["crf"])
	}

	bare := BurnKwArgs("caps.ass", BurnOptions{})
	if bare["c:v"] != "libx264" {
		t.Errorf("expected default codec, got %v", bare["c:v"])
	}
	if _, ok := bare["crf"]; ok {
		t.Error("crf should be unset when zero")
	}
}

func TestEscapeFilterPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/tmp/caps.ass", "/tmp/caps.ass"},
		{"C:/work/caps.ass", `C\:/work/caps.ass`},
		{"/tmp/it's.ass", `/tmp/it\'s.ass`},
	}
	for _, tt := range tests {
		if got := escapeFilterPath(tt.in); got != tt.want {
			t.Errorf("escapeFilterPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseInfo(t *testing.T) {
	data := `{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "avg_frame_rate": "30000/1001"},
			{"codec_type": "audio", "codec_name": "aac"}
		],
		"format": {"duration": "61.5"}
	}`

	info, err := parseInfo([]byte(data))
	if err != nil {
		t.Fatalf("parseInfo failed: %v", err)
	}
	if info.Codec != "h264" || info.Width != 1920 || info.Height != 1080 || !info.HasAudio {
		t.Errorf("unexpected info: %+v", info)
	}
	if math.Abs(info.FrameRate-29.97) > 0.01 {
		t.Errorf("expected ~29.97 fps, got %v", info.FrameRate)
	}
	if info.Duration.Seconds() != 61.5 {
		t.Errorf("expected 61.5s, got %v", info.Duration)
	}

	if _, err := parseInfo([]byte(`{"streams": [{"codec_type": "audio"}]}`)); err == nil {
		t.Error("expected error for audio-only file")
	}
}
