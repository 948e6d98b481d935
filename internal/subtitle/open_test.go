package subtitle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseSRTFile(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:04,000
Hello, world!

2
00:00:05,500 --> 00:00:08,200
This is a test.
With multiple lines.

3
00:00:10,000 --> 00:00:12,500
Final subtitle.
`
	tmpDir := t.TempDir()
	srtPath := filepath.Join(tmpDir, "test.srt")
	if err := os.WriteFile(srtPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	sub, err := Open(srtPath)
	if err != nil {
		t.Fatalf("failed to open SRT file: %v", err)
	}

	if sub.Format != string(FormatSRT) {
		t.Errorf("expected format SRT, got %s", sub.Format)
	}

	if len(sub.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(sub.Entries))
	}

	if sub.Entries[0].StartTime != 1*time.Second {
		t.Errorf(
			"entry 0: expected start 1s, got %v",
			sub.Entries[0].StartTime,
		)
	}
	if sub.Entries[0].EndTime != 4*time.Second {
		t.Errorf("entry 0: expected end 4s, got %v", sub.Entries[0].EndTime)
	}
	if sub.Entries[0].Text != "Hello, world!" {
		t.Errorf(
			"entry 0: expected 'Hello, world!', got %q",
			sub.Entries[0].Text,
		)
	}

	expectedText := "This is a test.\nWith multiple lines."
	if sub.Entries[1].Text != expectedText {
		t.Errorf(
			"entry 1: expected %q, got %q",
			expectedText,
			sub.Entries[1].Text,
		)
	}

	tr := sub.Transcript()
	if tr.HasWords() {
		t.Error("imported transcript should be segment-only")
	}
	if tr.Segments[1].Text != "This is a test. With multiple lines." {
		t.Errorf("expected cue lines joined, got %q", tr.Segments[1].Text)
	}
	if tr.Segments[2].EndTime != 12500*time.Millisecond {
		t.Errorf("expected end 12.5s, got %v", tr.Segments[2].EndTime)
	}
}

func TestParseVTTFile(t *testing.T) {
	content := `WEBVTT

1
00:00:01.000 --> 00:00:04.000
Hello, world!

2
00:00:05.500 --> 00:00:08.200
This is a test.
With multiple lines.

00:00:10.000 --> 00:00:12.500
No cue identifier.
`
	tmpDir := t.TempDir()
	vttPath := filepath.Join(tmpDir, "test.vtt")
	if err := os.WriteFile(vttPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	sub, err := Open(vttPath)
	if err != nil {
		t.Fatalf("failed to open VTT file: %v", err)
	}

	if sub.Format != string(FormatVTT) {
		t.Errorf("expected format VTT, got %s", sub.Format)
	}

	if len(sub.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(sub.Entries))
	}

	if sub.Entries[0].StartTime != 1*time.Second {
		t.Errorf(
			"entry 0: expected start 1s, got %v",
			sub.Entries[0].StartTime,
		)
	}
	if sub.Entries[0].Text != "Hello, world!" {
		t.Errorf(
			"entry 0: expected 'Hello, world!', got %q",
			sub.Entries[0].Text,
		)
	}

	if sub.Entries[2].Text != "No cue identifier." {
		t.Errorf(
			"entry 2: expected 'No cue identifier.', got %q",
			sub.Entries[2].Text,
		)
	}
}

func TestParseASSFile(t *testing.T) {
	content := `[Script Info]
Title: Test Subtitles
ScriptType: v4.00+

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.00,0:00:04.00,Default,,0,0,0,,Hello, world!
Dialogue: 0,0:00:05.50,0:00:08.20,Default,,0,0,0,,{\pos(100,200)}This has positioning.
Dialogue: 0,0:00:10.00,0:00:12.50,Default,,0,0,0,,Line with\Nnewline.
`
	tmpDir := t.TempDir()
	assPath := filepath.Join(tmpDir, "test.ass")
	if err := os.WriteFile(assPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	sub, err := Open(assPath)
	if err != nil {
		t.Fatalf("failed to open ASS file: %v", err)
	}

	if sub.Format != string(FormatASS) {
		t.Errorf("expected format ASS, got %s", sub.Format)
	}

	if len(sub.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(sub.Entries))
	}

	// Check first entry
	if sub.Entries[0].StartTime != 1*time.Second {
		t.Errorf(
			"entry 0: expected start 1s, got %v",
			sub.Entries[0].StartTime,
		)
	}
	if sub.Entries[0].Text != "Hello, world!" {
		t.Errorf(
			"entry 0: expected 'Hello, world!', got %q",
			sub.Entries[0].Text,
		)
	}

	// override tags are dropped
	if sub.Entries[1].Text != "This has positioning." {
		t.Errorf(
			"entry 1: expected 'This has positioning.', got %q",
			sub.Entries[1].Text,
		)
	}

	// check third entry (has \N which should be converted to newline)
	if sub.Entries[2].Text != "Line with\nnewline." {
		t.Errorf(
			"entry 2: expected 'Line with\\nnewline.', got %q",
			sub.Entries[2].Text,
		)
	}
}

func TestParseASSRequiresFormat(t *testing.T) {
	content := `[Events]
Dialogue: 0,0:00:01.00,0:00:04.00,Default,,0,0,0,,No format line
`
	if _, err := Parse(strings.NewReader(content), FormatASS); err == nil {
		t.Error("expected error for Dialogue before Format line")
	}
}

func TestParseVTTStripsMarkup(t *testing.T) {
	content := "WEBVTT\n\n00:01.000 --> 00:02.500\n<b>Tom</b> &amp; <i>Jerry</i>\n"
	sub, err := Parse(strings.NewReader(content), FormatVTT)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(sub.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(sub.Entries))
	}
	if sub.Entries[0].Text != "Tom & Jerry" {
		t.Errorf("expected markup removed, got %q", sub.Entries[0].Text)
	}
	if sub.Entries[0].EndTime != 2500*time.Millisecond {
		t.Errorf("expected end 2.5s, got %v", sub.Entries[0].EndTime)
	}
}

func TestParseASSTimestamp(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"0:00:01.00", time.Second},
		{"1:02:03.45", time.Hour + 2*time.Minute + 3*time.Second + 450*time.Millisecond},
		{" 0:00:05.50 ", 5500 * time.Millisecond},
		{"garbage", 0},
		{"0:00:01", 0},
	}
	for _, tt := range tests {
		if got := parseASSTimestamp(tt.input); got != tt.want {
			t.Errorf("parseASSTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestOpenUnsupportedFormat(t *testing.T) {
	tmpDir := t.TempDir()
	txtPath := filepath.Join(tmpDir, "test.txt")
	if err := os.WriteFile(txtPath, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, err := Open(txtPath)
	if err == nil {
		t.Error("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected 'unsupported' in error, got: %v", err)
	}
}
