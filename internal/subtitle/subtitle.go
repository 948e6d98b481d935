package subtitle

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/kara/internal/transcript"
)

// represents single subtitle entry
type Entry struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string

	// set on karaoke cues; writers render the highlight in their own markup
	Karaoke *KaraokeLine
}

// window of words shown by one karaoke cue
type KaraokeLine struct {
	Words     []string
	Highlight int // index into Words, -1 for none
}

// represents complete subtitle track
type Subtitle struct {
	Entries  []Entry
	Language string
	Format   string
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
	// ASS with one windowed cue per word
	FormatKaraoke Format = "karaoke"
)

var Formats = []Format{FormatSRT, FormatVTT, FormatASS, FormatKaraoke}

func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q: use srt, vtt, ass, or karaoke", s)
}

// interface for subtitle generation
type Generator interface {
	Generate(t *transcript.Transcript) (*Subtitle, error)
}

// interface for encoding subtitles
type Writer interface {
	Write(sub *Subtitle, w io.Writer) error
}

// WriteFile encodes sub with writer into path, creating parent directories.
func WriteFile(writer Writer, sub *Subtitle, path string) error {
	var buf bytes.Buffer
	if err := writer.Write(sub, &buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}
	return nil
}

// Transcript converts parsed cues into a segment-only transcript. Line
// breaks inside a cue become spaces.
func (s *Subtitle) Transcript() *transcript.Transcript {
	segments := make([]transcript.Segment, 0, len(s.Entries))
	for _, e := range s.Entries {
		text := strings.Join(strings.Fields(e.Text), " ")
		if text == "" {
			continue
		}
		segments = append(segments, transcript.Segment{
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
			Text:      text,
		})
	}
	return transcript.New(s.Language, segments)
}

// subtitle format based on file extension
func GetFormatFromExtension(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".srt":
		return FormatSRT
	case ".vtt":
		return FormatVTT
	case ".ass", ".ssa":
		return FormatASS
	default:
		return FormatSRT
	}
}

// file extension for a format
func GetExtensionForFormat(format Format) string {
	switch format {
	case FormatVTT:
		return ".vtt"
	case FormatASS, FormatKaraoke:
		return ".ass"
	default:
		return ".srt"
	}
}
