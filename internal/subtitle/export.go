package subtitle

import (
	"fmt"
	"io"

	"github.com/mgpai22/kara/internal/style"
	"github.com/mgpai22/kara/internal/transcript"
)

type ExportOptions struct {
	// karaoke cues instead of segment cues; implied by FormatKaraoke
	Karaoke    bool
	WindowSize int
	Style      style.Style
}

// Export renders t in format to w.
func Export(t *transcript.Transcript, format Format, opts ExportOptions, w io.Writer) error {
	var gen Generator = NewDefaultGenerator()
	if opts.Karaoke || format == FormatKaraoke {
		kg, err := NewKaraokeGenerator(opts.WindowSize)
		if err != nil {
			return err
		}
		gen = kg
	}

	sub, err := gen.Generate(t)
	if err != nil {
		return fmt.Errorf("failed to generate subtitles: %w", err)
	}

	writer, err := NewWriter(format, opts.Style)
	if err != nil {
		return err
	}
	return writer.Write(sub, w)
}
