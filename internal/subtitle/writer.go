package subtitle

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mgpai22/kara/internal/style"
)

// SubRip format
type SRTWriter struct{}

// WebVTT format
type VTTWriter struct{}

// Advanced SubStation Alpha format, styled from a caption preset
type ASSWriter struct {
	Title string
	Style style.Style
}

func NewWriter(format Format, st style.Style) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{}, nil
	case FormatASS, FormatKaraoke:
		return &ASSWriter{
			Title: "Kara Captions",
			Style: st,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// writes the subtitle in SRT format
func (w *SRTWriter) Write(sub *Subtitle, out io.Writer) error {
	bw := bufio.NewWriter(out)
	for i, entry := range sub.Entries {
		// index (1-based)
		fmt.Fprintf(bw, "%d\n", i+1)

		// timestamps: 00:00:00,000 --> 00:00:00,000
		fmt.Fprintf(bw, "%s --> %s\n",
			formatSRTTime(entry.StartTime),
			formatSRTTime(entry.EndTime))

		bw.WriteString(markupText(entry, false))
		bw.WriteString("\n\n")
	}
	return bw.Flush()
}

// writes the subtitle in WebVTT format
func (w *VTTWriter) Write(sub *Subtitle, out io.Writer) error {
	bw := bufio.NewWriter(out)

	// VTT header
	bw.WriteString("WEBVTT\n\n")

	for i, entry := range sub.Entries {
		// optional cue identifier
		fmt.Fprintf(bw, "%d\n", i+1)

		// timestamps: 00:00:00.000 --> 00:00:00.000
		fmt.Fprintf(bw, "%s --> %s\n",
			formatVTTTime(entry.StartTime),
			formatVTTTime(entry.EndTime))

		bw.WriteString(markupText(entry, true))
		bw.WriteString("\n\n")
	}
	return bw.Flush()
}

// SRT and VTT mark the highlighted karaoke word with <b>; VTT cue text
// also needs HTML escaping
func markupText(entry Entry, escape bool) string {
	esc := func(s string) string {
		if escape {
			return html.EscapeString(s)
		}
		return s
	}
	if entry.Karaoke == nil {
		return esc(entry.Text)
	}
	parts := make([]string, len(entry.Karaoke.Words))
	for i, word := range entry.Karaoke.Words {
		if i == entry.Karaoke.Highlight {
			parts[i] = "<b>" + esc(word) + "</b>"
		} else {
			parts[i] = esc(word)
		}
	}
	return strings.Join(parts, " ")
}

const assStyleFormat = "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n"

// writes the subtitle in ASS format with Default and Highlight styles
func (w *ASSWriter) Write(sub *Subtitle, out io.Writer) error {
	bw := bufio.NewWriter(out)

	// script info section
	bw.WriteString("[Script Info]\n")
	fmt.Fprintf(bw, "Title: %s\n", w.Title)
	bw.WriteString("ScriptType: v4.00+\n")
	bw.WriteString("WrapStyle: 0\n")
	bw.WriteString("ScaledBorderAndShadow: yes\n")
	bw.WriteString("Collisions: Normal\n")
	bw.WriteString("PlayDepth: 0\n\n")

	// v4+ styles section
	bw.WriteString("[V4+ Styles]\n")
	bw.WriteString(assStyleFormat)
	bw.WriteString(w.styleLine("Default", w.Style.TextColor))
	bw.WriteString(w.styleLine("Highlight", w.Style.HighlightColor))
	bw.WriteString("\n")

	// events section
	bw.WriteString("[Events]\n")
	bw.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, entry := range sub.Entries {
		fmt.Fprintf(bw, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTime(entry.StartTime),
			formatASSTime(entry.EndTime),
			assText(entry))
	}
	return bw.Flush()
}

func (w *ASSWriter) styleLine(name, primary string) string {
	st := w.Style

	fontName := st.FontFamily
	if fontName == "" {
		fontName = "Arial"
	}
	fontSize := st.FontSize
	if fontSize == 0 {
		fontSize = 20
	}

	// 1: outline + shadow, 3: opaque box
	borderStyle := 1
	backColour := assColor(st.OutlineColor, "&H00000000")
	outlineColour := assColor(st.OutlineColor, "&H00000000")
	if st.BackgroundColor != "" {
		borderStyle = 3
		backColour = assColor(st.BackgroundColor, "&H80000000")
		outlineColour = backColour
	}
	outline := 0
	if st.Outline {
		outline = st.OutlineWidth
	}

	return fmt.Sprintf(
		"Style: %s,%s,%d,%s,&H000000FF,%s,%s,0,0,0,0,100,100,0,0,%d,%d,0,2,10,10,10,1\n",
		name,
		fontName,
		fontSize,
		assColor(primary, "&H00FFFFFF"),
		outlineColour,
		backColour,
		borderStyle,
		outline,
	)
}

// assColor converts #RRGGBB or #RRGGBBAA into ASS &HAABBGGRR, where ASS
// alpha 00 is opaque.
func assColor(hex, fallback string) string {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return fallback
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fallback
	}
	alpha := uint64(0)
	if len(hex) == 8 {
		alpha = 0xFF - (v & 0xFF)
		v >>= 8
	}
	r, g, b := (v>>16)&0xFF, (v>>8)&0xFF, v&0xFF
	return fmt.Sprintf("&H%02X%02X%02X%02X", alpha, b, g, r)
}

// karaoke cues switch to the Highlight style for the active word and back
func assText(entry Entry) string {
	if entry.Karaoke == nil {
		return escapeASSText(entry.Text)
	}
	parts := make([]string, len(entry.Karaoke.Words))
	for i, word := range entry.Karaoke.Words {
		word = escapeASSText(word)
		if i == entry.Karaoke.Highlight {
			word = `{\rHighlight}` + word + `{\r}`
		}
		parts[i] = word
	}
	return strings.Join(parts, " ")
}

func escapeASSText(text string) string {
	text = strings.ReplaceAll(text, "\n", "\\N")
	text = strings.ReplaceAll(text, "{", "(")
	return strings.ReplaceAll(text, "}", ")")
}

func formatSRTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

func formatVTTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}

func formatASSTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	centis := (int(d.Milliseconds()) % 1000) / 10

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, centis)
}
