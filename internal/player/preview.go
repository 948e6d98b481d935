package player

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/mgpai22/kara/internal/caption"
	"github.com/mgpai22/kara/internal/style"
)

// Renderer draws frames as still images: the caption window along the
// bottom of a dark backdrop, styled from the frame's preset.
type Renderer struct {
	Width  int
	Height int
	// directory holding <FontFamily>.ttf files; missing fonts fall back to
	// Go Regular
	FontDir string

	mu    sync.Mutex
	faces map[string]font.Face
}

func NewRenderer(width, height int, fontDir string) *Renderer {
	return &Renderer{
		Width:   width,
		Height:  height,
		FontDir: fontDir,
		faces:   make(map[string]font.Face),
	}
}

// RenderPNG draws frame and encodes it as PNG into w.
func (r *Renderer) RenderPNG(frame caption.Frame, w io.Writer) error {
	dc, err := r.draw(frame)
	if err != nil {
		return err
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

func (r *Renderer) draw(frame caption.Frame) (*gg.Context, error) {
	st := frame.Style
	face, err := r.face(st)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(r.Width, r.Height)
	dc.SetColor(color.NRGBA{R: 0x12, G: 0x12, B: 0x12, A: 0xFF})
	dc.Clear()
	dc.SetFontFace(face)

	words, highlight := frameWords(frame)
	if len(words) == 0 {
		return dc, nil
	}

	_, lineHeight := dc.MeasureString("Hg")
	space, _ := dc.MeasureString(" ")
	widths := make([]float64, len(words))
	total := space * float64(len(words)-1)
	for i, word := range words {
		widths[i], _ = dc.MeasureString(word)
		total += widths[i]
	}

	x := (float64(r.Width) - total) / 2
	baseline := float64(r.Height) - lineHeight*1.5

	if st.BackgroundColor != "" {
		pad := lineHeight * 0.4
		dc.DrawRoundedRectangle(x-pad, baseline-lineHeight-pad/2, total+2*pad, lineHeight+1.5*pad, pad/2)
		dc.SetColor(parseHexColor(st.BackgroundColor, color.NRGBA{A: 0xCC}))
		dc.FillPreserve()
		if st.BorderColor != "" {
			dc.SetColor(parseHexColor(st.BorderColor, color.White))
			dc.SetLineWidth(2)
			dc.StrokePreserve()
		}
		dc.ClearPath()
	}

	textColor := parseHexColor(st.TextColor, color.White)
	highlightColor := parseHexColor(st.HighlightColor, color.NRGBA{R: 0xFF, G: 0xFF, A: 0xFF})
	outlineColor := parseHexColor(st.OutlineColor, color.Black)

	for i, word := range words {
		if st.Outline && st.OutlineWidth > 0 {
			dc.SetColor(outlineColor)
			ow := float64(st.OutlineWidth)
			for dy := -ow; dy <= ow; dy++ {
				for dx := -ow; dx <= ow; dx++ {
					if dx != 0 || dy != 0 {
						dc.DrawString(word, x+dx, baseline+dy)
					}
				}
			}
		}
		if i == highlight {
			dc.SetColor(highlightColor)
		} else {
			dc.SetColor(textColor)
		}
		dc.DrawString(word, x, baseline)
		x += widths[i] + space
	}
	return dc, nil
}

// window words, or the segment text when there is no word data
func frameWords(frame caption.Frame) ([]string, int) {
	if len(frame.Window) == 0 {
		return strings.Fields(frame.SegmentText), -1
	}
	words := make([]string, len(frame.Window))
	for i, w := range frame.Window {
		words[i] = strings.TrimSpace(w.Text)
	}
	return words, frame.Highlight
}

func (r *Renderer) face(st style.Style) (font.Face, error) {
	size := float64(st.FontSize)
	if size <= 0 {
		size = 28
	}
	key := st.FontFamily + "|" + strconv.Itoa(int(size))

	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.faces[key]; ok {
		return f, nil
	}

	fontBytes := goregular.TTF
	if r.FontDir != "" && st.FontFamily != "" {
		path := filepath.Join(r.FontDir, st.FontFamily+".ttf")
		if data, err := os.ReadFile(path); err == nil {
			fontBytes = data
		}
	}

	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	f := truetype.NewFace(parsed, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	r.faces[key] = f
	return f, nil
}

// parses #RRGGBB or #RRGGBBAA
func parseHexColor(hex string, fallback color.Color) color.Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return fallback
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fallback
	}
	a := uint64(0xFF)
	if len(hex) == 8 {
		a = v & 0xFF
		v >>= 8
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: uint8(a)}
}

// PNGSink writes every presented frame as a numbered PNG into Dir.
type PNGSink struct {
	Dir      string
	Renderer *Renderer

	count int
}

func NewPNGSink(dir string, renderer *Renderer) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create frame directory: %w", err)
	}
	return &PNGSink{Dir: dir, Renderer: renderer}, nil
}

func (s *PNGSink) Present(frame caption.Frame) error {
	var buf bytes.Buffer
	if err := s.Renderer.RenderPNG(frame, &buf); err != nil {
		return err
	}
	s.count++
	path := filepath.Join(s.Dir, fmt.Sprintf("frame_%05d.png", s.count))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// number of frames written so far
func (s *PNGSink) Count() int {
	return s.count
}
