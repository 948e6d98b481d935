package style

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownPreset is returned when a preset name is not registered.
var ErrUnknownPreset = errors.New("unknown style preset")

// Style is how a render target draws captions. Nothing in the caption
// engine reads it; it is carried to the render target as-is.
type Style struct {
	Name            string `yaml:"name" json:"name"`
	FontFamily      string `yaml:"font_family" json:"fontFamily"`
	FontSize        int    `yaml:"font_size" json:"fontSize"`
	TextColor       string `yaml:"text_color" json:"textColor"`
	HighlightColor  string `yaml:"highlight_color" json:"highlightColor"`
	Outline         bool   `yaml:"outline" json:"outline"`
	OutlineWidth    int    `yaml:"outline_width" json:"outlineWidth"`
	OutlineColor    string `yaml:"outline_color" json:"outlineColor"`
	BackgroundColor string `yaml:"background_color" json:"backgroundColor"`
	BorderColor     string `yaml:"border_color" json:"borderColor"`
}

// font families offered by the preset picker
var Fonts = []string{
	"Arial",
	"Helvetica",
	"Impact",
	"Montserrat",
	"Roboto",
	"Verdana",
	"Georgia",
	"Courier New",
}

// font sizes offered by the preset picker
var FontSizes = []int{16, 20, 24, 28, 32, 40, 48, 64}

const (
	MinOutlineWidth = 0
	MaxOutlineWidth = 8
)

var colorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}([0-9A-Fa-f]{2})?$`)

// checks every field against the enumerated options
func (s Style) Validate() error {
	if !containsString(Fonts, s.FontFamily) {
		return fmt.Errorf("unsupported font family %q", s.FontFamily)
	}
	if !containsInt(FontSizes, s.FontSize) {
		return fmt.Errorf("unsupported font size %d", s.FontSize)
	}
	colors := map[string]string{
		"text_color":      s.TextColor,
		"highlight_color": s.HighlightColor,
		"outline_color":   s.OutlineColor,
	}
	if s.BackgroundColor != "" {
		colors["background_color"] = s.BackgroundColor
	}
	if s.BorderColor != "" {
		colors["border_color"] = s.BorderColor
	}
	for field, c := range colors {
		if !colorRegex.MatchString(c) {
			return fmt.Errorf("invalid %s %q: expected #RRGGBB or #RRGGBBAA", field, c)
		}
	}
	if s.OutlineWidth < MinOutlineWidth || s.OutlineWidth > MaxOutlineWidth {
		return fmt.Errorf(
			"outline width %d out of range (%d-%d)",
			s.OutlineWidth,
			MinOutlineWidth,
			MaxOutlineWidth,
		)
	}
	return nil
}

// Registry holds named presets.
type Registry struct {
	presets map[string]Style
}

// registry seeded with the built-in presets
func NewRegistry() *Registry {
	r := &Registry{presets: make(map[string]Style)}
	for _, p := range builtins() {
		r.presets[p.Name] = p
	}
	return r
}

const DefaultPreset = "classic"

func builtins() []Style {
	return []Style{
		{
			Name:           "classic",
			FontFamily:     "Arial",
			FontSize:       28,
			TextColor:      "#FFFFFF",
			HighlightColor: "#FFFF00",
			Outline:        true,
			OutlineWidth:   2,
			OutlineColor:   "#000000",
		},
		{
			Name:           "bold",
			FontFamily:     "Impact",
			FontSize:       40,
			TextColor:      "#FFFFFF",
			HighlightColor: "#FF3B30",
			Outline:        true,
			OutlineWidth:   4,
			OutlineColor:   "#000000",
		},
		{
			Name:           "neon",
			FontFamily:     "Montserrat",
			FontSize:       32,
			TextColor:      "#E0E0FF",
			HighlightColor: "#39FF14",
			Outline:        true,
			OutlineWidth:   3,
			OutlineColor:   "#FF00FF",
		},
		{
			Name:           "minimal",
			FontFamily:     "Helvetica",
			FontSize:       24,
			TextColor:      "#DDDDDD",
			HighlightColor: "#FFFFFF",
			OutlineColor:   "#000000",
		},
		{
			Name:            "boxed",
			FontFamily:      "Roboto",
			FontSize:        28,
			TextColor:       "#FFFFFF",
			HighlightColor:  "#FFD60A",
			OutlineColor:    "#000000",
			BackgroundColor: "#000000CC",
			BorderColor:     "#FFD60A",
		},
	}
}

func (r *Registry) Get(name string) (Style, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultPreset
	}
	s, ok := r.presets[name]
	if !ok {
		return Style{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return s, nil
}

// preset names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Add validates and registers a preset, replacing one with the same name.
func (r *Registry) Add(s Style) error {
	s.Name = strings.ToLower(strings.TrimSpace(s.Name))
	if s.Name == "" {
		return fmt.Errorf("preset name is required")
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("preset %q: %w", s.Name, err)
	}
	r.presets[s.Name] = s
	return nil
}

type presetFile struct {
	Presets []Style `yaml:"presets"`
}

// LoadPresets reads a YAML file of the form
//
//	presets:
//	  - name: sunset
//	    font_family: Georgia
//	    ...
//
// and registers every entry.
func (r *Registry) LoadPresets(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read presets file: %w", err)
	}

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse presets file: %w", err)
	}

	for _, p := range file.Presets {
		if err := r.Add(p); err != nil {
			return err
		}
	}
	return nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, n := range list {
		if n == v {
			return true
		}
	}
	return false
}
