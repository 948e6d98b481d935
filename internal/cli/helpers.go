package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/kara/internal/style"
	"github.com/mgpai22/kara/internal/subtitle"
	"github.com/mgpai22/kara/internal/transcribe"
	"github.com/mgpai22/kara/internal/transcript"
)

// loadTranscript reads a transcript JSON file, or a subtitle file as a
// segment-only transcript.
func loadTranscript(path string) (*transcript.Transcript, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("transcript file not found: %s", path)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read transcript: %w", err)
		}
		return transcribe.ParseResponse(data)
	}

	sub, err := subtitle.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return sub.Transcript(), nil
}

// saveTranscript writes t as transcript JSON.
func saveTranscript(path string, t *transcript.Transcript) error {
	data, err := transcribe.EncodeResponse(t)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}

// replaceExt swaps the extension of path for ext (".srt", ".json", ...).
func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// styles returns the preset registry with the configured presets file loaded.
func styles() (*style.Registry, error) {
	reg := style.NewRegistry()
	if cfg.PresetsFile != "" {
		if err := reg.LoadPresets(cfg.PresetsFile); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// resolveStyle looks up name, falling back to the configured preset.
func resolveStyle(name string) (style.Style, error) {
	reg, err := styles()
	if err != nil {
		return style.Style{}, err
	}
	if name == "" {
		name = cfg.Preset
	}
	return reg.Get(name)
}

// windowSize returns the flag value, or the configured size when unset.
func windowSize(flag int) int {
	if flag > 0 {
		return flag
	}
	return cfg.WindowSize
}
