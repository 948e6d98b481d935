package transcribe

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/mgpai22/kara/internal/audio"
	"github.com/mgpai22/kara/internal/transcript"
)

// transcription result
type Result struct {
	Transcript *transcript.Transcript
	Duration   time.Duration
}

// interface for audio transcription
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

// transcription service provider
type Provider string

const (
	ProviderWhisper Provider = "whisper"
	ProviderOpenAI  Provider = "openai"
	ProviderGemini  Provider = "gemini"
	ProviderGCP     Provider = "gcp"
)

// providers in the order they are offered on the command line
var Providers = []Provider{ProviderWhisper, ProviderOpenAI, ProviderGemini, ProviderGCP}

// transcription options
type Options struct {
	APIKey   string
	Language string // source language hint; empty lets the provider detect it
	Model    string
	Prompt   string

	// whisper server base URL, e.g. http://localhost:8000
	BaseURL    string
	HTTPClient *http.Client

	// service account JSON for gcp; empty uses application default credentials
	CredentialsFile string
}

// creates transcriber based on provider
func Factory(ctx context.Context, provider Provider, opts Options) (Transcriber, error) {
	switch provider {
	case ProviderWhisper:
		return NewWhisperTranscriber(opts)
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, opts)
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, opts)
	case ProviderGCP:
		return NewGCPTranscriber(ctx, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func ParseProvider(s string) (Provider, error) {
	for _, p := range Providers {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unsupported provider %q: use whisper, openai, gemini, or gcp", s)
}

// replaced in tests
var probeDuration = audio.GetDurationContext

// media duration from ffprobe, falling back to the end of the transcript
func mediaDuration(ctx context.Context, path string, t *transcript.Transcript) time.Duration {
	if d, err := probeDuration(ctx, path); err == nil && d > 0 {
		return d
	}
	return t.Duration()
}

// float seconds to a duration, rounded to the nearest nanosecond
func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
