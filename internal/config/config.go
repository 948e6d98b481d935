// Package config gathers runtime settings from the environment and .env
// files. Command-line flags override these values in internal/cli.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mgpai22/kara/internal/caption"
	"github.com/mgpai22/kara/internal/logging"
	"github.com/mgpai22/kara/internal/style"
	"github.com/mgpai22/kara/internal/transcribe"
)

const (
	EnvProvider       = "KARA_PROVIDER"
	EnvWhisperURL     = "KARA_WHISPER_URL"
	EnvWindowSize     = "KARA_WINDOW_SIZE"
	EnvPreset         = "KARA_PRESET"
	EnvPresetsFile    = "KARA_PRESETS_FILE"
	EnvFontDir        = "KARA_FONT_DIR"
	EnvAddr           = "KARA_ADDR"
	EnvAllowedOrigins = "KARA_ALLOWED_ORIGINS"
	EnvJWTSecret      = "KARA_JWT_SECRET"
	EnvTokenTTL       = "KARA_TOKEN_TTL"
	EnvChunkDuration  = "KARA_CHUNK_DURATION"
	EnvConcurrency    = "KARA_CONCURRENCY"

	EnvOpenAIKey         = "OPENAI_API_KEY"
	EnvGeminiKey         = "GEMINI_API_KEY"
	EnvAnthropicKey      = "ANTHROPIC_API_KEY"
	EnvGoogleCredentials = "GOOGLE_APPLICATION_CREDENTIALS"
)

const (
	DefaultWhisperURL    = "http://localhost:8000"
	DefaultAddr          = ":8080"
	DefaultTokenTTL      = 24 * time.Hour
	DefaultChunkDuration = 10 * time.Minute
	DefaultConcurrency   = 3
)

type Config struct {
	Provider   transcribe.Provider
	WhisperURL string

	OpenAIKey         string
	GeminiKey         string
	AnthropicKey      string
	GoogleCredentials string

	WindowSize  int
	Preset      string
	PresetsFile string
	FontDir     string

	Addr           string
	AllowedOrigins []string
	// empty disables authentication on the API
	JWTSecret string
	TokenTTL  time.Duration

	// audio longer than this is split before transcription
	ChunkDuration time.Duration
	Concurrency   int
}

// Load reads envFiles (missing files are skipped) and the process
// environment. Process variables win over file values, and earlier files win
// over later ones.
func Load(log *logging.Logger, envFiles ...string) (Config, error) {
	if log == nil {
		log = logging.Nop()
	}

	fileEnv := make(map[string]string)
	for _, path := range envFiles {
		values, err := godotenv.Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			log.Debugw("No env file found, using environment", "path", path)
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
		for k, v := range values {
			if _, ok := fileEnv[k]; !ok {
				fileEnv[k] = v
			}
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}
	return FromLookup(lookup, log), nil
}

// FromLookup builds a Config from lookup, using defaults for missing or
// unparseable values.
func FromLookup(lookup func(string) (string, bool), log *logging.Logger) Config {
	if log == nil {
		log = logging.Nop()
	}
	e := env{lookup: lookup, log: log}

	return Config{
		Provider:   transcribe.Provider(e.str(EnvProvider, string(transcribe.ProviderWhisper))),
		WhisperURL: e.str(EnvWhisperURL, DefaultWhisperURL),

		OpenAIKey:         e.str(EnvOpenAIKey, ""),
		GeminiKey:         e.str(EnvGeminiKey, ""),
		AnthropicKey:      e.str(EnvAnthropicKey, ""),
		GoogleCredentials: e.str(EnvGoogleCredentials, ""),

		WindowSize:  e.int(EnvWindowSize, caption.DefaultWindowSize),
		Preset:      e.str(EnvPreset, style.DefaultPreset),
		PresetsFile: e.str(EnvPresetsFile, ""),
		FontDir:     e.str(EnvFontDir, ""),

		Addr:           e.str(EnvAddr, DefaultAddr),
		AllowedOrigins: e.list(EnvAllowedOrigins, []string{"*"}),
		JWTSecret:      e.str(EnvJWTSecret, ""),
		TokenTTL:       e.duration(EnvTokenTTL, DefaultTokenTTL),

		ChunkDuration: e.duration(EnvChunkDuration, DefaultChunkDuration),
		Concurrency:   e.int(EnvConcurrency, DefaultConcurrency),
	}
}

func (c Config) Validate() error {
	if _, err := transcribe.ParseProvider(string(c.Provider)); err != nil {
		return err
	}
	if c.WindowSize < 1 {
		return fmt.Errorf("%w, got %d", caption.ErrInvalidWindowSize, c.WindowSize)
	}
	if c.Preset == "" {
		return fmt.Errorf("style preset is required")
	}
	if c.Addr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive, got %v", c.TokenTTL)
	}
	if c.ChunkDuration <= 0 {
		return fmt.Errorf("chunk duration must be positive, got %v", c.ChunkDuration)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}

// APIKey returns the key configured for a transcription or proofreading
// provider. Whisper and GCP do not use one.
func (c Config) APIKey(provider string) string {
	switch provider {
	case "openai":
		return c.OpenAIKey
	case "gemini":
		return c.GeminiKey
	case "anthropic":
		return c.AnthropicKey
	default:
		return ""
	}
}

// TranscribeOptions returns provider options for c.Provider.
func (c Config) TranscribeOptions(language string) transcribe.Options {
	return transcribe.Options{
		APIKey:          c.APIKey(string(c.Provider)),
		Language:        language,
		BaseURL:         c.WhisperURL,
		CredentialsFile: c.GoogleCredentials,
	}
}

type env struct {
	lookup func(string) (string, bool)
	log    *logging.Logger
}

func (e env) str(key, def string) string {
	v, ok := e.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func (e env) int(key string, def int) int {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		e.log.Warnw("Environment variable could not be parsed as int, using default",
			"env_var", key, "value", v, "default", def)
		return def
	}
	return i
}

func (e env) duration(key string, def time.Duration) time.Duration {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		e.log.Warnw("Environment variable could not be parsed as duration, using default",
			"env_var", key, "value", v, "default", def)
		return def
	}
	return d
}

// comma-separated list; blank entries are dropped
func (e env) list(key string, def []string) []string {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
