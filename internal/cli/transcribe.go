package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kara/internal/audio"
	"github.com/mgpai22/kara/internal/transcribe"
	"github.com/mgpai22/kara/internal/video"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [media_file]",
	Short: "Transcribe an audio or video file into a word-timed transcript",
	Long: `Transcribe the specified audio or video file into a transcript JSON file
with segment and word timings.

Video files have their audio extracted first. Audio longer than the chunk
duration is split and the chunks are transcribed in parallel, then merged
back onto the original timeline.

Providers:
  whisper  faster-whisper server (KARA_WHISPER_URL, default http://localhost:8000)
  openai   OpenAI Whisper API (OPENAI_API_KEY)
  gemini   Google Gemini (GEMINI_API_KEY)
  gcp      Google Cloud Speech-to-Text (GOOGLE_APPLICATION_CREDENTIALS)

Examples:
  kara transcribe video.mp4
  kara transcribe podcast.mp3 --provider openai -o podcast.json
  kara transcribe talk.mkv --provider gemini --chunk-duration 5m --concurrency 5`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	transcribeCmd.Flags().
		StringP("provider", "p", "", "Transcription provider (whisper, openai, gemini, gcp)")
	transcribeCmd.Flags().
		StringP("api-key", "k", "", "API key (or set OPENAI_API_KEY/GEMINI_API_KEY env var)")
	transcribeCmd.Flags().
		String("model", "", "Model to use (provider-specific, uses sensible defaults)")
	transcribeCmd.Flags().
		String("prompt", "", "Vocabulary or context hint passed to the provider")
	transcribeCmd.Flags().
		DurationP("chunk-duration", "d", 0, "Split audio longer than this (default from KARA_CHUNK_DURATION)")
	transcribeCmd.Flags().
		Int("concurrency", 0, "Number of parallel transcription workers (default from KARA_CONCURRENCY)")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", mediaPath)
	}
	if !audio.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(mediaPath))
	}

	providerStr, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	prompt, _ := cmd.Flags().GetString("prompt")
	chunkDuration, _ := cmd.Flags().GetDuration("chunk-duration")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	outputPath, _ := cmd.Flags().GetString("output")
	language, _ := cmd.Flags().GetString("language")

	provider := cfg.Provider
	if providerStr != "" {
		p, err := transcribe.ParseProvider(providerStr)
		if err != nil {
			return err
		}
		provider = p
	}
	if chunkDuration <= 0 {
		chunkDuration = cfg.ChunkDuration
	}
	if concurrency <= 0 {
		concurrency = cfg.Concurrency
	}
	if outputPath == "" {
		outputPath = replaceExt(mediaPath, ".json")
	}

	opts := cfg.TranscribeOptions(language)
	opts.Model = model
	opts.Prompt = prompt
	if apiKey != "" {
		opts.APIKey = apiKey
	}

	transcriber, err := transcribe.Factory(ctx, provider, opts)
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	logger.Infow("Starting transcription",
		"input", mediaPath,
		"output", outputPath,
		"provider", provider,
		"chunk_duration", chunkDuration.String(),
		"concurrency", concurrency,
	)

	tempDir, err := os.MkdirTemp("", "kara-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	audioPath := filepath.Join(tempDir, "audio.mp3")
	compressionOpts := audio.DefaultCompressionOptions()
	if audio.IsVideoFile(mediaPath) {
		logger.Infow("Extracting audio from video")
		if err := video.NewProcessor().ExtractAudio(ctx, mediaPath, audioPath, compressionOpts); err != nil {
			return fmt.Errorf("failed to extract audio: %w", err)
		}
	} else {
		logger.Infow("Compressing audio for transcription")
		if err := audio.CompressAudio(ctx, mediaPath, audioPath, compressionOpts); err != nil {
			return fmt.Errorf("failed to compress audio: %w", err)
		}
	}

	duration, err := audio.GetDurationContext(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("failed to get audio duration: %w", err)
	}
	logger.Infow("Audio prepared", "duration", duration.String())

	var result *transcribe.Result
	if duration <= chunkDuration {
		result, err = transcriber.Transcribe(ctx, audioPath)
	} else {
		result, err = transcribeInChunks(ctx, transcriber, audioPath, filepath.Join(tempDir, "chunks"), chunkDuration, concurrency)
	}
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	t := result.Transcript
	if t.Language == "" {
		t.Language = language
	}
	if err := saveTranscript(outputPath, t); err != nil {
		return err
	}

	logger.Infow("Transcription complete",
		"segments", len(t.Segments),
		"words", t.WordCount(),
	)
	if !t.HasWords() {
		logger.Warnw("Provider returned no word timings; captions will be segment-only")
	}

	absOutput, _ := filepath.Abs(outputPath)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Transcript saved: %s\n", absOutput)
	fmt.Fprintf(out, "  Segments: %d\n", len(t.Segments))
	fmt.Fprintf(out, "  Words: %d\n", t.WordCount())
	fmt.Fprintf(out, "  Duration: %s\n", result.Duration.String())
	return nil
}

func transcribeInChunks(
	ctx context.Context,
	transcriber transcribe.Transcriber,
	audioPath, chunkDir string,
	chunkDuration time.Duration,
	concurrency int,
) (*transcribe.Result, error) {
	logger.Infow("Splitting audio into chunks", "chunk_duration", chunkDuration.String())

	chunks, err := audio.ChunkAudio(ctx, audioPath, chunkDuration, chunkDir, concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to split audio: %w", err)
	}
	defer func() {
		if err := audio.CleanupChunks(chunks); err != nil {
			logger.Debugw("Failed to remove chunks", "error", err)
		}
	}()

	logger.Infow("Created audio chunks", "count", len(chunks))
	return transcribe.TranscribeChunks(ctx, transcriber, chunks, concurrency)
}
