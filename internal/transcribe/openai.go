package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mgpai22/kara/internal/transcript"
)

// implements Transcriber using the OpenAI audio API
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

type verboseWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type verboseSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// verbose_json response with word and segment granularities
type verboseResponse struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Segments []verboseSegment `json:"segments"`
	Words    []verboseWord    `json:"words"`
}

func NewOpenAITranscriber(ctx context.Context, opts Options) (*OpenAITranscriber, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client:  openai.NewClient(option.WithAPIKey(opts.APIKey)),
		model:   model,
		options: opts,
	}, nil
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("audio file not found: %s", audioPath)
		}
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"word", "segment"},
	}
	if t.options.Language != "" {
		params.Language = openai.String(t.options.Language)
	}
	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	duration := probeOrZero(ctx, audioPath)
	tr, err := parseVerboseJSON(resp.RawJSON(), duration)
	if err != nil {
		return nil, err
	}
	if tr.Language == "" {
		tr.Language = t.options.Language
	}
	if duration == 0 {
		duration = tr.Duration()
	}
	return &Result{Transcript: tr, Duration: duration}, nil
}

func probeOrZero(ctx context.Context, path string) time.Duration {
	d, err := probeDuration(ctx, path)
	if err != nil {
		return 0
	}
	return d
}

// parseVerboseJSON builds a transcript from a verbose_json body. The API
// returns words at the top level, so each word is assigned to the last
// segment starting at or before it.
func parseVerboseJSON(rawJSON string, fallbackDuration time.Duration) (*transcript.Transcript, error) {
	if rawJSON == "" {
		return nil, fmt.Errorf("empty response")
	}

	var resp verboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	words := make([]transcript.Word, 0, len(resp.Words))
	for _, w := range resp.Words {
		if strings.TrimSpace(w.Word) == "" {
			continue
		}
		words = append(words, transcript.Word{
			Text:      w.Word,
			StartTime: seconds(w.Start),
			EndTime:   seconds(w.End),
		})
	}

	var segments []transcript.Segment
	for _, s := range resp.Segments {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		segments = append(segments, transcript.Segment{
			StartTime: seconds(s.Start),
			EndTime:   seconds(s.End),
			Text:      s.Text,
		})
	}

	switch {
	case len(segments) > 0:
		assignWords(segments, words)
	case len(words) > 0:
		segments = []transcript.Segment{{
			StartTime: words[0].StartTime,
			EndTime:   words[len(words)-1].EndTime,
			Words:     words,
		}}
	case strings.TrimSpace(resp.Text) != "":
		end := fallbackDuration
		if resp.Duration > 0 {
			end = seconds(resp.Duration)
		}
		segments = []transcript.Segment{{StartTime: 0, EndTime: end, Text: resp.Text}}
	default:
		return nil, fmt.Errorf("no segments or text in response")
	}

	return transcript.New(resp.Language, segments), nil
}

func assignWords(segments []transcript.Segment, words []transcript.Word) {
	for _, w := range words {
		// first segment starting after the word, minus one
		i := sort.Search(len(segments), func(i int) bool {
			return segments[i].StartTime > w.StartTime
		}) - 1
		if i < 0 {
			i = 0
		}
		segments[i].Words = append(segments[i].Words, w)
	}
}
