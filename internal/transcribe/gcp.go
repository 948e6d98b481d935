package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mgpai22/kara/internal/transcript"
)

// GCPTranscriber uses Google Cloud Speech-to-Text long-running recognition
// with word time offsets. Audio is sent inline, so inputs should be the
// compressed mono audio produced by audio.CompressAudio.
type GCPTranscriber struct {
	client     *speech.Client
	language   string
	model      string
	sampleRate int
	maxRetries int
}

func NewGCPTranscriber(ctx context.Context, opts Options) (*GCPTranscriber, error) {
	creds := strings.TrimSpace(opts.CredentialsFile)
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var (
		client *speech.Client
		err    error
	)
	if creds != "" {
		client, err = speech.NewClient(ctx, option.WithCredentialsFile(creds))
	} else {
		client, err = speech.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	language := opts.Language
	if language == "" {
		language = "en-US"
	}

	return &GCPTranscriber{
		client:     client,
		language:   language,
		model:      opts.Model,
		sampleRate: 16000,
		maxRetries: 4,
	}, nil
}

func (t *GCPTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	content, err := os.ReadFile(audioPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("audio file not found: %s", audioPath)
		}
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	req := &speechpb.LongRunningRecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			LanguageCode:               t.language,
			Model:                      t.model,
			EnableAutomaticPunctuation: true,
			EnableWordTimeOffsets:      true,
			EnableWordConfidence:       true,
			Encoding:                   inferSpeechEncoding(audioPath),
			SampleRateHertz:            int32(t.sampleRate),
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: content},
		},
	}

	resp, err := retryRecognize(ctx, t.maxRetries, 750*time.Millisecond, func() (*speechpb.LongRunningRecognizeResponse, error) {
		op, err := t.client.LongRunningRecognize(ctx, req)
		if err != nil {
			return nil, err
		}
		return op.Wait(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("speech recognition failed: %w", err)
	}

	tr := parseSpeechResults(t.language, resp.GetResults())
	return &Result{Transcript: tr, Duration: mediaDuration(ctx, audioPath, tr)}, nil
}

func (t *GCPTranscriber) Close() error {
	return t.client.Close()
}

func inferSpeechEncoding(path string) speechpb.RecognitionConfig_AudioEncoding {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return speechpb.RecognitionConfig_LINEAR16
	case ".flac":
		return speechpb.RecognitionConfig_FLAC
	case ".mp3":
		return speechpb.RecognitionConfig_MP3
	case ".ogg", ".opus":
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

// parseSpeechResults maps each recognition result to one segment. A result
// without word offsets spans from the previous result's end to its own.
func parseSpeechResults(language string, results []*speechpb.SpeechRecognitionResult) *transcript.Transcript {
	var (
		segments []transcript.Segment
		prevEnd  time.Duration
	)
	for _, r := range results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		alt := r.Alternatives[0]
		if strings.TrimSpace(alt.Transcript) == "" {
			continue
		}
		if r.LanguageCode != "" {
			language = r.LanguageCode
		}

		seg := transcript.Segment{
			StartTime: prevEnd,
			EndTime:   r.GetResultEndTime().AsDuration(),
			Text:      alt.Transcript,
		}
		for _, w := range alt.Words {
			if w == nil || strings.TrimSpace(w.Word) == "" {
				continue
			}
			seg.Words = append(seg.Words, transcript.Word{
				Text:       w.Word,
				StartTime:  w.GetStartTime().AsDuration(),
				EndTime:    w.GetEndTime().AsDuration(),
				Confidence: float64(w.Confidence),
			})
		}
		if n := len(seg.Words); n > 0 {
			seg.StartTime = seg.Words[0].StartTime
			seg.EndTime = max(seg.EndTime, seg.Words[n-1].EndTime)
		}
		if seg.EndTime > prevEnd {
			prevEnd = seg.EndTime
		}
		segments = append(segments, seg)
	}
	return transcript.New(language, segments)
}

// retries fn with exponential backoff while the error is transient
func retryRecognize(
	ctx context.Context,
	maxRetries int,
	backoff time.Duration,
	fn func() (*speechpb.LongRunningRecognizeResponse, error),
) (*speechpb.LongRunningRecognizeResponse, error) {
	var last error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		last = err

		switch status.Code(err) {
		case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded:
		default:
			return nil, err
		}
		if attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, 10*time.Second)
	}
	return nil, last
}
