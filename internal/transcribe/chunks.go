package transcribe

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mgpai22/kara/internal/audio"
	"github.com/mgpai22/kara/internal/transcript"
)

// TranscribeChunks transcribes chunks in parallel with t, shifts each
// chunk's segments and words by the chunk's start offset and merges them in
// chunk order. The first failure cancels the remaining chunks.
func TranscribeChunks(
	ctx context.Context,
	t Transcriber,
	chunks []audio.ChunkInfo,
	concurrency int,
) (*Result, error) {
	if len(chunks) == 0 {
		return &Result{Transcript: transcript.New("", nil)}, nil
	}
	if concurrency <= 0 {
		concurrency = 3
	}

	parts := make([]*transcript.Transcript, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			result, err := t.Transcribe(gctx, chunk.Path)
			if err != nil {
				return fmt.Errorf("chunk %d failed: %w", chunk.Index, err)
			}
			part := result.Transcript.Clone()
			part.Shift(chunk.StartTime)
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	language := ""
	for _, p := range parts {
		if p.Language != "" {
			language = p.Language
			break
		}
	}

	return &Result{
		Transcript: transcript.Merge(language, parts...),
		Duration:   chunks[len(chunks)-1].EndTime,
	}, nil
}
