package proofread

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Proofreader using OpenAI Chat Completions
type OpenAIProofreader struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAIProofreader(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAIProofreader, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "gpt-5-mini"
	}

	return &OpenAIProofreader{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (p *OpenAIProofreader) Proofread(ctx context.Context, items []Item) ([]Correction, error) {
	return runBatches(
		ctx,
		items,
		p.options.batchSize(),
		p.options.concurrency(),
		p.proofreadBatch,
	)
}

func (p *OpenAIProofreader) proofreadBatch(ctx context.Context, items []Item) ([]Correction, error) {
	completion, err := p.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(BuildPrompt(p.options, items)),
			},
			Model: p.model,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("proofreading failed: %w", err)
	}
	if completion == nil || len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	responseText := completion.Choices[0].Message.Content
	if responseText == "" {
		return nil, fmt.Errorf("no text in OpenAI response")
	}

	return parseCorrections(responseText, items)
}
