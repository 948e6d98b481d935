package proofread

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// implements Proofreader using Anthropic Claude
type AnthropicProofreader struct {
	client  anthropic.Client
	model   anthropic.Model
	options Options
}

func NewAnthropicProofreader(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*AnthropicProofreader, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.ModelClaudeHaiku4_5
	}

	return &AnthropicProofreader{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (p *AnthropicProofreader) Proofread(ctx context.Context, items []Item) ([]Correction, error) {
	return runBatches(
		ctx,
		items,
		p.options.batchSize(),
		p.options.concurrency(),
		p.proofreadBatch,
	)
}

func (p *AnthropicProofreader) proofreadBatch(ctx context.Context, items []Item) ([]Correction, error) {
	message, err := p.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:     p.model,
			MaxTokens: 4096,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(BuildPrompt(p.options, items)),
				),
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("proofreading failed: %w", err)
	}
	if message == nil || len(message.Content) == 0 {
		return nil, fmt.Errorf("empty response from Anthropic")
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}
	if responseText == "" {
		return nil, fmt.Errorf("no text in Anthropic response")
	}

	return parseCorrections(responseText, items)
}
