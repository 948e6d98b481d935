package proofread

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// implements Proofreader using Google Gemini
type GeminiProofreader struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiProofreader(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiProofreader, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiProofreader{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (p *GeminiProofreader) Proofread(ctx context.Context, items []Item) ([]Correction, error) {
	return runBatches(
		ctx,
		items,
		p.options.batchSize(),
		p.options.concurrency(),
		p.proofreadBatch,
	)
}

func (p *GeminiProofreader) proofreadBatch(ctx context.Context, items []Item) ([]Correction, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts(
			[]*genai.Part{genai.NewPartFromText(BuildPrompt(p.options, items))},
			genai.RoleUser,
		),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("proofreading failed: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			responseText += part.Text
		}
		if responseText != "" {
			break
		}
	}
	if responseText == "" {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	return parseCorrections(responseText, items)
}
