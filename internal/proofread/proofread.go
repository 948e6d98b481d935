// Package proofread asks an LLM to correct misheard words in a transcript.
// Corrections are word-for-word replacements applied through
// transcript.EditWord, so word timing is never changed.
package proofread

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// one segment's words sent for proofreading
type Item struct {
	Index int      `json:"index"`
	Words []string `json:"words"`
}

// corrected words for the segment at Index
type Correction struct {
	Index int      `json:"index"`
	Words []string `json:"words"`
}

// interface for transcript proofreading
type Proofreader interface {
	Proofread(ctx context.Context, items []Item) ([]Correction, error)
}

// proofreading service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

var Providers = []Provider{ProviderGemini, ProviderOpenAI, ProviderAnthropic}

type Options struct {
	Language    string
	Model       string
	Prompt      string
	BatchSize   int // items per API request (default 50)
	Concurrency int // parallel requests (default 3)
}

const (
	DefaultBatchSize   = 50
	DefaultConcurrency = 3
)

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

func (o Options) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return DefaultConcurrency
}

// creates Proofreader based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Proofreader, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiProofreader(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAIProofreader(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicProofreader(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported proofreading provider: %s", provider)
	}
}

func ParseProvider(s string) (Provider, error) {
	for _, p := range Providers {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unsupported provider %q: use gemini, openai, or anthropic", s)
}

// BuildPrompt creates the proofreading prompt for LLM providers
func BuildPrompt(opts Options, items []Item) string {
	var sb strings.Builder

	if opts.Language != "" {
		sb.WriteString(fmt.Sprintf(
			"Proofread the following %s speech transcript. Each item is one segment split into words.\n\n",
			opts.Language,
		))
	} else {
		sb.WriteString("Proofread the following speech transcript. Each item is one segment split into words.\n\n")
	}

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Fix misheard words, spelling and capitalization only.\n")
	sb.WriteString("2. Never merge, split, add or remove words: each 'words' array must keep its exact length.\n")
	sb.WriteString("3. Keep punctuation attached to the word it follows.\n")
	sb.WriteString("4. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("5. Each object must have 'index' and 'words' fields.\n")
	sb.WriteString("6. The 'index' values must match the input indices exactly.\n")
	sb.WriteString("7. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		sb.WriteString(fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt))
	}

	sb.WriteString("Input JSON:\n")
	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)
	sb.WriteString("\n\nOutput the corrected JSON array only:")

	return sb.String()
}
