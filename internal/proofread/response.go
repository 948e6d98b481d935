package proofread

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"
)

// splits items into batches and runs fn over them with up to concurrency
// requests in flight. Results keep batch order; the first failure cancels
// the rest.
func runBatches(
	ctx context.Context,
	items []Item,
	batchSize int,
	concurrency int,
	fn func(ctx context.Context, batch []Item) ([]Correction, error),
) ([]Correction, error) {
	if len(items) == 0 {
		return []Correction{}, nil
	}

	var batches [][]Item
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		batches = append(batches, items[i:end])
	}

	results := make([][]Correction, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, batch := range batches {
		g.Go(func() error {
			corrections, err := fn(gctx, batch)
			if err != nil {
				return fmt.Errorf("batch %d failed: %w", i, err)
			}
			results[i] = corrections
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Correction
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// parses an LLM answer and checks it covers exactly the requested items
func parseCorrections(responseText string, items []Item) ([]Correction, error) {
	responseText = cleanJSONResponse(responseText)

	corrections, err := extractCorrections(responseText)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(responseText, 200),
		)
	}

	if len(corrections) != len(items) {
		return nil, fmt.Errorf("expected %d results, got %d", len(items), len(corrections))
	}

	want := make(map[int]bool, len(items))
	for _, it := range items {
		want[it.Index] = true
	}
	for _, c := range corrections {
		if !want[c.Index] {
			return nil, fmt.Errorf("unexpected index %d in response", c.Index)
		}
	}
	return corrections, nil
}

var jsonBlockRegex = regexp.MustCompile("```(?:json)?\\s*")

func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// fixes invalid JSON escape sequences like \N by escaping the backslash, so
// the literal sequence survives decoding
func fixInvalidEscapes(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	i := 0
	for i < len(s) {
		if i < len(s)-1 && s[i] == '\\' {
			next := s[i+1]
			switch next {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				result.WriteByte(s[i])
				result.WriteByte(next)
			default:
				result.WriteString("\\\\")
				result.WriteByte(next)
			}
			i += 2
		} else {
			result.WriteByte(s[i])
			i++
		}
	}
	return result.String()
}

func extractCorrections(text string) ([]Correction, error) {
	text = fixInvalidEscapes(text)

	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		if corrections, ok := tryExtractCorrections(raw); ok {
			return corrections, nil
		}
	}
	return nil, fmt.Errorf("no valid correction JSON found in response")
}

func tryExtractCorrections(raw json.RawMessage) ([]Correction, bool) {
	var corrections []Correction
	if err := json.Unmarshal(raw, &corrections); err == nil && validateCorrections(corrections) {
		return corrections, true
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	for _, key := range []string{"results", "corrections", "data", "items"} {
		if field, ok := wrapper[key]; ok {
			var fieldCorrections []Correction
			if err := json.Unmarshal(field, &fieldCorrections); err == nil &&
				validateCorrections(fieldCorrections) {
				return fieldCorrections, true
			}
		}
	}
	for _, field := range wrapper {
		var fieldCorrections []Correction
		if err := json.Unmarshal(field, &fieldCorrections); err == nil &&
			validateCorrections(fieldCorrections) {
			return fieldCorrections, true
		}
	}
	return nil, false
}

// true when at least one correction carries words
func validateCorrections(corrections []Correction) bool {
	for _, c := range corrections {
		if len(c.Words) > 0 {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
