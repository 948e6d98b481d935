package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kara/internal/proofread"
)

var proofreadCmd = &cobra.Command{
	Use:   "proofread [transcript.json]",
	Short: "Correct misheard words in a transcript using AI",
	Long: `Send a transcript to an LLM and apply its word corrections.

Only word text changes: every segment keeps its word count and every word
keeps its timing, so the corrected transcript plays back exactly like the
original. Corrections that would change a segment's word count are skipped.

Examples:
  kara proofread talk.json
  kara proofread talk.json --provider anthropic -o talk.fixed.json
  kara proofread talk.json --provider openai --prompt "Speaker names: Ana, Rafiq"`,
	Args: cobra.ExactArgs(1),
	RunE: runProofread,
}

func init() {
	rootCmd.AddCommand(proofreadCmd)

	proofreadCmd.Flags().
		String("provider", "gemini", "Proofreading provider (gemini, openai, anthropic)")
	proofreadCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY env var)")
	proofreadCmd.Flags().
		String("model", "", "Model to use (provider-specific, uses sensible defaults)")
	proofreadCmd.Flags().
		String("prompt", "", "Additional instructions, e.g. names or jargon")
	proofreadCmd.Flags().
		Int("concurrency", proofread.DefaultConcurrency, "Number of parallel requests")
	proofreadCmd.Flags().
		Int("batch-size", proofread.DefaultBatchSize, "Number of segments per API request")
}

func runProofread(cmd *cobra.Command, args []string) error {
	transcriptPath := args[0]
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	providerStr, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	prompt, _ := cmd.Flags().GetString("prompt")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	outputPath, _ := cmd.Flags().GetString("output")
	language, _ := cmd.Flags().GetString("language")

	provider, err := proofread.ParseProvider(providerStr)
	if err != nil {
		return err
	}
	if apiKey == "" {
		apiKey = cfg.APIKey(string(provider))
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	t, err := loadTranscript(transcriptPath)
	if err != nil {
		return err
	}
	if !t.HasWords() {
		return fmt.Errorf("transcript has no word timings to proofread")
	}
	if language == "" {
		language = t.Language
	}
	if outputPath == "" {
		outputPath = replaceExt(transcriptPath, ".proofread.json")
	}

	opts := proofread.Options{
		Language:    language,
		Model:       model,
		Prompt:      prompt,
		BatchSize:   batchSize,
		Concurrency: concurrency,
	}
	proofreader, err := proofread.Factory(ctx, provider, apiKey, opts)
	if err != nil {
		return fmt.Errorf("failed to create proofreader: %w", err)
	}

	logger.Infow("Starting proofreading",
		"input", transcriptPath,
		"output", outputPath,
		"provider", provider,
		"segments", len(t.Segments),
		"words", t.WordCount(),
	)

	report, err := proofread.Run(ctx, proofreader, t)
	if err != nil {
		return err
	}

	logger.Infow("Proofreading complete",
		"applied", report.Applied,
		"unchanged", report.Unchanged,
		"rejected", report.Rejected,
		"skipped", report.Skipped,
	)
	if err := saveTranscript(outputPath, t); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Proofread transcript saved: %s\n", outputPath)
	fmt.Fprintf(out, "  Corrected words: %d\n", report.Applied)
	fmt.Fprintf(out, "  Skipped segments: %d\n", report.Skipped)
	return nil
}
