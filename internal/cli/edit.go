package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit [transcript.json] [segment] [word] [text]",
	Short: "Correct the text of one word",
	Long: `Replace the text of one word in a transcript. Segment and word are
zero-based indices. The word keeps its timing; the segment text and the
full transcript text are rebuilt from the words.

The transcript is rewritten in place unless --output is given.

Examples:
  kara edit talk.json 3 5 Kubernetes
  kara edit talk.json 0 0 "Hello," -o talk.fixed.json`,
	Args: cobra.ExactArgs(4),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	transcriptPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = transcriptPath
	}

	segment, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid segment index %q", args[1])
	}
	word, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid word index %q", args[2])
	}

	t, err := loadTranscript(transcriptPath)
	if err != nil {
		return err
	}
	old, _ := t.Word(segment, word)
	if err := t.EditWord(segment, word, args[3]); err != nil {
		return err
	}
	if err := saveTranscript(outputPath, t); err != nil {
		return err
	}

	logger.Debugw("Edited word", "segment", segment, "word", word, "old", old.Text)
	fmt.Fprintf(cmd.OutOrStdout(), "Segment %d: %s\n", segment, t.Segments[segment].Text)
	return nil
}
