package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kara/internal/subtitle"
)

var exportCmd = &cobra.Command{
	Use:   "export [transcript]",
	Short: "Export a transcript as subtitles",
	Long: `Export a transcript as SRT, VTT or ASS subtitles.

The karaoke format writes an ASS file with one cue per word: the caption
window around the word, with the word in the preset's highlight style.
--karaoke produces the same cues in SRT or VTT with the active word in <b>.

Examples:
  kara export talk.json
  kara export talk.json -f karaoke --preset boxed --window 4
  kara export talk.json -f vtt --karaoke -o talk.karaoke.vtt`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().
		StringP("format", "f", "srt", "Output subtitle format (srt, vtt, ass, karaoke)")
	exportCmd.Flags().
		Bool("karaoke", false, "Write one highlighted cue per word")
	exportCmd.Flags().
		IntP("window", "w", 0, "Words per karaoke cue (default from KARA_WINDOW_SIZE)")
	exportCmd.Flags().
		String("preset", "", "Style preset for ASS output (default from KARA_PRESET)")
}

func runExport(cmd *cobra.Command, args []string) error {
	transcriptPath := args[0]

	formatStr, _ := cmd.Flags().GetString("format")
	karaoke, _ := cmd.Flags().GetBool("karaoke")
	window, _ := cmd.Flags().GetInt("window")
	preset, _ := cmd.Flags().GetString("preset")
	outputPath, _ := cmd.Flags().GetString("output")

	format, err := subtitle.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	st, err := resolveStyle(preset)
	if err != nil {
		return err
	}
	t, err := loadTranscript(transcriptPath)
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = replaceExt(transcriptPath, subtitle.GetExtensionForFormat(format))
	}
	if outputPath == transcriptPath {
		return fmt.Errorf("output would overwrite the input %s: use --output", transcriptPath)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	opts := subtitle.ExportOptions{
		Karaoke:    karaoke,
		WindowSize: windowSize(window),
		Style:      st,
	}
	if err := subtitle.Export(t, format, opts, f); err != nil {
		return err
	}

	logger.Infow("Exported subtitles",
		"output", outputPath,
		"format", format,
		"karaoke", karaoke || format == subtitle.FormatKaraoke,
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Subtitles written: %s\n", outputPath)
	return nil
}
