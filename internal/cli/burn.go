package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kara/internal/audio"
	"github.com/mgpai22/kara/internal/subtitle"
	"github.com/mgpai22/kara/internal/video"
)

var burnCmd = &cobra.Command{
	Use:   "burn [video_file] [transcript]",
	Short: "Burn karaoke captions into a video",
	Long: `Render the transcript's karaoke captions onto the video frames with
ffmpeg. The video is re-encoded (libx264 by default); audio is copied.

Examples:
  kara burn talk.mp4 talk.json
  kara burn talk.mp4 talk.json --preset bold --window 4 -o talk.karaoke.mp4`,
	Args: cobra.ExactArgs(2),
	RunE: runBurn,
}

func init() {
	rootCmd.AddCommand(burnCmd)

	burnCmd.Flags().
		IntP("window", "w", 0, "Words per caption (default from KARA_WINDOW_SIZE)")
	burnCmd.Flags().
		String("preset", "", "Style preset (default from KARA_PRESET)")
	burnCmd.Flags().
		Int("crf", video.DefaultBurnOptions().CRF, "x264 constant rate factor (lower is better quality)")
	burnCmd.Flags().
		String("x264-preset", video.DefaultBurnOptions().Preset, "x264 speed preset")
	burnCmd.Flags().
		Bool("keep-ass", false, "Keep the generated ASS file next to the output")
}

func runBurn(cmd *cobra.Command, args []string) error {
	videoPath, transcriptPath := args[0], args[1]
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	window, _ := cmd.Flags().GetInt("window")
	preset, _ := cmd.Flags().GetString("preset")
	crf, _ := cmd.Flags().GetInt("crf")
	x264Preset, _ := cmd.Flags().GetString("x264-preset")
	keepASS, _ := cmd.Flags().GetBool("keep-ass")
	outputPath, _ := cmd.Flags().GetString("output")

	if !audio.IsVideoFile(videoPath) {
		return fmt.Errorf("unsupported file type: %s (expected video file)", filepath.Ext(videoPath))
	}
	if outputPath == "" {
		outputPath = replaceExt(videoPath, ".karaoke"+filepath.Ext(videoPath))
	}

	t, err := loadTranscript(transcriptPath)
	if err != nil {
		return err
	}
	st, err := resolveStyle(preset)
	if err != nil {
		return err
	}

	assPath := replaceExt(outputPath, ".ass")
	if !keepASS {
		tempDir, err := os.MkdirTemp("", "kara-*")
		if err != nil {
			return fmt.Errorf("failed to create temp directory: %w", err)
		}
		defer os.RemoveAll(tempDir)
		assPath = filepath.Join(tempDir, "captions.ass")
	}

	f, err := os.Create(assPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	opts := subtitle.ExportOptions{WindowSize: windowSize(window), Style: st}
	err = subtitle.Export(t, subtitle.FormatKaraoke, opts, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	logger.Infow("Burning captions",
		"video", videoPath,
		"output", outputPath,
		"preset", st.Name,
		"window", opts.WindowSize,
	)

	burnOpts := video.DefaultBurnOptions()
	burnOpts.CRF = crf
	burnOpts.Preset = x264Preset
	if err := video.NewProcessor().BurnCaptions(ctx, videoPath, assPath, outputPath, burnOpts); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Video written: %s\n", absOutput)
	return nil
}
