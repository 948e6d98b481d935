package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kara/internal/caption"
	"github.com/mgpai22/kara/internal/player"
)

var playCmd = &cobra.Command{
	Use:   "play [transcript]",
	Short: "Play karaoke captions in the terminal",
	Long: `Play a transcript's karaoke captions in the terminal against a simulated
media clock. On a terminal the caption line is redrawn in place with the
active word in the preset's highlight color.

The transcript may be a transcript JSON file or an SRT/VTT/ASS subtitle file
(segment-only, without word highlighting).

With --frames-dir every changed frame is also rendered to a PNG.

Examples:
  kara play talk.json
  kara play talk.json --start 1m30s --rate 1.5 --window 4
  kara play talk.json --preset neon --frames-dir frames/`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().
		IntP("window", "w", 0, "Words per caption window (default from KARA_WINDOW_SIZE)")
	playCmd.Flags().
		String("preset", "", "Style preset (default from KARA_PRESET)")
	playCmd.Flags().
		Duration("start", 0, "Start playback at this position")
	playCmd.Flags().
		Float64("rate", 1, "Playback rate")
	playCmd.Flags().
		Duration("interval", player.DefaultInterval, "Clock tick interval")
	playCmd.Flags().
		String("frames-dir", "", "Also render each frame as PNG into this directory")
	playCmd.Flags().
		Int("width", 1280, "Rendered frame width")
	playCmd.Flags().
		Int("height", 720, "Rendered frame height")
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	window, _ := cmd.Flags().GetInt("window")
	preset, _ := cmd.Flags().GetString("preset")
	start, _ := cmd.Flags().GetDuration("start")
	rate, _ := cmd.Flags().GetFloat64("rate")
	interval, _ := cmd.Flags().GetDuration("interval")
	framesDir, _ := cmd.Flags().GetString("frames-dir")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")

	t, err := loadTranscript(args[0])
	if err != nil {
		return err
	}
	st, err := resolveStyle(preset)
	if err != nil {
		return err
	}
	session, err := caption.NewSession(windowSize(window), st)
	if err != nil {
		return err
	}
	if err := session.Load(t); err != nil {
		return err
	}

	var sink player.Sink = player.NewTerminalSink(os.Stdout)
	if framesDir != "" {
		pngSink, err := player.NewPNGSink(framesDir, player.NewRenderer(width, height, cfg.FontDir))
		if err != nil {
			return err
		}
		terminal := sink
		sink = player.SinkFunc(func(f caption.Frame) error {
			if err := pngSink.Present(f); err != nil {
				return err
			}
			return terminal.Present(f)
		})
		defer func() {
			logger.Infow("Rendered frames", "dir", framesDir, "count", pngSink.Count())
		}()
	}

	clock := player.NewMediaClock()
	if err := clock.SetRate(rate); err != nil {
		return err
	}
	clock.Seek(start)
	clock.Play()

	logger.Debugw("Starting playback",
		"duration", t.Duration().String(),
		"window", session.WindowSize(),
		"preset", st.Name,
		"words", t.HasWords(),
	)

	err = player.Run(ctx, clock, session, sink, player.Options{
		Interval: interval,
		End:      t.Duration() + time.Millisecond,
		Logger:   logger,
	})
	fmt.Fprintln(cmd.OutOrStdout())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
