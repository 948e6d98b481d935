package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kara/internal/caption"
	"github.com/mgpai22/kara/internal/player"
	"github.com/mgpai22/kara/internal/server"
	"github.com/mgpai22/kara/internal/transcribe"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the caption engine to a browser player",
	Long: `Start the HTTP API. A browser page uploads media (or PUTs a transcript),
streams its video element's clock over /api/ws and draws the frames it gets
back. Set KARA_JWT_SECRET to require tokens (see "kara token").

Examples:
  kara serve
  kara serve --addr :9000 --transcript talk.json
  kara serve --provider openai --preset neon`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().
		String("addr", "", "Listen address (default from KARA_ADDR)")
	serveCmd.Flags().
		StringP("provider", "p", "", "Transcription provider for uploads (default from KARA_PROVIDER)")
	serveCmd.Flags().
		IntP("window", "w", 0, "Words per caption window (default from KARA_WINDOW_SIZE)")
	serveCmd.Flags().
		String("preset", "", "Style preset (default from KARA_PRESET)")
	serveCmd.Flags().
		String("transcript", "", "Transcript to load at startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr, _ := cmd.Flags().GetString("addr")
	providerStr, _ := cmd.Flags().GetString("provider")
	window, _ := cmd.Flags().GetInt("window")
	preset, _ := cmd.Flags().GetString("preset")
	transcriptPath, _ := cmd.Flags().GetString("transcript")
	language, _ := cmd.Flags().GetString("language")

	if addr == "" {
		addr = cfg.Addr
	}
	provider := cfg.Provider
	if providerStr != "" {
		p, err := transcribe.ParseProvider(providerStr)
		if err != nil {
			return err
		}
		provider = p
	}

	registry, err := styles()
	if err != nil {
		return err
	}
	if preset == "" {
		preset = cfg.Preset
	}
	st, err := registry.Get(preset)
	if err != nil {
		return err
	}
	session, err := caption.NewSession(windowSize(window), st)
	if err != nil {
		return err
	}

	if transcriptPath != "" {
		t, err := loadTranscript(transcriptPath)
		if err != nil {
			return err
		}
		if err := session.Load(t); err != nil {
			return err
		}
		logger.Infow("Loaded transcript", "path", transcriptPath, "segments", len(t.Segments))
	}

	// uploads are disabled rather than fatal when the provider is unusable
	transcriber, err := transcribe.Factory(ctx, provider, cfg.TranscribeOptions(language))
	if err != nil {
		logger.Warnw("Uploads disabled", "provider", provider, "error", err)
		transcriber = nil
	}

	srv := server.New(logger, session, registry, transcriber,
		player.NewRenderer(1280, 720, cfg.FontDir),
		server.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			JWTSecret:      cfg.JWTSecret,
		})
	return srv.Run(ctx, addr)
}
