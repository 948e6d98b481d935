package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kara/internal/config"
	"github.com/mgpai22/kara/internal/logging"
)

var (
	verbose bool
	envFile string
	logger  *logging.Logger
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "kara",
	Short: "Karaoke-style captions synchronized to media playback",
	Long: `Kara transcribes audio and video into word-timed transcripts and
plays them back as karaoke captions: a short window of words around the
word being spoken, with that word highlighted.

Transcripts can be corrected word by word, exported as SRT, VTT or ASS
karaoke subtitles, burned into video, or served to a browser player.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		loaded, err := config.Load(logger, envFile)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = loaded
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&envFile, "env-file", ".env", "Environment file to load settings from")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Language code (e.g., en, es, fr)")
}
