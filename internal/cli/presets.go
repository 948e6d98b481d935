package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mgpai22/kara/internal/style"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List caption style presets",
	Long: `List the built-in style presets and any loaded from KARA_PRESETS_FILE.

With --yaml the full definitions are printed in the presets file format,
ready to copy into your own file and adjust.`,
	Args: cobra.NoArgs,
	RunE: runPresets,
}

func init() {
	rootCmd.AddCommand(presetsCmd)

	presetsCmd.Flags().Bool("yaml", false, "Print full preset definitions as YAML")
}

func runPresets(cmd *cobra.Command, args []string) error {
	asYAML, _ := cmd.Flags().GetBool("yaml")

	reg, err := styles()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	presets := make([]style.Style, 0)
	for _, name := range reg.Names() {
		st, err := reg.Get(name)
		if err != nil {
			return err
		}
		presets = append(presets, st)
	}

	if asYAML {
		data, err := yaml.Marshal(map[string][]style.Style{"presets": presets})
		if err != nil {
			return fmt.Errorf("failed to encode presets: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	for _, st := range presets {
		marker := " "
		if st.Name == cfg.Preset {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-10s %s %dpx, text %s, highlight %s\n",
			marker, st.Name, st.FontFamily, st.FontSize, st.TextColor, st.HighlightColor)
	}
	return nil
}
