package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kara/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token for the browser player",
	Long: `Sign a token with KARA_JWT_SECRET for use against "kara serve".
Pass it as "Authorization: Bearer <token>" or, for the websocket,
as the token query parameter.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().String("subject", "viewer", "Token subject")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default from KARA_TOKEN_TTL)")
}

func runToken(cmd *cobra.Command, args []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	ttl, _ := cmd.Flags().GetDuration("ttl")
	if ttl <= 0 {
		ttl = cfg.TokenTTL
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("KARA_JWT_SECRET is not set")
	}

	token, err := server.IssueToken(cfg.JWTSecret, subject, ttl)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
