package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/kyc-verify/internal/auth"
)

func tokenCmd() *cobra.Command {
	var (
		secret  string
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an inspector token",
		Long: `Mint a bearer token for the webhook inspector API.

The secret must match the server's INSPECTOR_JWT_SECRET.

Examples:
  kycctl token --subject alice@example.com --ttl 1h
  export KYC_TOKEN=$(kycctl token)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or INSPECTOR_JWT_SECRET is required")
			}
			token, err := auth.GenerateToken(subject, secret, ttl)
			if err != nil {
				return fmt.Errorf("mint token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("INSPECTOR_JWT_SECRET"), "signing secret")
	cmd.Flags().StringVar(&subject, "subject", "operator", "operator identity recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")

	return cmd
}
