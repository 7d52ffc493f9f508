package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var Version = "dev"

type globalOptions struct {
	addr  string
	token string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "kycctl",
		Short: "kycctl - operator tool for the KYC verification service",
		Long: `kycctl talks to a running kyc-verify API.

It mints inspector tokens, lists, fetches, clears and tails stored webhook
events, and sends signed test webhooks to the receiver.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.addr, "addr", envOr("KYC_ADDR", "http://localhost:8080"), "API base URL")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("KYC_TOKEN"), "inspector bearer token")

	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(eventsCmd(opts))
	rootCmd.AddCommand(webhookCmd(opts))

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
