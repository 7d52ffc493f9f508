package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/josh-kwaku/kyc-verify/internal/domain"
	"github.com/josh-kwaku/kyc-verify/internal/signature"
)

func webhookCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Exercise the webhook receiver",
	}
	cmd.AddCommand(webhookSendCmd(opts))
	return cmd
}

func webhookSendCmd(opts *globalOptions) *cobra.Command {
	var (
		eventType      string
		status         string
		verificationID string
		secret         string
		data           string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a test webhook to the receiver",
		Long: `Send a provider-style webhook to the receiver, signed with the shared
secret when one is given.

Examples:
  kycctl webhook send --status approved
  kycctl webhook send --type verification.declined --status declined
  kycctl webhook send --data '{"anything":"goes"}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			body := []byte(data)
			if data == "" {
				if verificationID == "" {
					verificationID = uuid.NewString()
				}
				payload := map[string]any{
					"type": eventType,
					"verification": map[string]string{
						"id":     verificationID,
						"status": status,
					},
				}
				var err error
				if body, err = json.Marshal(payload); err != nil {
					return fmt.Errorf("encode payload: %w", err)
				}
			}

			c := newAPIClient(opts)
			req, err := c.newRequest(cmd.Context(), http.MethodPost, "/api/veriff/webhook", body, false)
			if err != nil {
				return err
			}
			if secret != "" {
				req.Header.Set(signature.Header, signature.Sign(body, secret))
			}

			var ack struct {
				Received bool   `json:"received"`
				Saved    bool   `json:"saved"`
				ID       string `json:"id"`
				Error    string `json:"error"`
			}
			if err := c.doJSON(req, &ack); err != nil {
				return err
			}

			if !ack.Saved {
				fmt.Fprintf(cmd.OutOrStdout(), "Acknowledged but not stored: %s\n", ack.Error)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored as %s\n", ack.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&eventType, "type", string(domain.EventKindStatusChanged), "event type")
	cmd.Flags().StringVar(&status, "status", string(domain.VerificationStatusApproved), "verification status")
	cmd.Flags().StringVar(&verificationID, "verification-id", "", "verification id (random when empty)")
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("VERIFF_WEBHOOK_SECRET"), "webhook signing secret")
	cmd.Flags().StringVar(&data, "data", "", "raw body to send instead of a generated payload")

	return cmd
}
