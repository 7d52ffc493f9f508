package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/kyc-verify/internal/domain"
)

func eventsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect stored webhook events",
	}

	cmd.AddCommand(eventsListCmd(opts))
	cmd.AddCommand(eventsGetCmd(opts))
	cmd.AddCommand(eventsClearCmd(opts))
	cmd.AddCommand(eventsTailCmd(opts))

	return cmd
}

func eventsListCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newAPIClient(opts)
			req, err := c.newRequest(cmd.Context(), http.MethodGet, "/api/veriff/webhooks", nil, true)
			if err != nil {
				return err
			}

			var resp struct {
				Count  int                   `json:"count"`
				Events []domain.WebhookEvent `json:"events"`
			}
			if err := c.doJSON(req, &resp); err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			if resp.Count == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No webhook events stored.")
				return nil
			}
			return printEventTable(cmd.OutOrStdout(), resp.Events)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func eventsGetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get [event-id]",
		Short: "Show one stored event with its raw payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newAPIClient(opts)
			req, err := c.newRequest(cmd.Context(), http.MethodGet, "/api/veriff/webhooks/"+url.PathEscape(args[0]), nil, true)
			if err != nil {
				return err
			}

			var resp struct {
				Event domain.WebhookEvent `json:"event"`
			}
			if err := c.doJSON(req, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp.Event)
		},
	}
}

func eventsClearCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored event",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newAPIClient(opts)
			req, err := c.newRequest(cmd.Context(), http.MethodDelete, "/api/veriff/webhooks", nil, true)
			if err != nil {
				return err
			}

			var resp struct {
				Cleared int `json:"cleared"`
			}
			if err := c.doJSON(req, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d event(s).\n", resp.Cleared)
			return nil
		},
	}
}

func eventsTailCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow newly stored events as they arrive",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := newAPIClient(opts)
			req, err := c.newRequest(ctx, http.MethodGet, "/api/veriff/webhooks/stream", nil, true)
			if err != nil {
				return err
			}
			req.Header.Set("Accept", "text/event-stream")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("open stream: %w", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("open stream: unexpected status %d", resp.StatusCode)
			}

			return followStream(ctx, resp.Body, cmd.OutOrStdout(), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print each event as a JSON line")
	return cmd
}

// followStream prints every "data:" frame until r ends or ctx is done.
func followStream(ctx context.Context, r io.Reader, w io.Writer, asJSON bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), 4<<20)

	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}
		if asJSON {
			fmt.Fprintln(w, data)
			continue
		}
		var event domain.WebhookEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			fmt.Fprintf(w, "undecodable event: %s\n", data)
			continue
		}
		fmt.Fprintf(w, "%s  %s  %s  %s\n", event.ReceivedAt.Local().Format(time.DateTime), event.ID, event.Kind, statusOf(event))
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return nil
}

func printEventTable(w io.Writer, events []domain.WebhookEvent) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRECEIVED\tKIND\tSTATUS\tVERIFICATION")
	for _, e := range events {
		vid := "-"
		if e.VerificationID != nil {
			vid = *e.VerificationID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.ReceivedAt.Local().Format(time.DateTime), e.Kind, statusOf(e), vid)
	}
	return tw.Flush()
}

func statusOf(e domain.WebhookEvent) string {
	if e.VerificationStatus == nil {
		return "-"
	}
	return string(*e.VerificationStatus)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}
