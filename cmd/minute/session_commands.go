package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"minute/internal/api"
	"minute/internal/ipc"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recording sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.List(statuses)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(resp.Sessions) == 0 {
					fmt.Fprintln(out, "No sessions found.")
					return nil
				}
				colorize := shouldColorize(out)
				rows := make([][]string, 0, len(resp.Sessions))
				for _, sess := range resp.Sessions {
					rows = append(rows, []string{
						shortID(sess.ID),
						sess.Title,
						colorizeStatus(sess.Status, colorize),
						formatSessionDuration(sess),
						sess.CreatedAt,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]column{
						{name: "ID"},
						{name: "Title", width: 40},
						{name: "Status"},
						{name: "Duration", right: true},
						{name: "Created"},
					},
					rows,
				))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (repeatable)")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show details for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Describe(args[0])
				if err != nil {
					return err
				}
				printSessionDetails(cmd, resp.Session)
				return nil
			})
		},
	}
}

func printSessionDetails(cmd *cobra.Command, sess api.Session) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintf(out, "%-12s %s\n", "ID:", sess.ID)
	fmt.Fprintf(out, "%-12s %s\n", "Title:", sess.Title)
	fmt.Fprintf(out, "%-12s %s\n", "Status:", colorizeStatus(sess.Status, colorize))
	fmt.Fprintf(out, "%-12s %s\n", "Source:", sess.AudioSource)
	fmt.Fprintf(out, "%-12s %s\n", "Duration:", formatSessionDuration(sess))
	fmt.Fprintf(out, "%-12s %s\n", "Audio:", valueOrDash(sess.AudioPath))
	fmt.Fprintf(out, "%-12s %s\n", "Transcript:", valueOrDash(sess.TranscriptPath))
	fmt.Fprintf(out, "%-12s %s\n", "Summary:", valueOrDash(sess.SummaryPath))
	fmt.Fprintf(out, "%-12s %s\n", "Created:", sess.CreatedAt)
	fmt.Fprintf(out, "%-12s %s\n", "Updated:", sess.UpdatedAt)
	if sess.ErrorMessage != "" {
		fmt.Fprintf(out, "%-12s %s\n", "Error:", sess.ErrorMessage)
	}
}

func newRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <session-id>",
		Short: "Retry transcription for a failed, completed, or interrupted session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Retry(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Transcription queued for %s\n", resp.Session.Title)
				return nil
			})
		},
	}
}

func newTitleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "title <session-id> <new-title>",
		Short: "Rename a session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args[1:], " "))
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SetTitle(args[0], title)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed session to %q\n", resp.Session.Title)
				return nil
			})
		},
	}
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session and its recordings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("deleting removes the audio and transcript permanently; rerun with --yes to confirm")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func newTranscriptCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "transcript <session-id>",
		Short: "Print a session's transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Describe(args[0])
				if err != nil {
					return err
				}
				if resp.Session.TranscriptPath == "" {
					return fmt.Errorf("session %s has no transcript (status: %s)", args[0], resp.Session.Status)
				}
				data, err := os.ReadFile(filepath.Join(cfg.Paths.DataDir, resp.Session.TranscriptPath))
				if err != nil {
					return fmt.Errorf("read transcript: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(data), "\n"))
				return nil
			})
		},
	}
}
