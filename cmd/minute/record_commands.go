package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"minute/internal/ipc"
)

func newStartCommand(ctx *commandContext) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "start [title]",
		Short: "Start recording a meeting",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := ""
			if len(args) > 0 {
				title = strings.TrimSpace(args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Start(title, source)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Recording started: %s\n", resp.Session.Title)
				fmt.Fprintf(out, "Session: %s (source: %s)\n", resp.Session.ID, resp.Session.AudioSource)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Audio source: microphone_only, system_only, or mixed")
	return cmd
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the active recording and queue transcription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stop()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Recording stopped: %s\n", resp.Session.Title)
				fmt.Fprintf(out, "Duration: %s, transcription queued\n", formatSessionDuration(resp.Session))
				return nil
			})
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and session status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				status := resp.Status

				fmt.Fprintf(out, "Daemon running (pid %d)\n", status.PID)
				if status.Current != nil {
					fmt.Fprintf(out, "Current session: %s [%s]\n",
						status.Current.Title, colorizeStatus(status.Current.Status, colorize))
					fmt.Fprintf(out, "  id: %s\n", status.Current.ID)
				} else {
					fmt.Fprintln(out, "No active session")
				}

				fmt.Fprintln(out, "Sessions:")
				for _, name := range []string{"recording", "processing", "completed", "failed", "interrupted"} {
					fmt.Fprintf(out, "  %-12s %d\n", name, status.SessionStats[name])
				}
				fmt.Fprintf(out, "Database: %s\n", status.DatabasePath)
				return nil
			})
		},
	}
}
