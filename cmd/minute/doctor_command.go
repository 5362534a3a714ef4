package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"minute/internal/ipc"
	"minute/internal/preflight"
	"minute/internal/session"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment for recording and transcription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			// The store is optional here: a corrupt database should show up
			// as a failed check, not abort the others.
			var store *session.Store
			if opened, openErr := session.Open(cfg); openErr == nil {
				store = opened
				defer store.Close()
			}

			results := preflight.RunAll(cmd.Context(), cfg, store)
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, result := range results {
				marker := "FAIL"
				color := ansiRed
				switch {
				case result.Passed:
					marker = "OK"
					color = ansiGreen
				case result.Optional:
					marker = "SKIP"
					color = ansiYellow
				}
				if colorize {
					marker = color + marker + ansiReset
				}
				fmt.Fprintf(out, "[%s] %s: %s\n", marker, result.Name, result.Detail)
			}

			if !preflight.AllPassed(results) {
				return fmt.Errorf("environment checks failed")
			}
			fmt.Fprintln(out, "All checks passed.")
			return nil
		},
	}
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification through the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TestNotification()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
				if !resp.Sent {
					return fmt.Errorf("notification was not sent")
				}
				return nil
			})
		},
	}
}
