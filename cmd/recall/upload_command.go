package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"recall/internal/api"
	"recall/internal/jobs"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var wait bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an audio or video recording for processing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := ctx.newClient()
			resp, err := c.Upload(cmd.Context(), args[0])
			if err != nil {
				return ctx.wrapDialError(err)
			}
			if !wait {
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Queued %s\n", resp.Filename)
				fmt.Fprintf(out, "Job: %s\n", resp.JobID)
				fmt.Fprintf(out, "Poll: recall status %s\n", resp.JobID)
				return nil
			}

			out := cmd.OutOrStdout()
			final, err := c.Wait(cmd.Context(), resp.JobID, interval, func(s api.StatusResponse) {
				if !ctx.jsonOutput() {
					fmt.Fprintf(out, "[%3d%%] %s\n", s.Progress, s.Message)
				}
			})
			if err != nil {
				return ctx.wrapDialError(err)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, final)
			}
			if final.State == jobs.StateCompleted {
				fmt.Fprintf(out, "Memory: %s\n", final.MemoryID)
				return nil
			}
			return fmt.Errorf("job %s ended in state %s: %s", resp.JobID, final.State, final.Message)
		},
	}
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Follow progress until the job finishes")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Polling interval with --wait")
	return cmd
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show processing progress for an upload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := ctx.newClient().Status(cmd.Context(), args[0])
			if err != nil {
				return ctx.wrapDialError(err)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, status)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "State:    %s\n", status.State)
			fmt.Fprintf(out, "Progress: %d%%\n", status.Progress)
			fmt.Fprintf(out, "Message:  %s\n", status.Message)
			if status.MemoryID != "" {
				fmt.Fprintf(out, "Memory:   %s\n", status.MemoryID)
			}
			return nil
		},
	}
}
