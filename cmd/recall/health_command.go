package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"recall/internal/preflight"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var probeAPI bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show daemon health, worker pool, and dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			health, err := ctx.newClient().Health(cmd.Context())
			if err != nil {
				return ctx.wrapDialError(err)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, health)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			lines := healthLines(health, colorize)
			if probeAPI {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				result := preflight.CheckOpenAI(cmd.Context(), cfg)
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				lines = append(lines, "")
				lines = append(lines, renderSectionHeader("Live checks", colorize)...)
				lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			fmt.Fprintf(out, "\nSearch index available: %s\n", yesNo(health.IndexAvailable))
			return nil
		},
	}
	cmd.Flags().BoolVar(&probeAPI, "probe-api", false, "Also verify the OpenAI API key from this machine")
	return cmd
}
