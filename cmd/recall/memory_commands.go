package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"recall/internal/api"
	"recall/internal/memory"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search your memories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if err := memory.ValidateQuery(query); err != nil {
				return fmt.Errorf("search query must be at least %d characters long", memory.MinQueryLength)
			}
			results, err := ctx.newClient().Search(cmd.Context(), query)
			if err != nil {
				return ctx.wrapDialError(err)
			}
			return renderMemories(cmd, ctx, results, fmt.Sprintf("No memories match %q", query))
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your memories, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			memories, err := ctx.newClient().List(cmd.Context())
			if err != nil {
				return ctx.wrapDialError(err)
			}
			return renderMemories(cmd, ctx, memories, "No memories yet")
		},
	}
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <memory-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a memory and its files",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.newClient().Delete(cmd.Context(), args[0]); err != nil {
				return ctx.wrapDialError(err)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, api.MessageResponse{Message: "Memory deleted successfully"})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted memory %s\n", args[0])
			return nil
		},
	}
}

func renderMemories(cmd *cobra.Command, ctx *commandContext, views []api.MemoryView, empty string) error {
	if ctx.jsonOutput() {
		if views == nil {
			views = []api.MemoryView{}
		}
		return writeJSON(cmd, views)
	}
	out := cmd.OutOrStdout()
	if len(views) == 0 {
		fmt.Fprintln(out, empty)
		return nil
	}
	columns := []column{
		{header: "ID"},
		{header: "Uploaded"},
		{header: "File", maxWidth: 32},
		{header: "Language"},
		{header: "Duration", align: text.AlignRight},
		{header: "Frames", align: text.AlignRight},
		{header: "Summary", maxWidth: 60},
	}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{
			v.ID,
			v.UploadDate,
			v.Filename,
			v.DetectedLanguage,
			fmt.Sprintf("%.1fs", v.DurationSeconds),
			fmt.Sprintf("%d", len(v.Keyframes)),
			summaryCell(v),
		})
	}
	fmt.Fprintln(out, renderTable(columns, rows))
	return nil
}

func summaryCell(v api.MemoryView) string {
	if v.SummaryDegraded {
		return "(" + v.Summary + ")"
	}
	return v.Summary
}
