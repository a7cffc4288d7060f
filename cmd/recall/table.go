package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type column struct {
	header   string
	align    text.Align
	maxWidth int
}

func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, col := range columns {
		header[i] = col.header
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       col.align,
			AlignHeader: text.AlignLeft,
			Transformer: truncateTransformer(col.maxWidth),
		})
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// truncateTransformer flattens a cell to one line and cuts it at limit columns.
func truncateTransformer(limit int) text.Transformer {
	return func(val any) string {
		s := strings.Join(strings.Fields(fmt.Sprint(val)), " ")
		if limit <= 0 || text.StringWidthWithoutEscSequences(s) <= limit {
			return s
		}
		return text.Trim(s, limit-1) + "…"
	}
}
