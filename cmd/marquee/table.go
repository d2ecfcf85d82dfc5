package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one listing column. Numeric columns render right-aligned.
type column struct {
	title   string
	numeric bool
}

// counter is one label/value pair in a run or cache count table.
type counter struct {
	label string
	value string
}

// renderCounters renders counters as a single-row table, values right-aligned,
// the shape used by the enrich summary and cache stats.
func renderCounters(counters []counter) string {
	columns := make([]column, len(counters))
	row := make([]string, len(counters))
	for i, c := range counters {
		columns[i] = column{title: c.label, numeric: true}
		row[i] = c.value
	}
	return renderListing(columns, [][]string{row})
}

// renderListing renders rows under the given columns with rounded borders.
// Short rows are padded with empty cells.
func renderListing(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.title
		align := text.AlignLeft
		if col.numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	return tw.Render()
}
