package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"skipper/internal/analysis"
	"skipper/internal/segment"
	"skipper/internal/stats"
)

// tableColumn pairs a header with its cell alignment. Numeric and time
// columns render right-aligned; headers stay left-aligned throughout.
type tableColumn struct {
	title      string
	rightAlign bool
}

// renderSegmentTable lists classified intervals in playback order.
func renderSegmentTable(intervals []segment.Interval) string {
	rows := make([][]string, 0, len(intervals))
	for _, iv := range intervals {
		rows = append(rows, []string{
			formatOffset(iv.Start),
			formatOffset(iv.End),
			string(iv.Category),
			formatConfidence(iv.Confidence),
			iv.Description,
		})
	}
	return renderTable([]tableColumn{
		{title: "Start", rightAlign: true},
		{title: "End", rightAlign: true},
		{title: "Category"},
		{title: "Confidence", rightAlign: true},
		{title: "Description"},
	}, rows)
}

// renderCacheTable lists cached analyses, newest metadata as stored.
func renderCacheTable(results []analysis.Result) string {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		rows = append(rows, []string{
			result.VideoID,
			fmt.Sprintf("%d", len(result.Segments)),
			formatOffset(result.TotalDuration()),
			result.Model,
			result.AnalyzedAt.Local().Format(time.DateTime),
		})
	}
	return renderTable([]tableColumn{
		{title: "Video"},
		{title: "Segments", rightAlign: true},
		{title: "Skippable", rightAlign: true},
		{title: "Model"},
		{title: "Analyzed"},
	}, rows)
}

// renderStatsTable lists per-category skip totals.
func renderStatsTable(summary *stats.Summary) string {
	rows := make([][]string, 0, len(summary.ByCategory))
	for _, total := range summary.ByCategory {
		rows = append(rows, []string{
			string(total.Category),
			fmt.Sprintf("%d", total.SkipCount),
			formatOffset(total.SecondsSaved),
		})
	}
	return renderTable([]tableColumn{
		{title: "Category"},
		{title: "Skips", rightAlign: true},
		{title: "Time Saved", rightAlign: true},
	}, rows)
}

func renderTable(columns []tableColumn, rows [][]string) string {
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
		if col.rightAlign {
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

// formatOffset renders seconds as M:SS or H:MM:SS.
func formatOffset(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

func formatConfidence(confidence float64) string {
	return fmt.Sprintf("%.2f", confidence)
}
