// Package static provides non-interactive terminal output components.
//
// This package renders the operation report and the status listing as
// borderless tables.
package static

import (
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/g4-api/git-submodules-manager/internal/orchestrator"
	"github.com/g4-api/git-submodules-manager/internal/ui/styles"
)

// RenderTable creates a formatted table with proper column alignment.
// Headers and rows are rendered using lipgloss/table which automatically
// calculates column widths based on content. No borders are rendered.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	var output strings.Builder

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	output.WriteString(t.String())
	output.WriteString("\n")

	return output.String()
}

// ReportHeaders are the columns of [ReportRow].
var ReportHeaders = []string{"MODULE", "STRATEGY", "OUTCOME", "COMMIT", "DIR", "TIME"}

// ReportRow formats one module result.
func ReportRow(res orchestrator.Result) []string {
	commit := ShortCommit(res.Commit)
	if res.Previous != "" && res.Previous != res.Commit && res.Commit != "" {
		commit = ShortCommit(res.Previous) + " -> " + commit
	}
	return []string{
		res.Module,
		string(res.Strategy),
		styles.Outcome(string(res.Outcome)),
		commit,
		res.Dir,
		styles.Muted(res.Duration.Round(10 * time.Millisecond).String()),
	}
}

// RenderReport renders the result table followed by warnings, failures
// and the summary line.
func RenderReport(r *orchestrator.Report) string {
	rows := make([][]string, 0, len(r.Results))
	for _, res := range r.Results {
		rows = append(rows, ReportRow(res))
	}

	var b strings.Builder
	b.WriteString(RenderTable(ReportHeaders, rows))
	for _, res := range r.Results {
		for _, w := range res.Warnings {
			b.WriteString(styles.Warning("warning: "+res.Module+": "+w) + "\n")
		}
	}
	for _, res := range r.Results {
		if res.Err != nil {
			b.WriteString(styles.Outcome("failed") + ": " + res.Err.Error() + "\n")
		}
	}
	b.WriteString(styles.Bold(r.Summary()) + "\n")
	return b.String()
}

// ShortCommit abbreviates a commit id to seven characters.
func ShortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
