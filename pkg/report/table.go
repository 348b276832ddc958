package report

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cratepatch/pkg/pipeline"
)

var (
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorDim   = lipgloss.Color("240")
	colorCyan  = lipgloss.Color("36")

	styleHeader   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	styleCell     = lipgloss.NewStyle().Padding(0, 1)
	stylePatched  = styleCell.Foreground(colorGreen)
	styleFailed   = styleCell.Foreground(colorRed)
	styleExcluded = styleCell.Foreground(colorDim)
	styleBorder   = lipgloss.NewStyle().Foreground(colorDim)
)

// Status labels shown in tables.
const (
	labelPatch    = "patch"
	labelExcluded = "excluded"
)

// PlanTable renders a plan as a table of package, directory and action.
func PlanTable(p *pipeline.Plan) string {
	rows := make([][]string, 0, len(p.Candidates))
	for _, c := range p.Candidates {
		action, reason := labelPatch, ""
		switch {
		case c.Excluded:
			action, reason = labelExcluded, "by "+string(c.Reason)
		case p.IsInjected(c.Path):
			reason = "already injected"
		}
		rows = append(rows, []string{c.Name(), c.DirName, action, reason})
	}
	return newTable([]string{"PACKAGE", "DIRECTORY", "ACTION", "REASON"}, rows, 2).Render()
}

// ResultTable renders a run result as a table of package, status and error.
func ResultTable(r *pipeline.Result) string {
	rows := make([][]string, 0, len(r.Outcomes)+len(r.Excluded))
	for _, o := range r.Outcomes {
		detail := ""
		if o.Status == pipeline.StatusFailed {
			detail = string(o.Step) + ": " + o.Error
		}
		rows = append(rows, []string{o.Package, string(o.Status), detail})
	}
	for _, c := range r.Excluded {
		rows = append(rows, []string{c.Name(), labelExcluded, "by " + string(c.Reason)})
	}
	return newTable([]string{"PACKAGE", "STATUS", "DETAIL"}, rows, 1).Render()
}

// newTable builds a rounded table whose statusCol is colored by value.
func newTable(headers []string, rows [][]string, statusCol int) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col != statusCol || row < 0 || row >= len(rows) {
				return styleCell
			}
			switch rows[row][col] {
			case string(pipeline.StatusPatched), labelPatch:
				return stylePatched
			case string(pipeline.StatusFailed):
				return styleFailed
			case labelExcluded:
				return styleExcluded
			}
			return styleCell
		})
}
