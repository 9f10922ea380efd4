package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	Padding(0, 1)

var (
	verdictPass   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	verdictReview = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	verdictBlock  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func decisionStyle(d risk.Decision) lipgloss.Style {
	switch {
	case d.Blocks():
		return verdictBlock
	case d == risk.DecisionAutoApprove:
		return verdictPass
	default:
		return verdictReview
	}
}

// staticTable renders rows as a non-interactive table.
func staticTable(columns []table.Column, rows []table.Row) string {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)
	return t.View()
}

func renderAssessment(w io.Writer, a *risk.Assessment, source string) {
	fmt.Fprintln(w, headerStyle.Render("riskgate: "+source))
	fmt.Fprintf(w, "Decision:   %s  (confidence %.2f)\n", decisionStyle(a.Decision).Render(strings.ToUpper(a.Decision.String())), a.Confidence)
	fmt.Fprintf(w, "Risk score: %.2f (%s)\n", a.Score.Compound, a.Score.Level)
	fmt.Fprintf(w, "Compound:   %.2f/10  high risk: %v\n", a.Compound.Score, a.Compound.IsHigh)
	fmt.Fprintln(w, a.Compound.Summary)
	fmt.Fprintln(w, a.Compound.RecommendedAction)
	if a.Failure != "" {
		fmt.Fprintln(w, verdictBlock.Render("Analysis failed: "+a.Failure))
	}
	if a.Degraded {
		fmt.Fprintln(w, verdictReview.Render("Similarity search was unavailable; pattern-only scoring was used."))
	}

	if len(a.Components) > 0 {
		fmt.Fprintln(w)
		rows := make([]table.Row, 0, len(a.Components))
		for _, c := range a.Components {
			rows = append(rows, table.Row{
				string(c.Component),
				fmt.Sprintf("%.2f", c.Risk),
				string(risk.LevelFor(c.Risk)),
				fmt.Sprintf("%d", len(c.Findings)),
			})
		}
		fmt.Fprintln(w, staticTable([]table.Column{
			{Title: "Component", Width: 12},
			{Title: "Risk", Width: 6},
			{Title: "Level", Width: 9},
			{Title: "Findings", Width: 8},
		}, rows))
	}

	if len(a.Findings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, staticTable([]table.Column{
			{Title: "Severity", Width: 9},
			{Title: "Theme", Width: 22},
			{Title: "Location", Width: 20},
			{Title: "Finding", Width: 60},
		}, findingRows(a.Findings)))
	}

	if recs := recommendations(a); len(recs) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Recommendations:")
		for _, r := range recs {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}

	if a.Remediation != nil {
		fmt.Fprintln(w)
		renderRemediation(w, a.Remediation)
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("assessment %s, pattern library %s", a.ID, a.Library)))
}

// findingRows lists findings most severe first.
func findingRows(findings []risk.Finding) []table.Row {
	sorted := make([]risk.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Score() > sorted[j].Severity.Score()
	})
	rows := make([]table.Row, 0, len(sorted))
	for _, f := range sorted {
		rows = append(rows, table.Row{string(f.Severity), string(f.Theme), f.Location, f.Description})
	}
	return rows
}

func recommendations(a *risk.Assessment) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range a.Components {
		for _, r := range c.Recommendations {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	return out
}

func renderRemediation(w io.Writer, r *risk.RemediationReport) {
	if r.Error != "" {
		fmt.Fprintf(w, "Suggested fixes unavailable: %s\n", r.Error)
		return
	}
	fmt.Fprintf(w, "Suggested fixes (%s, advisory only):\n", r.Provider)
	for _, f := range r.Fixes {
		if f.Error != "" {
			fmt.Fprintf(w, "  - %s: failed (%s)\n", f.FindingID, f.Error)
			continue
		}
		fmt.Fprintf(w, "  - %s (confidence %.2f): %s\n", f.FindingID, f.Confidence, f.Text)
	}
	if r.Skipped > 0 {
		fmt.Fprintf(w, "  %d lower-severity findings skipped\n", r.Skipped)
	}
}
