package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"
)

var (
	historyLimit      int
	historyJSONOutput bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent assessments, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return err
		}
		ws, err := requireWorkspace(root)
		if err != nil {
			return err
		}

		recent, err := ws.History.Recent(historyLimit)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		out := cmd.OutOrStdout()
		if historyJSONOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(recent)
		}
		if len(recent) == 0 {
			fmt.Fprintln(out, "No assessments recorded yet.")
			return nil
		}

		rows := make([]table.Row, 0, len(recent))
		for _, a := range recent {
			rows = append(rows, table.Row{
				a.CreatedAt.Local().Format("2006-01-02 15:04"),
				decisionStyle(a.Decision).Render(a.Decision.String()),
				fmt.Sprintf("%.2f", a.Score.Compound),
				fmt.Sprintf("%.1f", a.Compound.Score),
				fmt.Sprintf("%d", len(a.Findings)),
				a.ID,
			})
		}
		fmt.Fprintln(out, staticTable([]table.Column{
			{Title: "When", Width: 16},
			{Title: "Decision", Width: 16},
			{Title: "Score", Width: 6},
			{Title: "Compound", Width: 8},
			{Title: "Findings", Width: 8},
			{Title: "ID", Width: 36},
		}, rows))

		sum, err := ws.History.Summarize()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d assessments, %d blocked, %d high risk\n", sum.Total, sum.Blocked, sum.HighRisk)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a recorded assessment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return err
		}
		ws, err := requireWorkspace(root)
		if err != nil {
			return err
		}
		a, err := ws.History.Get(args[0])
		if err != nil {
			return NewCLIError("assessment not found", "Run 'riskgate history' to list assessment IDs", err)
		}
		if historyJSONOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a)
		}
		renderAssessment(cmd.OutOrStdout(), a, "recorded "+a.CreatedAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

func init() {
	historyCmd.PersistentFlags().BoolVar(&historyJSONOutput, "json", false, "Output in JSON format")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of assessments to list (0 for all)")
	historyCmd.AddCommand(historyShowCmd)
	RootCmd.AddCommand(historyCmd)
}
