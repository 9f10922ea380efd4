package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var auditJSONOutput bool

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit and verify workspace history",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the integrity of the audit trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return fmt.Errorf("resolve project path: %w", err)
		}
		ws, err := requireWorkspace(root)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Verifying audit trail integrity...")
		violations, err := ws.Audit.VerifyIntegrity()
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}

		if len(violations) == 0 {
			fmt.Fprintln(out, "Audit trail is intact and verified.")
			return nil
		}

		fmt.Fprintf(out, "Found %d integrity violations:\n", len(violations))
		for _, v := range violations {
			fmt.Fprintf(out, "  - %s\n", v)
		}
		return NewCLIError(fmt.Sprintf("audit trail has %d integrity violations", len(violations)), "Restore .riskgate/events.jsonl from a trusted copy", nil)
	},
}

var auditTimelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "List audit events in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return err
		}
		ws, err := requireWorkspace(root)
		if err != nil {
			return err
		}
		events, err := ws.Audit.GetTimeline()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if auditJSONOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(events)
		}
		for _, e := range events {
			fmt.Fprintf(out, "%s  %-22s %-7s %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Action, e.Actor, dimStyle.Render(e.ID))
		}
		return nil
	},
}

func init() {
	auditTimelineCmd.Flags().BoolVar(&auditJSONOutput, "json", false, "Output in JSON format")
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditTimelineCmd)
	RootCmd.AddCommand(auditCmd)
}
