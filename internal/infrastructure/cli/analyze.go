package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/riskgate/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/riskgate/pkg/domain"
	"github.com/spf13/cobra"
)

var (
	analyzeJSONOutput    bool
	analyzeNoRemediation bool
	analyzeNoHistory     bool
	analyzeFailOnBlock   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|->",
	Short: "Analyze a proposal or contract and print the release decision",
	Long: `Analyze runs the structural, clause, weakness and semantic analyzers over a
document, scores it and prints the decision. Use '-' to read from stdin.
Inside a workspace the assessment is added to the history.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, source, err := readDocument(cmd.InOrStdin(), args[0])
		if err != nil {
			return NewCLIError("cannot read document", "Check the path, or pass '-' to read from stdin", err)
		}

		services, err := loadServicesForCurrentDir(cmd.Context(), wiring.Options{NoRemediation: analyzeNoRemediation})
		if err != nil {
			return err
		}
		defer func() { _ = services.Close() }()

		a, err := services.Analysis.Analyze(cmd.Context(), text)
		if err != nil {
			return MapError(err)
		}

		if !analyzeNoHistory && services.Workspace.Repo.IsInitialized() {
			if err := services.History.Record(a, domain.ActorHuman); err != nil {
				return fmt.Errorf("record assessment: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		if analyzeJSONOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(a); err != nil {
				return err
			}
		} else {
			renderAssessment(out, a, source)
		}

		if analyzeFailOnBlock && a.Blocked() {
			return &CLIError{
				Message:  fmt.Sprintf("document blocked: %s", a.Decision),
				Hint:     "Resolve the findings above and analyze again",
				ExitCode: ExitBlocked,
			}
		}
		return nil
	},
}

func readDocument(stdin io.Reader, arg string) (string, string, error) {
	if arg == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), "stdin", err
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", "", err
	}
	return string(data), filepath.Base(arg), nil
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSONOutput, "json", false, "Output the assessment as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeNoRemediation, "no-remediation", false, "Do not ask the AI provider for fixes")
	analyzeCmd.Flags().BoolVar(&analyzeNoHistory, "no-history", false, "Do not record the assessment")
	analyzeCmd.Flags().BoolVar(&analyzeFailOnBlock, "fail-on-block", false, "Exit with status 2 when the document is blocked")
	RootCmd.AddCommand(analyzeCmd)
}
