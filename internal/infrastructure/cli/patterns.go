package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/felixgeelhaar/riskgate/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/riskgate/pkg/application"
	"github.com/felixgeelhaar/riskgate/pkg/domain/patterns"
	"github.com/spf13/cobra"
)

var patternsJSONOutput bool

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Inspect and validate the pattern library",
}

var patternsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a pattern library file without activating it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return NewCLIError("cannot read pattern library", "Check the path", err)
		}
		stats, err := application.ValidatePatterns(data)
		if err != nil {
			return NewCLIError("pattern library is invalid", "Fix the reported field and validate again", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pattern library %s is valid: %d patterns\n", stats.Version, stats.Patterns)
		return nil
	},
}

var patternsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Describe the active pattern library",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd.Context(), wiring.Options{NoRemediation: true})
		if err != nil {
			return err
		}
		defer func() { _ = services.Close() }()

		snap := services.Patterns.Registry().Current()
		stats := snap.Library.Stats()
		out := cmd.OutOrStdout()
		if patternsJSONOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Library patterns.Stats `json:"library"`
				Corpus  string         `json:"corpus_version"`
			}{stats, snap.Corpus.Version})
		}

		source := "built-in"
		if services.Workspace.Repo.IsInitialized() {
			source = services.Workspace.Repo.Dir()
		}
		fmt.Fprintln(out, headerStyle.Render("Pattern library "+stats.Version))
		fmt.Fprintf(out, "Source:            %s\n", source)
		fmt.Fprintf(out, "Sections:          %d (%d required)\n", stats.Sections, stats.Required)
		fmt.Fprintf(out, "Clauses:           %d\n", stats.Clauses)
		fmt.Fprintf(out, "Weakness rules:    %d\n", stats.Weaknesses)
		fmt.Fprintf(out, "Semantic rules:    %d\n", stats.Semantic)
		fmt.Fprintf(out, "Compiled patterns: %d\n", stats.Patterns)
		fmt.Fprintf(out, "Template corpus:   %s (%d clauses, %d documents)\n",
			snap.Corpus.Version, len(snap.Corpus.Clauses), len(snap.Corpus.Documents))
		return nil
	},
}

func init() {
	patternsShowCmd.Flags().BoolVar(&patternsJSONOutput, "json", false, "Output in JSON format")
	patternsCmd.AddCommand(patternsValidateCmd)
	patternsCmd.AddCommand(patternsShowCmd)
	RootCmd.AddCommand(patternsCmd)
}
