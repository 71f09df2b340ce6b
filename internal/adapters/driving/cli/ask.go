package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
)

var (
	askJSON    bool
	askSources bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the indexed documents",
	Long: `Retrieves the most relevant chunks for the question, generates an
answer constrained to that context and grades the answer for grounding.
The verdict is reported alongside the answer.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the full result as JSON")
	askCmd.Flags().BoolVar(&askSources, "sources", false, "list the context chunks used")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.pipeline.Ask(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if askJSON {
		return outputAskJSON(cmd, result)
	}
	return outputAskText(cmd, result)
}

func outputAskJSON(cmd *cobra.Command, result domain.QueryResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAskText(cmd *cobra.Command, result domain.QueryResult) error {
	if result.State == domain.QueryStateFailed {
		return fmt.Errorf("query failed: %s", result.Message)
	}

	cmd.Println(result.Answer)

	for i, verdict := range result.Verdicts {
		label := "Grounding"
		if len(result.Verdicts) > 1 {
			label = fmt.Sprintf("Grounding (attempt %d)", i+1)
		}
		cmd.Printf("\n%s: %s", label, verdict.BinaryScore)
		if verdict.Explanation != "" {
			cmd.Printf(" - %s", verdict.Explanation)
		}
		cmd.Println()
	}
	if len(result.Verdicts) == 0 && result.Message != "" {
		// Grading failed; the answer stands but the verdict is missing.
		cmd.Printf("\nGrounding: unavailable (%s)\n", result.Message)
	}

	if askSources {
		cmd.Println("\nSources:")
		for i, scored := range result.Context {
			cmd.Printf("  [%d] %s (page %d, chunk %d, score %.3f)\n",
				i+1, scored.Chunk.SourceDocument, scored.Chunk.PageNumber,
				scored.Chunk.Index, scored.Similarity)
		}
	}

	return nil
}
