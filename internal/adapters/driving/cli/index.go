package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [paths...]",
	Short: "Index documents into the vector store",
	Long: `Loads the given documents, splits them into chunks, embeds every
chunk and adds the vectors to the index. Supported formats: plain text,
Markdown and PDF.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	report, err := app.pipeline.Index(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("Indexed %d document(s): %d page(s), %d chunk(s), %d dimensions\n",
		report.Documents, report.Pages, report.Chunks, report.Dimensions)
	return nil
}
