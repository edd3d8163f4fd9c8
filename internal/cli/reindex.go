package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reindexQuiet bool

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the vector index from the files on disk",
	Long: `Drop the vector index and re-ingest every recorded file from the raw
and text directories. Use after changing chunking or embedding settings,
or when the index is corrupt.`,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
	reindexCmd.Flags().BoolVar(&reindexQuiet, "quiet", false, "suppress the progress bar")
}

func runReindex(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.reindex.Rebuild(cmd.Context(), !reindexQuiet)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	fmt.Printf("reindexed %d files into %d chunks (%d skipped)\n", res.Files, res.Chunks, res.Skipped)
	return nil
}
