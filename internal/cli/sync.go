package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	syncForce bool
	syncBoard string
	syncLimit int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Ingest the latest posts from the HIRA boards",
	Long: `Crawl the configured boards, extract and chunk new documents, and add
them to the vector index.

Examples:
  hirarag sync
  hirarag sync --force
  hirarag sync --board HIRAA030023030000 --limit 3`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "reprocess files already recorded")
	syncCmd.Flags().StringVar(&syncBoard, "board", "", "sync a single board by id")
	syncCmd.Flags().IntVar(&syncLimit, "limit", 0, "posts per board (default from config)")
}

func runSync(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	limit := cfg.Sync.PostLimit
	if syncLimit > 0 {
		limit = syncLimit
	}

	if syncBoard != "" {
		res, err := app.syncer.SyncBoard(cmd.Context(), syncBoard, limit, syncForce)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		fmt.Printf("%s: %d posts, %d new chunks, %d skipped\n",
			res.BoardID, res.ProcessedPosts, res.NewDocuments, res.SkippedFiles)
		return nil
	}

	results, err := app.syncer.Sync(cmd.Context(), syncForce)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	for _, board := range cfg.Boards {
		res := results[board.ID]
		fmt.Printf("%s (%s): %d posts, %d new chunks, %d skipped\n",
			board.Name, board.ID, res.ProcessedPosts, res.NewDocuments, res.SkippedFiles)
	}

	app.criteria.Refresh()
	return nil
}
