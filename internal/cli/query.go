package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	queryText    string
	queryLimit   int
	querySection string
	queryJSON    bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search the indexed documents",
	Long: `Run a hybrid vector + keyword search over the ingested documents.

Examples:
  hirarag query -q "키트루다 급여기준"
  hirarag query -q "pembrolizumab 용량" --limit 10 --json
  hirarag query -q "투여 조건" --section 급여기준`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 0, "number of results (default from config)")
	queryCmd.Flags().StringVar(&querySection, "section", "", "restrict to one document section")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	if querySection != "" {
		results, err := app.searcher.SearchBySection(cmd.Context(), queryText, querySection, queryLimit)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if queryJSON {
			return json.NewEncoder(os.Stdout).Encode(results)
		}
		for i, r := range results {
			fmt.Printf("%d. [%.3f] %s (%s)\n   %s\n", i+1, r.Score, r.Source.Title, r.Section, preview(r.Content))
		}
		return nil
	}

	resp, err := app.searcher.Search(cmd.Context(), queryText, queryLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if queryJSON {
		return json.NewEncoder(os.Stdout).Encode(resp)
	}

	if len(resp.Results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for i, r := range resp.Results {
		fmt.Printf("%d. [%.3f] [%s] %s\n   %s\n", i+1, r.Score, r.SearchType, r.Source.Title, preview(r.Content))
	}
	fmt.Printf("\nsources:\n")
	for _, s := range resp.Sources {
		fmt.Printf("  - %s/%s %s\n", s.BoardID, s.PostNo, s.Filename)
	}
	return nil
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= 120 {
		return text
	}
	return string(runes[:120]) + "..."
}
