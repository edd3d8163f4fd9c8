package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	analyzeText string
	analyzeJSON bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Rule-based reimbursement eligibility analysis",
	Long: `Match a clinical question against the off-label protocol tables and
produce a reimbursement verdict with supporting factors.

Examples:
  hirarag analyze -q "Ph(+) B-ALL에 blinatumomab 급여 가능한가요?"`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeText, "query", "q", "", "clinical question (required)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output as JSON")
	analyzeCmd.MarkFlagRequired("query")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	resp := app.criteria.Analyze(analyzeText)
	if analyzeJSON {
		return json.NewEncoder(os.Stdout).Encode(resp)
	}

	fmt.Printf("판정: %s (신뢰도 %.0f%%)\n", resp.Decision, resp.Confidence*100)
	fmt.Printf("권장: %s\n", resp.Recommendation)
	if len(resp.RelevantProtocols) > 0 {
		fmt.Println("관련 요법:")
		for _, p := range resp.RelevantProtocols {
			fmt.Printf("  - [%s] %s / %s / %s\n", p.Code, p.CancerType, p.Treatment, p.Target)
		}
	}
	return nil
}
