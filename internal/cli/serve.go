package cli

import (
	"github.com/spf13/cobra"

	"hirarag/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serve search, sync, analysis and diagnostics over HTTP.

Endpoints:
  POST /api/search    hybrid search
  POST /api/sync      trigger an ingestion pass
  POST /api/analyze   reimbursement eligibility analysis
  GET  /api/metadata  raw metadata aggregate
  GET  /api/status    sync watermarks and index state`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	srv := server.New(cfg, app.searcher, app.syncer, app.criteria, app.store, app.index, logger)
	return srv.Run()
}
