// Package cli implements the hirarag command tree.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"hirarag/config"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "hirarag",
	Short: "HIRA reimbursement document ingestion and retrieval engine",
	Long: `hirarag ingests anti-cancer drug reimbursement notices from the HIRA
review board, chunks them with medical-domain sectioning, and serves
hybrid vector + keyword retrieval plus rule-based reimbursement analysis.

Example usage:
  hirarag sync                       # Ingest the latest board posts
  hirarag query -q "키트루다 급여기준"  # Hybrid search
  hirarag analyze -q "B-ALL blinatumomab 급여 가능?"
  hirarag serve                      # Start the HTTP API`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real deployments use the environment directly.
		_ = godotenv.Load()

		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(".")
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger = newLogger(cfg.Logging.Level)
		return nil
	},
	SilenceUsage: true,
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Logger()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./hirarag.yaml)")
}
