// Package concierge holds the CLI commands of the So'Co concierge:
// the HTTP server, the knowledge ingestion job, and a one-shot ask
// command for local testing.
package concierge

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/happyculture/soco-concierge/pkg/config"
	"github.com/happyculture/soco-concierge/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "soco-concierge",
	Short: "RAG assistant for Hôtel So'Co guest questions",
	Long: `soco-concierge answers guest questions about Hôtel So'Co by
retrieving hotel knowledge and synthesizing a grounded French answer.

Commands:
  serve    Start the HTTP API
  ingest   Load hotel knowledge into the vector store
  ask      Answer a single question from the command line
  version  Print version information`,
	SilenceUsage: true,
}

var logLevel string

func init() {
	cobra.OnInitialize(loadDotenv)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func loadDotenv() {
	// Missing .env is fine; the environment may be set another way.
	_ = godotenv.Load()
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// newLogger builds the process logger from config, letting the
// --log-level flag win over the configured level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	return logger.NewFromConfig(level, cfg.Log.Format)
}
