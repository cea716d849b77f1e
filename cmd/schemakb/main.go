package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"schemakb/internal/config"
	"schemakb/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "schemakb",
	Short: "schemakb - database schema knowledge base",
	Long: `schemakb parses MySQL and PostgreSQL DDL dumps into a unified entity
catalog: every database, table, and column becomes a retrievable document
linked into a relationship graph, stored in SQLite with optional vector
embeddings for semantic search.

Typical flow:

  schemakb init                 write a starter config
  schemakb build                parse the configured dumps and load the store
  schemakb query "user emails"  ask the catalog a question`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Logging.Format)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "schemakb.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
