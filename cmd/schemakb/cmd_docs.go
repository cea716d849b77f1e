package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"schemakb/internal/schema"
)

var docsOut string

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Generate markdown documentation for every table",
	Long: `Parses the configured sources and writes one markdown file per table,
grouped by database, under the docs directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.Sources) == 0 {
			return fmt.Errorf("no sources configured; add a sources section to %s", configPath)
		}

		out := docsOut
		if out == "" {
			out = cfg.DocsDir
		}

		models, warnings := parseSources(cmd.Context(), cfg.Sources)
		if len(models) == 0 {
			return fmt.Errorf("no source could be parsed")
		}

		count, err := writeDocs(cmd.Context(), models, out)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %d table documents to %s\n", count, out)
		for _, w := range warnings {
			fmt.Println("warning:", w)
		}
		return nil
	},
}

func writeDocs(ctx context.Context, models []*schema.Database, out string) (int, error) {
	count := 0
	for _, db := range models {
		dir := filepath.Join(out, db.Name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return count, fmt.Errorf("create docs directory: %w", err)
		}
		for _, table := range db.Tables {
			if err := ctx.Err(); err != nil {
				return count, err
			}
			path := filepath.Join(dir, table.Name+".md")
			if err := os.WriteFile(path, []byte(table.Markdown(db.Name)), 0644); err != nil {
				return count, fmt.Errorf("write %s: %w", path, err)
			}
			logger.Debug("table doc written", zap.String("path", path))
			count++
		}
	}
	return count, nil
}

func init() {
	docsCmd.Flags().StringVarP(&docsOut, "out", "o", "", "output directory (defaults to docs_dir from config)")
}
