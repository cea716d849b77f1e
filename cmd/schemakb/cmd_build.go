package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"schemakb/internal/catalog"
	"schemakb/internal/config"
	"schemakb/internal/embedding"
	"schemakb/internal/schema"
	"schemakb/internal/sqlparse"
	"schemakb/internal/store"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Parse the configured SQL dumps and load the catalog store",
	Long: `Parses every configured source dump, merges the results into the unified
entity catalog, and upserts the catalog into the SQLite store. Sources
parse in parallel; a source that cannot be read is skipped with a warning
and the remaining sources still produce a partial catalog.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := runBuild(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(report.Summary())
		for _, w := range report.Warnings {
			fmt.Println("warning:", w)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print row counts for the catalog store",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.Store.Path, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.Stats()
		if err != nil {
			return err
		}
		for table, count := range stats {
			fmt.Printf("%s: %d\n", table, count)
		}
		return nil
	},
}

// runBuild executes the full pipeline: parse, catalog, store.
func runBuild(ctx context.Context) (*catalog.Report, error) {
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("no sources configured; add a sources section to %s", configPath)
	}

	models, warnings := parseSources(ctx, cfg.Sources)
	if len(models) == 0 {
		return nil, fmt.Errorf("no source could be parsed")
	}

	opts := cfg.CatalogOptions()
	opts.Warnings = warnings
	graph, report := catalog.NewBuilder(opts, logger).Build(models)

	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if cfg.Embedding.Provider != "" {
		engine, err := embedding.NewEngine(cfg.EmbeddingOptions())
		if err != nil {
			return nil, err
		}
		logger.Info("embedding engine ready", zap.String("engine", engine.Name()))
		st.SetEmbeddingEngine(engine)
	}

	if err := catalog.WriteGraph(ctx, graph, st, cfg.Store.WriteParallelism); err != nil {
		return nil, fmt.Errorf("write catalog: %w", err)
	}
	return report, nil
}

// parseSources parses every source dump in parallel. Slots keep config
// order so the catalog walk stays deterministic; failed sources leave nil
// slots that are compacted away.
func parseSources(ctx context.Context, sources []config.Source) ([]*schema.Database, []string) {
	slots := make([]*schema.Database, len(sources))
	warningSlots := make([][]string, len(sources))
	var mu sync.Mutex

	eg, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			db, warns := parseSource(src)
			mu.Lock()
			slots[i] = db
			warningSlots[i] = warns
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	var models []*schema.Database
	var warnings []string
	for i := range slots {
		warnings = append(warnings, warningSlots[i]...)
		if slots[i] != nil {
			models = append(models, slots[i])
		}
	}
	return models, warnings
}

// parseSource parses one dump into a schema model. An unreadable file or
// bad dialect yields a nil model and a warning rather than an error, so
// one broken source never takes down the whole build.
func parseSource(src config.Source) (*schema.Database, []string) {
	dialect, err := sqlparse.ParseDialect(src.Dialect)
	if err != nil {
		return nil, []string{fmt.Sprintf("source %s: %v", src.Path, err)}
	}

	sql, err := sqlparse.ReadFile(src.Path)
	if err != nil {
		logger.Warn("source unreadable, skipping",
			zap.String("path", src.Path), zap.Error(err))
		return nil, []string{fmt.Sprintf("source %s: %v", src.Path, err)}
	}

	parser := sqlparse.New(dialect, logger)
	stmts := parser.Parse(sql)

	builder := schema.NewBuilder(logger)
	db := builder.Build(src.Database, src.Description, dialect, stmts)

	var warnings []string
	for _, w := range parser.Warnings() {
		warnings = append(warnings, fmt.Sprintf("%s: %s", src.Path, w))
	}
	for _, w := range builder.Warnings() {
		warnings = append(warnings, fmt.Sprintf("%s: %s", src.Path, w))
	}
	return db, warnings
}
