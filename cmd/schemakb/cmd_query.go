package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"schemakb/internal/embedding"
	"schemakb/internal/retrieval"
	"schemakb/internal/store"
)

var (
	queryTopK      int
	queryNeighbors string
	queryPathTo    string
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask the catalog a natural-language question",
	Long: `Retrieves the schema entities most relevant to a question. A hit on a
column also returns its table and database so the answer carries enough
context to write a query against it.

With --neighbors the argument is an entity identifier instead of a
question, and the command lists the entities directly linked to it.
With --path-to the argument is the starting entity and the command
prints the relationship hops connecting it to the target.

Example:
  schemakb query "where are user email addresses stored"
  schemakb query --neighbors outgoing Table:shop.orders
  schemakb query --path-to Column:shop.users.email Database:shop`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.Store.Path, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		if cfg.Embedding.Provider != "" {
			engine, err := embedding.NewEngine(cfg.EmbeddingOptions())
			if err != nil {
				return err
			}
			st.SetEmbeddingEngine(engine)
		} else {
			logger.Debug("no embedding provider configured, using keyword search")
		}

		facade := retrieval.New(st, cfg.Query.TopK, logger)

		if queryPathTo != "" {
			links, err := facade.Path(cmd.Context(), args[0], queryPathTo, 0)
			if err != nil {
				return err
			}
			for _, link := range links {
				fmt.Printf("%s -[%s]-> %s\n", link.SourceID, link.Kind, link.TargetID)
			}
			return nil
		}

		var results []retrieval.Result
		if queryNeighbors != "" {
			results, err = facade.Neighbors(cmd.Context(), args[0], queryNeighbors)
		} else {
			question := strings.Join(args, " ")
			results, err = facade.Query(cmd.Context(), question, queryTopK)
		}
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No matching entities found.")
			return nil
		}
		for _, res := range results {
			fmt.Printf("=== %s (score %.3f)\n%s\n\n", res.EntityID, res.Score, res.Description)
		}
		logger.Debug("query complete", zap.Int("results", len(results)))
		return nil
	},
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "override the configured result count")
	queryCmd.Flags().StringVar(&queryNeighbors, "neighbors", "", "list linked entities instead: outgoing, incoming, or both")
	queryCmd.Flags().StringVar(&queryPathTo, "path-to", "", "print the relationship path from the argument entity to this one")
}
