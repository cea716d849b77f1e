package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Sink receives catalog output. The store implements both halves over
// SQLite; tests substitute in-memory fakes.
type Sink interface {
	UpsertEntityDocument(ctx context.Context, id, text string, metadata map[string]any) error
	UpsertRelationship(ctx context.Context, sourceID, targetID string, kind string, metadata map[string]any) error
}

// WriteError wraps a sink failure with the entity it was writing.
type WriteError struct {
	EntityID string
	Op       string
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("sink %s %s: %v", e.Op, e.EntityID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// WriteGraph upserts every document and then every relationship into the
// sink, at most parallelism writes in flight. Documents go first so edge
// endpoints exist before the edges that reference them. The first failure
// cancels the remaining writes.
func WriteGraph(ctx context.Context, g *Graph, sink Sink, parallelism int) error {
	if parallelism < 1 {
		parallelism = 1
	}

	eg, docCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallelism)
	for _, doc := range g.Documents {
		doc := doc
		eg.Go(func() error {
			if err := sink.UpsertEntityDocument(docCtx, doc.ID, doc.Text, doc.Metadata); err != nil {
				return &WriteError{EntityID: doc.ID, Op: "upsert document", Err: err}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	eg, relCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallelism)
	for _, rel := range g.Relationships {
		rel := rel
		eg.Go(func() error {
			meta := rel.Metadata
			if meta == nil {
				meta = map[string]any{}
			}
			meta["weight"] = rel.Weight
			if err := sink.UpsertRelationship(relCtx, rel.SourceID, rel.TargetID, string(rel.Kind), meta); err != nil {
				return &WriteError{EntityID: rel.SourceID + "->" + rel.TargetID, Op: "upsert relationship", Err: err}
			}
			return nil
		})
	}
	return eg.Wait()
}
