// Package retrieval answers natural-language questions about the catalog by
// combining semantic recall with hierarchical graph expansion.
package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"schemakb/internal/catalog"
	"schemakb/internal/store"
)

// Result is one retrieved entity with its originating score.
type Result struct {
	EntityID    string
	Kind        catalog.EntityKind
	Description string
	Score       float64
}

// Facade wraps the store with schema-aware retrieval. A hit on a column
// pulls in its table and database so the caller always sees enough context
// to write a query.
type Facade struct {
	store *store.Store
	log   *zap.Logger
	topK  int
}

// New creates a retrieval facade. topK bounds the initial semantic recall;
// expansion may return more results than topK.
func New(s *store.Store, topK int, log *zap.Logger) *Facade {
	if log == nil {
		log = zap.NewNop()
	}
	if topK <= 0 {
		topK = 10
	}
	return &Facade{store: s, log: log, topK: topK}
}

// Query retrieves the entities most relevant to the question, expanded
// with their structural ancestors. Results keep recall order; an ancestor
// appears once, right after the first hit that pulled it in, inheriting
// that hit's score. topK overrides the facade default when positive.
func (f *Facade) Query(ctx context.Context, question string, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = f.topK
	}

	docs, err := f.store.SemanticRecall(ctx, question, topK)
	if err != nil {
		return nil, fmt.Errorf("semantic recall: %w", err)
	}
	f.log.Debug("semantic recall complete",
		zap.String("question", question),
		zap.Int("hits", len(docs)))

	seen := map[string]bool{}
	var results []Result
	for _, doc := range docs {
		for _, id := range expandHierarchy(doc.ID) {
			if seen[id] {
				continue
			}
			seen[id] = true
			res, err := f.lookup(ctx, id, doc.Score)
			if err != nil {
				f.log.Warn("expansion lookup failed", zap.String("id", id), zap.Error(err))
				continue
			}
			results = append(results, res)
		}
	}
	return results, nil
}

// Neighbors returns the entities directly linked to an entity, resolved to
// full results. Direction is "outgoing", "incoming", or "both".
func (f *Facade) Neighbors(ctx context.Context, entityID string, direction string) ([]Result, error) {
	links, err := f.store.Links(ctx, entityID, direction)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{entityID: true}
	var results []Result
	for _, link := range links {
		other := link.TargetID
		if other == entityID {
			other = link.SourceID
		}
		if seen[other] {
			continue
		}
		seen[other] = true
		res, err := f.lookup(ctx, other, link.Weight)
		if err != nil {
			// Unresolved reference targets have edges but no document.
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

// Path returns the relationship hops connecting two entities, found by
// shortest-path search over outgoing edges. maxDepth <= 0 uses the store
// default.
func (f *Facade) Path(ctx context.Context, from, to string, maxDepth int) ([]store.Link, error) {
	links, err := f.store.TraversePath(ctx, from, to, maxDepth)
	if err != nil {
		return nil, err
	}
	f.log.Debug("path found",
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("hops", len(links)))
	return links, nil
}

func (f *Facade) lookup(ctx context.Context, id string, score float64) (Result, error) {
	doc, err := f.store.Document(ctx, id)
	if err != nil {
		return Result{}, err
	}
	kind, _, _ := catalog.ParseID(id)
	return Result{
		EntityID:    id,
		Kind:        kind,
		Description: doc.Content,
		Score:       score,
	}, nil
}

// expandHierarchy lists an entity followed by its structural ancestors.
// Columns expand to their table and database, tables to their database.
func expandHierarchy(id string) []string {
	kind, parts, ok := catalog.ParseID(id)
	if !ok {
		return []string{id}
	}
	switch kind {
	case catalog.KindColumn:
		if len(parts) == 3 {
			return []string{
				id,
				catalog.TableID(parts[0], parts[1]),
				catalog.DatabaseID(parts[0]),
			}
		}
	case catalog.KindTable:
		if len(parts) == 2 {
			return []string{id, catalog.DatabaseID(parts[0])}
		}
	}
	return []string{id}
}
