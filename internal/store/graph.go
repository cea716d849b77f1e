package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Link is one stored graph edge.
type Link struct {
	SourceID string
	Kind     string
	TargetID string
	Weight   float64
	Metadata map[string]any
}

// UpsertRelationship inserts or replaces the edge (sourceID, kind,
// targetID). The edge weight travels in metadata under "weight" and is
// lifted into its own column for ordering.
func (s *Store) UpsertRelationship(ctx context.Context, sourceID, targetID string, kind string, metadata map[string]any) error {
	if sourceID == "" || targetID == "" || kind == "" {
		return errors.New("relationship source, target, and kind must be non-empty")
	}

	weight := 1.0
	if raw, ok := metadata["weight"]; ok {
		switch v := raw.(type) {
		case float64:
			weight = v
		case int:
			weight = float64(v)
		}
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return fmt.Errorf("invalid relationship weight: %v", weight)
	}

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal relationship metadata: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO schema_graph (source_id, kind, target_id, weight, metadata, updated_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(source_id, kind, target_id) DO UPDATE SET
		   weight = excluded.weight,
		   metadata = excluded.metadata,
		   updated_at = CURRENT_TIMESTAMP`,
		sourceID, kind, targetID, weight, string(metaJSON),
	)
	if err != nil {
		return fmt.Errorf("upsert relationship %s -[%s]-> %s: %w", sourceID, kind, targetID, err)
	}
	return nil
}

// Links returns the edges touching entity. Direction is "outgoing",
// "incoming", or "both". Results come back heaviest first.
func (s *Store) Links(ctx context.Context, entity string, direction string) ([]Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.linksLocked(ctx, entity, direction)
}

// linksLocked runs the link query assuming the caller holds at least
// s.mu.RLock. TraversePath calls this directly so it never re-acquires the
// lock it already holds.
func (s *Store) linksLocked(ctx context.Context, entity string, direction string) ([]Link, error) {
	var query string
	var args []any
	switch direction {
	case "outgoing":
		query = "SELECT source_id, kind, target_id, weight, metadata FROM schema_graph WHERE source_id = ? ORDER BY weight DESC"
		args = []any{entity}
	case "incoming":
		query = "SELECT source_id, kind, target_id, weight, metadata FROM schema_graph WHERE target_id = ? ORDER BY weight DESC"
		args = []any{entity}
	default:
		query = "SELECT source_id, kind, target_id, weight, metadata FROM schema_graph WHERE source_id = ? OR target_id = ? ORDER BY weight DESC"
		args = []any{entity, entity}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query links for %s: %w", entity, err)
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var link Link
		var metaJSON sql.NullString
		if err := rows.Scan(&link.SourceID, &link.Kind, &link.TargetID, &link.Weight, &metaJSON); err != nil {
			s.log.Warn("link row scan failed", zap.Error(err))
			continue
		}
		if metaJSON.Valid && metaJSON.String != "" {
			if err := json.Unmarshal([]byte(metaJSON.String), &link.Metadata); err != nil {
				s.log.Warn("link metadata unmarshal failed",
					zap.String("source", link.SourceID), zap.String("target", link.TargetID), zap.Error(err))
			}
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// TraversePath finds a shortest path between two entities with BFS over
// outgoing edges. Returns the hop sequence, or an error when no path
// exists within maxDepth.
func (s *Store) TraversePath(ctx context.Context, from, to string, maxDepth int) ([]Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if maxDepth <= 0 {
		maxDepth = 5
	}

	type queueItem struct {
		entity string
		depth  int
	}

	// cameFrom holds the link that reached each node; nil marks the start.
	cameFrom := map[string]*Link{from: nil}
	queue := []queueItem{{entity: from}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.entity == to {
			path := make([]Link, current.depth)
			curr := to
			for i := current.depth - 1; i >= 0; i-- {
				link := cameFrom[curr]
				if link == nil {
					break
				}
				path[i] = *link
				curr = link.SourceID
			}
			return path, nil
		}

		if current.depth >= maxDepth {
			continue
		}

		links, err := s.linksLocked(ctx, current.entity, "outgoing")
		if err != nil {
			continue
		}
		for _, link := range links {
			if _, visited := cameFrom[link.TargetID]; !visited {
				l := link
				cameFrom[link.TargetID] = &l
				queue = append(queue, queueItem{entity: link.TargetID, depth: current.depth + 1})
			}
		}
	}

	return nil, fmt.Errorf("no path found from %s to %s", from, to)
}
