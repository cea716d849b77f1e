package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"schemakb/internal/embedding"
)

// EntityDocument is one stored entity record.
type EntityDocument struct {
	ID        string
	Content   string
	Metadata  map[string]any
	UpdatedAt time.Time

	// Score is the similarity score from SemanticRecall, zero otherwise.
	Score float64
}

// ErrNotFound is returned when no document exists for an identifier.
var ErrNotFound = errors.New("entity document not found")

// UpsertEntityDocument inserts or replaces the document for id. When an
// embedding engine is configured the content is embedded before the write;
// the same id written twice yields one row.
func (s *Store) UpsertEntityDocument(ctx context.Context, id, content string, metadata map[string]any) error {
	if id == "" {
		return errors.New("entity document id must be non-empty")
	}

	var embJSON sql.NullString
	if engine := s.currentEngine(); engine != nil {
		vec, err := engine.Embed(ctx, content)
		if err != nil {
			return fmt.Errorf("embed %s: %w", id, err)
		}
		raw, err := json.Marshal(vec)
		if err != nil {
			return fmt.Errorf("marshal embedding for %s: %w", id, err)
		}
		embJSON = sql.NullString{String: string(raw), Valid: true}
	}

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata for %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO entity_documents (id, content, embedding, metadata, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET
		   content = excluded.content,
		   embedding = excluded.embedding,
		   metadata = excluded.metadata,
		   updated_at = CURRENT_TIMESTAMP`,
		id, content, embJSON, string(metaJSON),
	)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", id, err)
	}
	return nil
}

func (s *Store) currentEngine() embedding.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// Document fetches one document by identifier.
func (s *Store) Document(ctx context.Context, id string) (*EntityDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc EntityDocument
	var metaJSON sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, content, metadata, updated_at FROM entity_documents WHERE id = ?", id,
	).Scan(&doc.ID, &doc.Content, &metaJSON, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", id, err)
	}
	if metaJSON.Valid && metaJSON.String != "" {
		if err := json.Unmarshal([]byte(metaJSON.String), &doc.Metadata); err != nil {
			s.log.Warn("document metadata unmarshal failed", zap.String("id", id), zap.Error(err))
		}
	}
	return &doc, nil
}

// SemanticRecall returns the documents most similar to the query. With an
// embedding engine the ranking is cosine similarity over stored embeddings;
// without one it degrades to keyword matching.
func (s *Store) SemanticRecall(ctx context.Context, query string, limit int) ([]EntityDocument, error) {
	if limit <= 0 {
		limit = 10
	}
	engine := s.currentEngine()
	if engine == nil {
		return s.keywordRecall(ctx, query, limit)
	}

	queryVec, err := engine.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, content, embedding, metadata, updated_at FROM entity_documents WHERE embedding IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	defer rows.Close()

	var results []EntityDocument
	for rows.Next() {
		var doc EntityDocument
		var embJSON, metaJSON sql.NullString
		if err := rows.Scan(&doc.ID, &doc.Content, &embJSON, &metaJSON, &doc.UpdatedAt); err != nil {
			s.log.Warn("document row scan failed", zap.Error(err))
			continue
		}
		var vec []float64
		if err := json.Unmarshal([]byte(embJSON.String), &vec); err != nil {
			s.log.Warn("stored embedding unmarshal failed", zap.String("id", doc.ID), zap.Error(err))
			continue
		}
		doc.Score = embedding.CosineSimilarity(queryVec, vec)
		if metaJSON.Valid && metaJSON.String != "" {
			_ = json.Unmarshal([]byte(metaJSON.String), &doc.Metadata)
		}
		results = append(results, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// keywordRecall matches any query keyword against document content,
// most recently updated first.
func (s *Store) keywordRecall(ctx context.Context, query string, limit int) ([]EntityDocument, error) {
	keywords := strings.Fields(strings.ToLower(query))
	if len(keywords) == 0 {
		return nil, nil
	}

	var conditions []string
	var args []any
	for _, kw := range keywords {
		conditions = append(conditions, "LOWER(content) LIKE ?")
		args = append(args, "%"+kw+"%")
	}
	args = append(args, limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT id, content, metadata, updated_at FROM entity_documents WHERE %s ORDER BY updated_at DESC LIMIT ?",
		strings.Join(conditions, " OR ")), args...)
	if err != nil {
		return nil, fmt.Errorf("keyword recall: %w", err)
	}
	defer rows.Close()

	var results []EntityDocument
	for rows.Next() {
		var doc EntityDocument
		var metaJSON sql.NullString
		if err := rows.Scan(&doc.ID, &doc.Content, &metaJSON, &doc.UpdatedAt); err != nil {
			continue
		}
		if metaJSON.Valid && metaJSON.String != "" {
			_ = json.Unmarshal([]byte(metaJSON.String), &doc.Metadata)
		}
		results = append(results, doc)
	}
	return results, rows.Err()
}
