// Package store persists the entity catalog in SQLite: one table of
// entity documents with optional embeddings and one table of graph edges.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"schemakb/internal/embedding"
)

// Store is the combined vector and graph sink backed by a single SQLite
// database. All methods are safe for concurrent use.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	path   string
	engine embedding.Engine
	log    *zap.Logger
}

// Open initializes the SQLite database at path, creating the directory and
// schema as needed.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		log.Debug("set busy_timeout failed", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		log.Debug("set journal_mode=WAL failed", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		log.Debug("set synchronous=NORMAL failed", zap.Error(err))
	}

	s := &Store{db: db, path: path, log: log}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	log.Debug("store opened", zap.String("path", path))
	return s, nil
}

func (s *Store) initialize() error {
	documentsTable := `
	CREATE TABLE IF NOT EXISTS entity_documents (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		embedding TEXT,
		metadata TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_documents_content ON entity_documents(content);
	`

	graphTable := `
	CREATE TABLE IF NOT EXISTS schema_graph (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		target_id TEXT NOT NULL,
		weight REAL DEFAULT 1.0,
		metadata TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_id, kind, target_id)
	);
	CREATE INDEX IF NOT EXISTS idx_graph_source ON schema_graph(source_id);
	CREATE INDEX IF NOT EXISTS idx_graph_target ON schema_graph(target_id);
	CREATE INDEX IF NOT EXISTS idx_graph_kind ON schema_graph(kind);
	`

	for _, table := range []string{documentsTable, graphTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// SetEmbeddingEngine enables semantic recall. Without an engine the store
// falls back to keyword search and stores documents without embeddings.
func (s *Store) SetEmbeddingEngine(engine embedding.Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine = engine
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Stats returns row counts per table.
func (s *Store) Stats() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]int64)
	for _, table := range []string{"entity_documents", "schema_graph"} {
		var count int64
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		stats[table] = count
	}
	return stats, nil
}
