package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertEntityDocumentIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	meta := map[string]any{"entity_type": "table", "database": "app"}
	if err := s.UpsertEntityDocument(ctx, "Table:app.users", "Table: users", meta); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := s.UpsertEntityDocument(ctx, "Table:app.users", "Table: users (v2)", meta); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats["entity_documents"] != 1 {
		t.Errorf("expected 1 document row after double upsert, got %d", stats["entity_documents"])
	}

	doc, err := s.Document(ctx, "Table:app.users")
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}
	if doc.Content != "Table: users (v2)" {
		t.Errorf("later upsert should win, got %q", doc.Content)
	}
	if doc.Metadata["database"] != "app" {
		t.Errorf("metadata lost: %+v", doc.Metadata)
	}
}

func TestDocumentNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Document(context.Background(), "Table:nope.nothing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertEntityDocumentEmptyID(t *testing.T) {
	s := openTestStore(t)
	if err := s.UpsertEntityDocument(context.Background(), "", "text", nil); err == nil {
		t.Error("empty id should be rejected")
	}
}

func TestUpsertRelationshipIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	meta := map[string]any{"weight": 1.5}
	for i := 0; i < 2; i++ {
		if err := s.UpsertRelationship(ctx, "Database:app", "Table:app.users", "HAS_TABLE", meta); err != nil {
			t.Fatalf("upsert %d failed: %v", i, err)
		}
	}

	stats, _ := s.Stats()
	if stats["schema_graph"] != 1 {
		t.Errorf("expected 1 edge row after double upsert, got %d", stats["schema_graph"])
	}

	links, err := s.Links(ctx, "Database:app", "outgoing")
	if err != nil {
		t.Fatalf("Links failed: %v", err)
	}
	if len(links) != 1 || links[0].Weight != 1.5 {
		t.Errorf("links = %+v", links)
	}
}

func TestLinksDirections(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mustLink := func(src, dst, kind string, weight float64) {
		t.Helper()
		if err := s.UpsertRelationship(ctx, src, dst, kind, map[string]any{"weight": weight}); err != nil {
			t.Fatalf("UpsertRelationship failed: %v", err)
		}
	}
	mustLink("Database:app", "Table:app.users", "HAS_TABLE", 1.5)
	mustLink("Table:app.users", "Column:app.users.id", "HAS_COLUMN", 1.0)
	mustLink("Table:app.orders", "Table:app.users", "REFERENCES", 2.0)

	out, _ := s.Links(ctx, "Table:app.users", "outgoing")
	if len(out) != 1 || out[0].TargetID != "Column:app.users.id" {
		t.Errorf("outgoing = %+v", out)
	}
	in, _ := s.Links(ctx, "Table:app.users", "incoming")
	if len(in) != 2 {
		t.Fatalf("incoming = %+v", in)
	}
	// Heaviest first.
	if in[0].Kind != "REFERENCES" {
		t.Errorf("incoming order wrong: %+v", in)
	}
	both, _ := s.Links(ctx, "Table:app.users", "both")
	if len(both) != 3 {
		t.Errorf("both = %+v", both)
	}
}

func TestTraversePath(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	edges := [][3]string{
		{"Database:app", "Table:app.users", "HAS_TABLE"},
		{"Table:app.users", "Column:app.users.email", "HAS_COLUMN"},
		{"Table:app.orders", "Table:app.users", "REFERENCES"},
	}
	for _, e := range edges {
		if err := s.UpsertRelationship(ctx, e[0], e[1], e[2], nil); err != nil {
			t.Fatalf("UpsertRelationship failed: %v", err)
		}
	}

	path, err := s.TraversePath(ctx, "Database:app", "Column:app.users.email", 5)
	if err != nil {
		t.Fatalf("TraversePath failed: %v", err)
	}
	if len(path) != 2 {
		t.Fatalf("path length = %d, want 2", len(path))
	}
	if path[0].Kind != "HAS_TABLE" || path[1].Kind != "HAS_COLUMN" {
		t.Errorf("path = %+v", path)
	}

	if _, err := s.TraversePath(ctx, "Column:app.users.email", "Database:app", 5); err == nil {
		t.Error("no outgoing path exists, expected an error")
	}
}

func TestKeywordRecall(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	docs := map[string]string{
		"Table:app.users":        "Table: users\nAccount holders with email addresses",
		"Table:app.orders":       "Table: orders\nCustomer purchases",
		"Column:app.users.email": "Column: email\nLogin address",
	}
	for id, content := range docs {
		if err := s.UpsertEntityDocument(ctx, id, content, nil); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	results, err := s.SemanticRecall(ctx, "email", 10)
	if err != nil {
		t.Fatalf("SemanticRecall failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 keyword hits, got %d", len(results))
	}
	for _, res := range results {
		if !strings.Contains(strings.ToLower(res.Content), "email") {
			t.Errorf("result %s does not mention the keyword", res.ID)
		}
	}

	empty, err := s.SemanticRecall(ctx, "   ", 10)
	if err != nil || empty != nil {
		t.Errorf("blank query should return nothing, got %v, %v", empty, err)
	}
}

func TestSemanticRecallWithEngine(t *testing.T) {
	s := openTestStore(t)
	s.SetEmbeddingEngine(&stubEngine{})
	ctx := context.Background()

	if err := s.UpsertEntityDocument(ctx, "Table:app.users", "users and their email addresses", nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := s.UpsertEntityDocument(ctx, "Table:app.orders", "orders and totals", nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	results, err := s.SemanticRecall(ctx, "email", 1)
	if err != nil {
		t.Fatalf("SemanticRecall failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ID != "Table:app.users" {
		t.Errorf("best match = %s", results[0].ID)
	}
	if results[0].Score <= 0 {
		t.Errorf("score = %v", results[0].Score)
	}
}

// stubEngine embeds text as keyword indicator vectors so similarity is
// predictable in tests.
type stubEngine struct{}

var stubVocab = []string{"email", "users", "orders", "totals"}

func (stubEngine) Embed(ctx context.Context, text string) ([]float64, error) {
	vec := make([]float64, len(stubVocab))
	lower := strings.ToLower(text)
	for i, word := range stubVocab {
		if strings.Contains(lower, word) {
			vec[i] = 1
		}
	}
	return vec, nil
}

func (e stubEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i], _ = e.Embed(ctx, text)
	}
	return out, nil
}

func (stubEngine) Dimensions() int { return len(stubVocab) }
func (stubEngine) Name() string    { return "stub" }
