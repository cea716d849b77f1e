package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaEmbed(t *testing.T) {
	var gotModel, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		gotModel, gotPrompt = req.Model, req.Prompt
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float64{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	engine, err := NewOllamaEngine(srv.URL, "test-model")
	if err != nil {
		t.Fatalf("NewOllamaEngine failed: %v", err)
	}

	vec, err := engine.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 3 || vec[1] != 0.2 {
		t.Errorf("vector = %v", vec)
	}
	if gotModel != "test-model" || gotPrompt != "hello" {
		t.Errorf("request = model %q prompt %q", gotModel, gotPrompt)
	}
}

func TestOllamaEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	engine, _ := NewOllamaEngine(srv.URL, "")
	if _, err := engine.Embed(context.Background(), "hello"); err == nil {
		t.Error("expected an error for non-200 response")
	}
}

func TestOllamaEmbedBatch(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float64{float64(calls)}})
	}))
	defer srv.Close()

	engine, _ := NewOllamaEngine(srv.URL, "")
	vecs, err := engine.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if len(vecs) != 3 || calls != 3 {
		t.Errorf("vecs = %v, calls = %d", vecs, calls)
	}
}

func TestOllamaHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	engine, _ := NewOllamaEngine(srv.URL, "")
	if err := engine.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}

	srv.Close()
	if err := engine.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck should fail once the server is down")
	}
}
