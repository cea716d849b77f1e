package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"schemakb/internal/config"
)

func TestParseSourcesPartialCatalog(t *testing.T) {
	logger = zap.NewNop()

	dir := t.TempDir()
	good := filepath.Join(dir, "app.sql")
	sql := "CREATE TABLE users (id int NOT NULL, PRIMARY KEY (id));"
	if err := os.WriteFile(good, []byte(sql), 0644); err != nil {
		t.Fatalf("write dump: %v", err)
	}

	sources := []config.Source{
		{Path: good, Dialect: "mysql", Database: "app"},
		{Path: filepath.Join(dir, "missing.sql"), Dialect: "postgresql", Database: "inventory"},
	}

	models, warnings := parseSources(context.Background(), sources)

	if len(models) != 1 {
		t.Fatalf("expected 1 model from the readable source, got %d", len(models))
	}
	if models[0].Name != "app" || len(models[0].Tables) != 1 {
		t.Errorf("readable source parsed wrong: %+v", models[0])
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning for the unreadable source, got %v", warnings)
	}
	if !strings.Contains(warnings[0], "missing.sql") {
		t.Errorf("warning should name the unreadable file, got %q", warnings[0])
	}
}

func TestParseSourcesBadDialect(t *testing.T) {
	logger = zap.NewNop()

	dir := t.TempDir()
	good := filepath.Join(dir, "app.sql")
	if err := os.WriteFile(good, []byte("CREATE TABLE t (id int);"), 0644); err != nil {
		t.Fatalf("write dump: %v", err)
	}

	sources := []config.Source{
		{Path: good, Dialect: "oracle", Database: "app"},
	}

	models, warnings := parseSources(context.Background(), sources)
	if len(models) != 0 {
		t.Errorf("unsupported dialect should yield no model, got %d", len(models))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "dialect") {
		t.Errorf("expected a dialect warning, got %v", warnings)
	}
}
