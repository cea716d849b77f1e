package catalog

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"schemakb/internal/schema"
	"schemakb/internal/sqlparse"
)

func buildModels(t *testing.T) []*schema.Database {
	t.Helper()

	appStmts := sqlparse.New(sqlparse.DialectMySQL, nil).Parse(`
CREATE TABLE users (
  id int NOT NULL AUTO_INCREMENT,
  email varchar(255) NOT NULL,
  password_hash varchar(60) NOT NULL,
  created_at datetime DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id)
) ENGINE=InnoDB COMMENT='Account holders';

CREATE TABLE bookings (
  id int NOT NULL,
  user_id int NOT NULL,
  listing_id int,
  PRIMARY KEY (id),
  CONSTRAINT fk_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
  CONSTRAINT fk_listing FOREIGN KEY (listing_id) REFERENCES listings (id)
);
`)
	app := schema.NewBuilder(nil).Build("app", "booking platform", sqlparse.DialectMySQL, appStmts)

	invStmts := sqlparse.New(sqlparse.DialectPostgreSQL, nil).Parse(`
CREATE TABLE listings (id bigint NOT NULL, title text);
ALTER TABLE ONLY listings ADD CONSTRAINT listings_pkey PRIMARY KEY (id);
`)
	inventory := schema.NewBuilder(nil).Build("inventory", "", sqlparse.DialectPostgreSQL, invStmts)

	return []*schema.Database{app, inventory}
}

func findDoc(g *Graph, id string) *Document {
	for i := range g.Documents {
		if g.Documents[i].ID == id {
			return &g.Documents[i]
		}
	}
	return nil
}

func findRel(g *Graph, source, target string, kind EdgeKind) *Relationship {
	for i := range g.Relationships {
		r := &g.Relationships[i]
		if r.SourceID == source && r.TargetID == target && r.Kind == kind {
			return r
		}
	}
	return nil
}

func TestBuildEmitsHierarchy(t *testing.T) {
	models := buildModels(t)
	g, report := NewBuilder(Options{Heuristics: true}, nil).Build(models)

	if report.Databases != 2 || report.Tables != 3 || report.Columns != 9 {
		t.Fatalf("report counts wrong: %+v", report)
	}

	for _, id := range []string{
		"Database:app",
		"Table:app.users",
		"Column:app.users.email",
		"Database:inventory",
		"Table:inventory.listings",
	} {
		if findDoc(g, id) == nil {
			t.Errorf("document %s missing", id)
		}
	}

	if rel := findRel(g, "Database:app", "Table:app.users", EdgeHasTable); rel == nil || rel.Weight != 1.5 {
		t.Errorf("HAS_TABLE edge wrong: %+v", rel)
	}
	if rel := findRel(g, "Table:app.users", "Column:app.users.email", EdgeHasColumn); rel == nil || rel.Weight != 1.0 {
		t.Errorf("HAS_COLUMN edge wrong: %+v", rel)
	}
}

func TestBuildResolvesCrossDatabaseReference(t *testing.T) {
	models := buildModels(t)
	g, report := NewBuilder(Options{}, nil).Build(models)

	// bookings.listing_id references listings, which lives in the other model.
	rel := findRel(g, "Table:app.bookings", "Table:inventory.listings", EdgeReferences)
	if rel == nil {
		t.Fatal("cross-database REFERENCES edge missing")
	}
	if rel.Weight != 2.0 {
		t.Errorf("REFERENCES weight = %v", rel.Weight)
	}
	if rel.Metadata["resolved"] != true {
		t.Errorf("edge should be marked resolved: %+v", rel.Metadata)
	}
	desc, _ := rel.Metadata["description"].(string)
	if !strings.Contains(desc, "JOIN listings ON bookings.listing_id = listings.id") {
		t.Errorf("join pattern missing from edge description:\n%s", desc)
	}

	if report.ForeignKeysResolved != 2 || report.ForeignKeysUnresolved != 0 {
		t.Errorf("fk counters = %d/%d", report.ForeignKeysResolved, report.ForeignKeysUnresolved)
	}
}

func TestBuildUnresolvedReference(t *testing.T) {
	stmts := sqlparse.New(sqlparse.DialectMySQL, nil).Parse(`
CREATE TABLE a (id int, ghost_id int, CONSTRAINT fk FOREIGN KEY (ghost_id) REFERENCES ghosts (id));
`)
	db := schema.NewBuilder(nil).Build("solo", "", sqlparse.DialectMySQL, stmts)

	g, report := NewBuilder(Options{}, nil).Build([]*schema.Database{db})

	rel := findRel(g, "Table:solo.a", "Table:ghosts", EdgeReferences)
	if rel == nil {
		t.Fatal("unresolved edge missing; it should still be emitted")
	}
	if rel.Metadata["resolved"] != false {
		t.Errorf("edge should be marked unresolved: %+v", rel.Metadata)
	}
	if report.ForeignKeysUnresolved != 1 {
		t.Errorf("unresolved counter = %d", report.ForeignKeysUnresolved)
	}
	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "ghosts") {
			found = true
		}
	}
	if !found {
		t.Errorf("warning naming the missing table expected, got %v", report.Warnings)
	}
}

func TestBuildHeuristicTags(t *testing.T) {
	models := buildModels(t)
	g, _ := NewBuilder(Options{Heuristics: true}, nil).Build(models)

	if rel := findRel(g, "Column:app.users.email", "Tag:PII", EdgeTagged); rel == nil || rel.Weight != 0.8 {
		t.Errorf("email should be tagged PII: %+v", rel)
	}
	if rel := findRel(g, "Column:app.users.password_hash", "Tag:Authentication", EdgeTagged); rel == nil {
		t.Error("password_hash should be tagged Authentication")
	}
	if rel := findRel(g, "Column:app.users.created_at", "Tag:Timestamp", EdgeTagged); rel == nil {
		t.Error("created_at should be tagged Timestamp")
	}
	if rel := findRel(g, "Column:app.users.id", "Tag:Primary_Key", EdgeTagged); rel == nil {
		t.Error("id should be tagged Primary_Key")
	}

	// Tag documents exist only for tags in use.
	if findDoc(g, "Tag:PII") == nil {
		t.Error("used tag should get a document")
	}
	if findDoc(g, "Tag:Enum") != nil {
		t.Error("unused tag should not get a document")
	}
}

func TestBuildOwners(t *testing.T) {
	models := buildModels(t)
	opts := Options{
		DefaultOwner: &Owner{Name: "platform", Email: "platform@example.com"},
		OwnerRules: []OwnerRule{
			{Pattern: "listings", Owner: Owner{Name: "inventory-team"}},
		},
	}
	g, _ := NewBuilder(opts, nil).Build(models)

	if rel := findRel(g, "Table:inventory.listings", "Owner:inventory-team", EdgeOwnedBy); rel == nil {
		t.Error("owner rule not applied")
	}
	if rel := findRel(g, "Table:app.users", "Owner:platform", EdgeOwnedBy); rel == nil {
		t.Error("default owner not applied")
	}
	doc := findDoc(g, "Owner:platform")
	if doc == nil || !strings.Contains(doc.Text, "platform@example.com") {
		t.Errorf("owner document wrong: %+v", doc)
	}
}

func TestBuildZeroOptionsKeepsStructuralTags(t *testing.T) {
	g, _ := NewBuilder(Options{}, nil).Build(buildModels(t))

	if findRel(g, "Column:app.users.id", TagID(TagPrimaryKey), EdgeTagged) == nil {
		t.Error("primary key column should carry a structural tag without heuristics")
	}
	if findRel(g, "Column:app.users.email", TagID(TagRequired), EdgeTagged) == nil {
		t.Error("NOT NULL column should carry the Required tag without heuristics")
	}
	if findRel(g, "Column:app.users.email", TagID(TagPII), EdgeTagged) != nil {
		t.Error("content heuristics must stay off for zero options")
	}
	for _, rel := range g.Relationships {
		if rel.Kind == EdgeOwnedBy {
			t.Fatalf("zero options should emit no ownership edges: %+v", rel)
		}
	}
}

func TestBuildTwoDialectPipeline(t *testing.T) {
	myParser := sqlparse.New(sqlparse.DialectMySQL, nil)
	myStmts := myParser.Parse(`CREATE TABLE users (id INT PRIMARY KEY, email VARCHAR(255));`)
	myBuilder := schema.NewBuilder(nil)
	crm := myBuilder.Build("crm", "", sqlparse.DialectMySQL, myStmts)

	pgParser := sqlparse.New(sqlparse.DialectPostgreSQL, nil)
	pgStmts := pgParser.Parse(`CREATE TABLE bookings (id SERIAL PRIMARY KEY, user_id INT REFERENCES users(id));`)
	pgBuilder := schema.NewBuilder(nil)
	res := pgBuilder.Build("reservations", "", sqlparse.DialectPostgreSQL, pgStmts)

	if n := len(myParser.Warnings()) + len(pgParser.Warnings()); n != 0 {
		t.Fatalf("parser warnings = %d, want 0", n)
	}
	if n := len(myBuilder.Warnings()) + len(pgBuilder.Warnings()); n != 0 {
		t.Fatalf("schema warnings = %d, want 0", n)
	}

	g, report := NewBuilder(Options{}, nil).Build([]*schema.Database{crm, res})

	if report.Databases != 2 || report.Tables != 2 || report.Columns != 4 {
		t.Fatalf("counts = %d/%d/%d, want 2 databases, 2 tables, 4 columns",
			report.Databases, report.Tables, report.Columns)
	}
	if report.ForeignKeysResolved != 1 || report.ForeignKeysUnresolved != 0 {
		t.Fatalf("foreign keys = %d resolved, %d unresolved, want 1/0",
			report.ForeignKeysResolved, report.ForeignKeysUnresolved)
	}
	if len(report.Warnings) != 0 {
		t.Fatalf("warnings = %v, want none", report.Warnings)
	}

	rel := findRel(g, "Table:reservations.bookings", "Table:crm.users", EdgeReferences)
	if rel == nil {
		t.Fatal("missing cross-database REFERENCES edge")
	}
	if rel.Metadata["resolved"] != true {
		t.Fatalf("edge resolved = %v, want true", rel.Metadata["resolved"])
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	opts := Options{Heuristics: true, DefaultOwner: &Owner{Name: "core"}}

	g1, _ := NewBuilder(opts, nil).Build(buildModels(t))
	g2, _ := NewBuilder(opts, nil).Build(buildModels(t))

	if diff := cmp.Diff(g1, g2); diff != "" {
		t.Errorf("two builds of the same input differ (-first +second):\n%s", diff)
	}
}

func TestParseID(t *testing.T) {
	kind, parts, ok := ParseID("Column:app.users.email")
	if !ok || kind != KindColumn || len(parts) != 3 || parts[2] != "email" {
		t.Errorf("ParseID column = %v %v %v", kind, parts, ok)
	}
	kind, parts, ok = ParseID("Table:app.users")
	if !ok || kind != KindTable || parts[1] != "users" {
		t.Errorf("ParseID table = %v %v %v", kind, parts, ok)
	}
	if _, _, ok := ParseID("bogus"); ok {
		t.Error("ParseID should reject identifiers without a kind")
	}
	if _, _, ok := ParseID("Alien:x"); ok {
		t.Error("ParseID should reject unknown kinds")
	}
}
