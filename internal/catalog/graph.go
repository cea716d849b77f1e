// Package catalog merges per-dialect schema models into a unified entity
// graph with stable identifiers, ready for upsert into the vector and
// graph sinks.
package catalog

// EntityKind distinguishes the node types of the entity graph.
type EntityKind string

const (
	KindDatabase EntityKind = "database"
	KindTable    EntityKind = "table"
	KindColumn   EntityKind = "column"
	KindOwner    EntityKind = "owner"
	KindTag      EntityKind = "tag"
)

// EdgeKind distinguishes relationship edges.
type EdgeKind string

const (
	EdgeHasTable   EdgeKind = "HAS_TABLE"
	EdgeHasColumn  EdgeKind = "HAS_COLUMN"
	EdgeReferences EdgeKind = "REFERENCES"
	EdgeTagged     EdgeKind = "TAGGED"
	EdgeOwnedBy    EdgeKind = "OWNED_BY"
)

// Edge weights mirror how strongly each relationship should pull during
// graph-aware retrieval.
const (
	weightHasTable   = 1.5
	weightHasColumn  = 1.0
	weightReferences = 2.0
	weightTagged     = 0.8
	weightOwnedBy    = 1.0
)

// Document is one entity rendered as a retrievable text record. Text is the
// human-readable description used for embedding.
type Document struct {
	ID       string
	Kind     EntityKind
	Text     string
	Metadata map[string]any
}

// Relationship is one edge between two entity identifiers.
type Relationship struct {
	SourceID string
	TargetID string
	Kind     EdgeKind
	Weight   float64
	Metadata map[string]any
}

// Graph is the unified output of a catalog build: every entity as a
// document plus every relationship edge, in deterministic order.
type Graph struct {
	Documents     []Document
	Relationships []Relationship
}
