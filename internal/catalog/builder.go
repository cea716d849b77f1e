package catalog

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"schemakb/internal/schema"
)

// Builder walks schema models in order and emits the unified entity graph.
// Build is pure apart from logging: the same models and options always
// produce the same documents and relationships in the same order.
type Builder struct {
	opts Options
	log  *zap.Logger
}

func NewBuilder(opts Options, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{opts: opts, log: log}
}

// Build merges the parsed models into one Graph and reports what it saw.
// Models are walked in slice order, tables and columns in declaration
// order. Owner and tag documents are appended after all structural
// entities, sorted by name, and only for owners and tags actually in use.
func (b *Builder) Build(models []*schema.Database) (*Graph, *Report) {
	g := &Graph{}
	report := NewReport()
	report.Warnings = append(report.Warnings, b.opts.Warnings...)

	usedOwners := map[string]Owner{}
	usedTags := map[string]bool{}

	for _, db := range models {
		b.buildDatabase(g, report, models, db, usedOwners, usedTags)
	}

	for _, name := range sortedOwnerNames(usedOwners) {
		owner := usedOwners[name]
		g.Documents = append(g.Documents, Document{
			ID:   OwnerID(name),
			Kind: KindOwner,
			Text: describeOwner(owner),
			Metadata: map[string]any{
				"entity_type": string(KindOwner),
				"name":        owner.Name,
				"email":       owner.Email,
			},
		})
	}
	for _, name := range sortedKeys(usedTags) {
		tag := Tag{Name: name, Description: b.opts.tagDescription(name)}
		g.Documents = append(g.Documents, Document{
			ID:   TagID(name),
			Kind: KindTag,
			Text: describeTag(tag),
			Metadata: map[string]any{
				"entity_type": string(KindTag),
				"name":        tag.Name,
				"description": tag.Description,
			},
		})
	}

	b.log.Info("catalog built",
		zap.Int("databases", report.Databases),
		zap.Int("tables", report.Tables),
		zap.Int("columns", report.Columns),
		zap.Int("fk_resolved", report.ForeignKeysResolved),
		zap.Int("fk_unresolved", report.ForeignKeysUnresolved))
	return g, report
}

func (b *Builder) buildDatabase(g *Graph, report *Report, models []*schema.Database, db *schema.Database, usedOwners map[string]Owner, usedTags map[string]bool) {
	report.Databases++
	dbID := DatabaseID(db.Name)
	g.Documents = append(g.Documents, Document{
		ID:   dbID,
		Kind: KindDatabase,
		Text: describeDatabase(db),
		Metadata: map[string]any{
			"entity_type": string(KindDatabase),
			"name":        db.Name,
			"dialect":     string(db.Dialect),
			"table_count": len(db.Tables),
		},
	})

	for _, table := range db.Tables {
		b.buildTable(g, report, models, db, table, usedOwners, usedTags)
	}
}

func (b *Builder) buildTable(g *Graph, report *Report, models []*schema.Database, db *schema.Database, table *schema.Table, usedOwners map[string]Owner, usedTags map[string]bool) {
	report.Tables++
	dbID := DatabaseID(db.Name)
	tableID := TableID(db.Name, table.Name)

	g.Documents = append(g.Documents, Document{
		ID:   tableID,
		Kind: KindTable,
		Text: describeTable(db, table),
		Metadata: map[string]any{
			"entity_type":  string(KindTable),
			"database":     db.Name,
			"name":         table.Name,
			"column_count": len(table.Columns),
		},
	})
	g.Relationships = append(g.Relationships, Relationship{
		SourceID: dbID,
		TargetID: tableID,
		Kind:     EdgeHasTable,
		Weight:   weightHasTable,
		Metadata: map[string]any{"description": fmt.Sprintf("Database %s contains table %s", db.Name, table.Name)},
	})

	if owner := b.opts.resolveOwner(table.Name); owner != nil {
		usedOwners[owner.Name] = *owner
		g.Relationships = append(g.Relationships, Relationship{
			SourceID: tableID,
			TargetID: OwnerID(owner.Name),
			Kind:     EdgeOwnedBy,
			Weight:   weightOwnedBy,
			Metadata: map[string]any{"description": fmt.Sprintf("Table %s is owned by %s", table.Name, owner.Name)},
		})
	}

	for _, tag := range tableTags(table, b.opts) {
		usedTags[tag] = true
		g.Relationships = append(g.Relationships, Relationship{
			SourceID: tableID,
			TargetID: TagID(tag),
			Kind:     EdgeTagged,
			Weight:   weightTagged,
			Metadata: map[string]any{"description": fmt.Sprintf("Table %s is tagged %s", table.Name, tag)},
		})
	}

	for i, col := range table.Columns {
		b.buildColumn(g, report, db, table, col, i+1, usedTags)
	}

	for _, fk := range table.ForeignKeys {
		b.buildReference(g, report, models, db, table, fk)
	}
}

func (b *Builder) buildColumn(g *Graph, report *Report, db *schema.Database, table *schema.Table, col *schema.Column, position int, usedTags map[string]bool) {
	report.Columns++
	tableID := TableID(db.Name, table.Name)
	colID := ColumnID(db.Name, table.Name, col.Name)

	g.Documents = append(g.Documents, Document{
		ID:   colID,
		Kind: KindColumn,
		Text: describeColumn(db, table, col, position),
		Metadata: map[string]any{
			"entity_type":   string(KindColumn),
			"database":      db.Name,
			"table":         table.Name,
			"name":          col.Name,
			"declared_type": col.DeclaredType,
			"semantic_type": string(col.Type),
			"nullable":      col.Nullable,
			"position":      position,
			"primary_key":   col.PrimaryKey,
			"foreign_key":   col.ForeignKey,
		},
	})
	g.Relationships = append(g.Relationships, Relationship{
		SourceID: tableID,
		TargetID: colID,
		Kind:     EdgeHasColumn,
		Weight:   weightHasColumn,
		Metadata: map[string]any{"description": fmt.Sprintf("Table %s has column %s (%s)", table.Name, col.Name, col.DeclaredType)},
	})

	for _, tag := range columnTags(table, col, b.opts) {
		usedTags[tag] = true
		g.Relationships = append(g.Relationships, Relationship{
			SourceID: colID,
			TargetID: TagID(tag),
			Kind:     EdgeTagged,
			Weight:   weightTagged,
			Metadata: map[string]any{"description": fmt.Sprintf("Column %s.%s is tagged %s", table.Name, col.Name, tag)},
		})
	}
}

func (b *Builder) buildReference(g *Graph, report *Report, models []*schema.Database, db *schema.Database, table *schema.Table, fk *schema.ForeignKey) {
	srcID := TableID(db.Name, table.Name)

	targetDB, resolved := resolveTarget(models, db, fk.RefTable)
	targetID := unresolvedTableID(fk.RefTable)
	if resolved {
		targetID = TableID(targetDB, fk.RefTable)
		report.ForeignKeysResolved++
	} else {
		report.ForeignKeysUnresolved++
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"unresolved reference: %s.%s(%s) references unknown table %q",
			db.Name, table.Name, strings.Join(fk.Columns, ", "), fk.RefTable))
		b.log.Warn("unresolved foreign key target",
			zap.String("database", db.Name),
			zap.String("table", table.Name),
			zap.String("ref_table", fk.RefTable))
	}

	meta := map[string]any{
		"description": describeReference(db.Name, table.Name, fk, targetDB),
		"columns":     strings.Join(fk.Columns, ","),
		"ref_columns": strings.Join(fk.RefColumns, ","),
		"resolved":    resolved,
	}
	if fk.OnDelete != "" {
		meta["on_delete"] = fk.OnDelete
	}
	if fk.OnUpdate != "" {
		meta["on_update"] = fk.OnUpdate
	}
	g.Relationships = append(g.Relationships, Relationship{
		SourceID: srcID,
		TargetID: targetID,
		Kind:     EdgeReferences,
		Weight:   weightReferences,
		Metadata: meta,
	})
}

// resolveTarget locates a referenced table by exact name, preferring the
// source model and then the remaining models in order.
func resolveTarget(models []*schema.Database, src *schema.Database, table string) (string, bool) {
	if src.Table(table) != nil {
		return src.Name, true
	}
	for _, db := range models {
		if db == src {
			continue
		}
		if db.Table(table) != nil {
			return db.Name, true
		}
	}
	return "", false
}

func sortedOwnerNames(owners map[string]Owner) []string {
	names := make([]string, 0, len(owners))
	for name := range owners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
