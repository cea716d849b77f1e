// Package schema holds the typed per-dialect schema model built from
// parsed DDL statements.
package schema

import (
	"strings"

	"schemakb/internal/sqlparse"
)

// Database is one schema source: a single SQL dump parsed under one dialect.
type Database struct {
	Name        string
	Dialect     sqlparse.Dialect
	Description string
	Tables      []*Table
}

// Table finds a table by exact name, or nil.
func (d *Database) Table(name string) *Table {
	for _, t := range d.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Table is one table definition. Columns keep declaration order.
type Table struct {
	Name        string
	Comment     string
	Engine      string
	Charset     string
	Collation   string
	Columns     []*Column
	PrimaryKeys []string
	ForeignKeys []*ForeignKey
	Indexes     []*Index
}

// Column finds a column by exact name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Column is one column definition.
type Column struct {
	Name          string
	DeclaredType  string
	Type          sqlparse.SemanticType
	Nullable      bool
	Default       string
	Comment       string
	PrimaryKey    bool
	ForeignKey    bool
	AutoIncrement bool
}

// ForeignKey is a resolved-from-DDL foreign key constraint. Columns and
// RefColumns are parallel for composite keys.
type ForeignKey struct {
	ConstraintName string
	Columns        []string
	RefTable       string
	RefColumns     []string
	OnDelete       string
	OnUpdate       string
}

// Key identifies a foreign key for de-duplication: same source columns plus
// same target table means the same constraint, whichever form declared it.
func (fk *ForeignKey) Key() string {
	return strings.Join(fk.Columns, ",") + "->" + fk.RefTable
}

// Index is a secondary index definition.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}
