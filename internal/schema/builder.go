package schema

import (
	"fmt"

	"go.uber.org/zap"

	"schemakb/internal/sqlparse"
)

// Builder converts one dialect's statement stream into a Database model.
// Statement-level recovery happens in the parser; the builder only records
// model-level warnings (duplicate definitions, constraints against unknown
// tables).
type Builder struct {
	log      *zap.Logger
	warnings []string
}

// NewBuilder returns a Builder. A nil logger is replaced with a no-op logger.
func NewBuilder(log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{log: log}
}

// Warnings returns warnings recorded by previous Build calls.
func (b *Builder) Warnings() []string {
	return b.warnings
}

func (b *Builder) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	b.warnings = append(b.warnings, msg)
	b.log.Warn(msg)
}

// Build assembles the Database for one parsed source. A duplicate CREATE
// TABLE overwrites the earlier definition; the later one wins.
func (b *Builder) Build(name, description string, dialect sqlparse.Dialect, stmts []sqlparse.Statement) *Database {
	db := &Database{Name: name, Dialect: dialect, Description: description}

	for _, st := range stmts {
		switch st.Kind {
		case sqlparse.StmtCreateTable:
			table := buildTable(st.Create)
			if prev := db.Table(table.Name); prev != nil {
				b.warnf("duplicate definition of table %q in %s; later definition wins", table.Name, name)
				*prev = *table
			} else {
				db.Tables = append(db.Tables, table)
			}

		case sqlparse.StmtAddPrimaryKey:
			t := db.Table(st.Table)
			if t == nil {
				b.warnf("primary key constraint for unknown table %q in %s", st.Table, name)
				continue
			}
			markPrimaryKeys(t, st.PrimaryKey)

		case sqlparse.StmtAddForeignKey:
			t := db.Table(st.Table)
			if t == nil {
				b.warnf("foreign key constraint for unknown table %q in %s", st.Table, name)
				continue
			}
			addForeignKey(t, clauseToForeignKey(*st.ForeignKey))

		case sqlparse.StmtTableComment:
			if t := db.Table(st.Table); t != nil {
				t.Comment = st.Comment
			}

		case sqlparse.StmtColumnComment:
			if t := db.Table(st.Table); t != nil {
				if c := t.Column(st.Column); c != nil {
					c.Comment = st.Comment
				}
			}
		}
	}

	for _, t := range db.Tables {
		markForeignKeyColumns(t)
	}

	b.log.Info("built schema model",
		zap.String("database", name),
		zap.String("dialect", string(dialect)),
		zap.Int("tables", len(db.Tables)))
	return db
}

func buildTable(ct *sqlparse.CreateTable) *Table {
	t := &Table{
		Name:      ct.Name,
		Comment:   ct.Comment,
		Engine:    ct.Engine,
		Charset:   ct.Charset,
		Collation: ct.Collation,
	}

	for _, cc := range ct.Columns {
		col := &Column{
			Name:          cc.Name,
			DeclaredType:  cc.DeclaredType,
			Type:          cc.Type,
			Nullable:      !cc.NotNull,
			Default:       cc.Default,
			Comment:       cc.Comment,
			PrimaryKey:    cc.PrimaryKey,
			AutoIncrement: cc.AutoIncrement,
		}
		t.Columns = append(t.Columns, col)
		if col.PrimaryKey {
			t.PrimaryKeys = append(t.PrimaryKeys, col.Name)
		}
		if cc.References != nil {
			addForeignKey(t, clauseToForeignKey(*cc.References))
		}
	}

	markPrimaryKeys(t, ct.PrimaryKey)
	for _, fk := range ct.ForeignKeys {
		addForeignKey(t, clauseToForeignKey(fk))
	}
	for _, ix := range ct.Indexes {
		t.Indexes = append(t.Indexes, &Index{Name: ix.Name, Columns: ix.Columns, Unique: ix.Unique})
	}
	return t
}

func clauseToForeignKey(fk sqlparse.ForeignKeyClause) *ForeignKey {
	return &ForeignKey{
		ConstraintName: fk.ConstraintName,
		Columns:        fk.Columns,
		RefTable:       fk.RefTable,
		RefColumns:     fk.RefColumns,
		OnDelete:       fk.OnDelete,
		OnUpdate:       fk.OnUpdate,
	}
}

// addForeignKey merges inline and out-of-line declarations into one set.
// The first occurrence of a (source columns, target table) pair wins.
func addForeignKey(t *Table, fk *ForeignKey) {
	for _, existing := range t.ForeignKeys {
		if existing.Key() == fk.Key() {
			return
		}
	}
	t.ForeignKeys = append(t.ForeignKeys, fk)
}

// markPrimaryKeys flags columns named in a table-level PRIMARY KEY clause.
// A column is primary-key if declared inline OR listed here.
func markPrimaryKeys(t *Table, cols []string) {
	for _, name := range cols {
		if c := t.Column(name); c != nil && !c.PrimaryKey {
			c.PrimaryKey = true
			t.PrimaryKeys = append(t.PrimaryKeys, name)
		}
	}
}

func markForeignKeyColumns(t *Table) {
	for _, fk := range t.ForeignKeys {
		for _, name := range fk.Columns {
			if c := t.Column(name); c != nil {
				c.ForeignKey = true
			}
		}
	}
}
