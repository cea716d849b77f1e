package sqlparse

// StatementKind tags a parsed DDL statement.
type StatementKind string

const (
	StmtCreateTable   StatementKind = "create_table"
	StmtAddPrimaryKey StatementKind = "add_primary_key"
	StmtAddForeignKey StatementKind = "add_foreign_key"
	StmtTableComment  StatementKind = "table_comment"
	StmtColumnComment StatementKind = "column_comment"
	StmtOther         StatementKind = "other"
)

// Statement is one parsed DDL statement in source order. Exactly one of the
// kind-specific fields is populated, matching Kind.
type Statement struct {
	Kind  StatementKind
	Table string
	Raw   string

	Create     *CreateTable      // StmtCreateTable
	PrimaryKey []string          // StmtAddPrimaryKey
	ForeignKey *ForeignKeyClause // StmtAddForeignKey
	Column     string            // StmtColumnComment
	Comment    string            // StmtTableComment / StmtColumnComment
}

// CreateTable carries everything extracted from a CREATE TABLE statement.
type CreateTable struct {
	Name        string
	Comment     string
	Engine      string
	Charset     string
	Collation   string
	Columns     []ColumnClause
	PrimaryKey  []string
	ForeignKeys []ForeignKeyClause
	Indexes     []IndexClause
}

// ColumnClause is a single column definition inside a CREATE TABLE body.
type ColumnClause struct {
	Name          string
	DeclaredType  string
	Type          SemanticType
	NotNull       bool
	Default       string
	Comment       string
	PrimaryKey    bool
	AutoIncrement bool
	References    *ForeignKeyClause // inline REFERENCES target(col)
}

// ForeignKeyClause is a foreign key in either inline or out-of-line form.
type ForeignKeyClause struct {
	ConstraintName string
	Columns        []string
	RefTable       string
	RefColumns     []string
	OnDelete       string
	OnUpdate       string
}

// IndexClause is a KEY / INDEX / UNIQUE definition inside a table body.
type IndexClause struct {
	Name    string
	Columns []string
	Unique  bool
}
