// Package sqlparse turns raw MySQL and PostgreSQL DDL dumps into typed
// statement records. Parsing is best-effort: malformed statements are
// skipped with a recorded warning and never abort the file.
package sqlparse

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var (
	reCreateTable = regexp.MustCompile(`(?is)^CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?([^\s(]+)\s*\(`)

	reAlterPK = regexp.MustCompile(
		`(?is)^ALTER\s+TABLE\s+(?:ONLY\s+)?(\S+)\s+ADD\s+(?:CONSTRAINT\s+\S+\s+)?PRIMARY\s+KEY\s*\(([^)]+)\)`)
	reAlterFK = regexp.MustCompile(
		`(?is)^ALTER\s+TABLE\s+(?:ONLY\s+)?(\S+)\s+ADD\s+CONSTRAINT\s+(\S+)\s+FOREIGN\s+KEY\s*\(([^)]+)\)\s*` +
			`REFERENCES\s+([^\s(]+)\s*\(([^)]+)\)` + fkActions)

	reCommentTable  = regexp.MustCompile(`(?is)^COMMENT\s+ON\s+TABLE\s+(\S+)\s+IS\s+'((?:[^']|'')*)'`)
	reCommentColumn = regexp.MustCompile(`(?is)^COMMENT\s+ON\s+COLUMN\s+(\S+)\s+IS\s+'((?:[^']|'')*)'`)

	rePKClause = regexp.MustCompile(`(?is)^(?:CONSTRAINT\s+\S+\s+)?PRIMARY\s+KEY\s*\(([^)]+)\)`)
	reFKClause = regexp.MustCompile(
		`(?is)^(?:CONSTRAINT\s+(\S+)\s+)?FOREIGN\s+KEY\s*\(([^)]+)\)\s*REFERENCES\s+([^\s(]+)\s*\(([^)]+)\)` + fkActions)
	reIndexClause  = regexp.MustCompile(`(?is)^(UNIQUE\s+)?(?:FULLTEXT\s+|SPATIAL\s+)?(?:KEY|INDEX)\s*([^\s(]+)?\s*\(([^)]+)\)`)
	reUniqueClause = regexp.MustCompile(`(?is)^(?:CONSTRAINT\s+(\S+)\s+)?UNIQUE\s*\(([^)]+)\)`)

	reTypeToken = regexp.MustCompile(
		`(?is)^([a-z_][a-z0-9_]*(?:\s+varying|\s+precision)?(?:\s*\([^)]*\))?(?:\s+(?:with|without)\s+time\s+zone)?)(.*)$`)
	reDefault   = regexp.MustCompile(`(?is)\bDEFAULT\s+('(?:[^']|'')*'|\([^)]*\)|[^\s,]+)`)
	reComment   = regexp.MustCompile(`(?is)\bCOMMENT\s+'((?:[^']|'')*)'`)
	reInlineRef = regexp.MustCompile(`(?is)\bREFERENCES\s+([^\s(]+)\s*\(([^)]+)\)` + fkActions)

	reOptEngine  = regexp.MustCompile(`(?i)\bENGINE\s*=\s*(\w+)`)
	reOptCharset = regexp.MustCompile(`(?i)\bCHARSET\s*=\s*(\w+)`)
	reOptCollate = regexp.MustCompile(`(?i)\bCOLLATE\s*=\s*(\w+)`)
	reOptComment = regexp.MustCompile(`(?i)\bCOMMENT\s*=\s*'((?:[^']|'')*)'`)
)

const fkActions = `(?:\s+ON\s+DELETE\s+(CASCADE|RESTRICT|SET\s+NULL|SET\s+DEFAULT|NO\s+ACTION))?` +
	`(?:\s+ON\s+UPDATE\s+(CASCADE|RESTRICT|SET\s+NULL|SET\s+DEFAULT|NO\s+ACTION))?`

// Warning records a statement or clause that could not be parsed.
type Warning struct {
	Table  string
	Reason string
}

func (w Warning) String() string {
	if w.Table == "" {
		return w.Reason
	}
	return fmt.Sprintf("%s: %s", w.Table, w.Reason)
}

// Parser parses one dialect's DDL text into statements.
type Parser struct {
	dialect  Dialect
	log      *zap.Logger
	warnings []Warning
}

// New returns a Parser for the given dialect. A nil logger is replaced
// with a no-op logger.
func New(dialect Dialect, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{dialect: dialect, log: log}
}

// Warnings returns the warnings recorded by previous Parse calls.
func (p *Parser) Warnings() []Warning {
	return p.warnings
}

func (p *Parser) warn(table, reason string) {
	p.warnings = append(p.warnings, Warning{Table: table, Reason: reason})
	p.log.Warn("skipping unparseable DDL",
		zap.String("table", table),
		zap.String("reason", reason),
		zap.String("dialect", string(p.dialect)))
}

// Parse splits sql into statements and classifies each one. Statement order
// follows the source file; that order becomes column declaration order.
func (p *Parser) Parse(sql string) []Statement {
	var stmts []Statement
	for _, raw := range SplitStatements(sql) {
		if st := p.classify(raw); st != nil {
			stmts = append(stmts, *st)
		}
	}
	p.log.Debug("parsed DDL input",
		zap.String("dialect", string(p.dialect)),
		zap.Int("statements", len(stmts)),
		zap.Int("warnings", len(p.warnings)))
	return stmts
}

func (p *Parser) classify(raw string) *Statement {
	upper := strings.ToUpper(raw)
	switch {
	case strings.HasPrefix(upper, "CREATE TABLE"):
		return p.parseCreateTableStmt(raw)

	case strings.HasPrefix(upper, "ALTER TABLE"):
		if m := reAlterFK.FindStringSubmatch(raw); m != nil {
			table := cleanIdent(m[1])
			return &Statement{
				Kind:  StmtAddForeignKey,
				Table: table,
				Raw:   raw,
				ForeignKey: &ForeignKeyClause{
					ConstraintName: cleanIdent(m[2]),
					Columns:        splitIdentList(m[3]),
					RefTable:       cleanIdent(m[4]),
					RefColumns:     splitIdentList(m[5]),
					OnDelete:       normalizeAction(m[6]),
					OnUpdate:       normalizeAction(m[7]),
				},
			}
		}
		if m := reAlterPK.FindStringSubmatch(raw); m != nil {
			return &Statement{
				Kind:       StmtAddPrimaryKey,
				Table:      cleanIdent(m[1]),
				Raw:        raw,
				PrimaryKey: splitIdentList(m[2]),
			}
		}
		if strings.Contains(upper, "FOREIGN KEY") || strings.Contains(upper, "PRIMARY KEY") {
			p.warn(guessAlterTarget(raw), "unparseable ALTER TABLE constraint")
			return nil
		}
		return &Statement{Kind: StmtOther, Raw: raw}

	case strings.HasPrefix(upper, "COMMENT ON TABLE"):
		if m := reCommentTable.FindStringSubmatch(raw); m != nil {
			return &Statement{
				Kind:    StmtTableComment,
				Table:   cleanIdent(m[1]),
				Raw:     raw,
				Comment: unescapeQuotes(m[2]),
			}
		}
		p.warn("", "unparseable COMMENT ON TABLE")
		return nil

	case strings.HasPrefix(upper, "COMMENT ON COLUMN"):
		if m := reCommentColumn.FindStringSubmatch(raw); m != nil {
			table, column := splitColumnRef(m[1])
			if table == "" || column == "" {
				p.warn("", "unparseable COMMENT ON COLUMN target")
				return nil
			}
			return &Statement{
				Kind:    StmtColumnComment,
				Table:   table,
				Column:  column,
				Raw:     raw,
				Comment: unescapeQuotes(m[2]),
			}
		}
		p.warn("", "unparseable COMMENT ON COLUMN")
		return nil
	}
	return &Statement{Kind: StmtOther, Raw: raw}
}

func (p *Parser) parseCreateTableStmt(raw string) *Statement {
	m := reCreateTable.FindStringSubmatchIndex(raw)
	if m == nil {
		p.warn("", "unparseable CREATE TABLE statement")
		return nil
	}
	name := cleanIdent(raw[m[2]:m[3]])
	end := matchParen(raw, m[1])
	if end < 0 {
		p.warn(name, "unterminated column list")
		return nil
	}
	body := raw[m[1] : end-1]
	ct := p.parseTableBody(name, body)
	p.parseTableOptions(ct, raw[end:])
	return &Statement{Kind: StmtCreateTable, Table: name, Raw: raw, Create: ct}
}

func (p *Parser) parseTableBody(name, body string) *CreateTable {
	ct := &CreateTable{Name: name}
	for _, clause := range splitClauses(body) {
		upper := strings.ToUpper(clause)
		switch {
		case rePKClause.MatchString(clause):
			m := rePKClause.FindStringSubmatch(clause)
			ct.PrimaryKey = append(ct.PrimaryKey, splitIdentList(m[1])...)

		case leadingKeyword(upper, "CONSTRAINT") || leadingKeyword(upper, "FOREIGN KEY"):
			if m := reFKClause.FindStringSubmatch(clause); m != nil {
				ct.ForeignKeys = append(ct.ForeignKeys, ForeignKeyClause{
					ConstraintName: cleanIdent(m[1]),
					Columns:        splitIdentList(m[2]),
					RefTable:       cleanIdent(m[3]),
					RefColumns:     splitIdentList(m[4]),
					OnDelete:       normalizeAction(m[5]),
					OnUpdate:       normalizeAction(m[6]),
				})
				continue
			}
			if m := reUniqueClause.FindStringSubmatch(clause); m != nil {
				ct.Indexes = append(ct.Indexes, IndexClause{
					Name:    cleanIdent(m[1]),
					Columns: splitIdentList(m[2]),
					Unique:  true,
				})
				continue
			}
			if strings.Contains(upper, "CHECK") {
				continue // CHECK constraints carry no catalog information
			}
			p.warn(name, fmt.Sprintf("unparseable constraint clause: %s", firstWords(clause, 4)))

		case leadingKeyword(upper, "KEY") || leadingKeyword(upper, "INDEX") ||
			leadingKeyword(upper, "UNIQUE") || leadingKeyword(upper, "FULLTEXT") ||
			leadingKeyword(upper, "SPATIAL"):
			if m := reIndexClause.FindStringSubmatch(clause); m != nil {
				ct.Indexes = append(ct.Indexes, IndexClause{
					Name:    cleanIdent(m[2]),
					Columns: splitIdentList(m[3]),
					Unique:  strings.TrimSpace(m[1]) != "",
				})
				continue
			}
			if m := reUniqueClause.FindStringSubmatch(clause); m != nil {
				ct.Indexes = append(ct.Indexes, IndexClause{Columns: splitIdentList(m[2]), Unique: true})
				continue
			}
			p.warn(name, fmt.Sprintf("unparseable index clause: %s", firstWords(clause, 4)))

		case leadingKeyword(upper, "CHECK"):
			// ignore

		default:
			col, err := p.parseColumnClause(clause)
			if err != nil {
				p.warn(name, err.Error())
				continue
			}
			if col.Type == TypeUnknown {
				p.warn(name, fmt.Sprintf("unknown type %q for column %q", col.DeclaredType, col.Name))
			}
			ct.Columns = append(ct.Columns, col)
		}
	}
	return ct
}

func (p *Parser) parseColumnClause(clause string) (ColumnClause, error) {
	name, rest := takeIdent(clause)
	if name == "" || strings.TrimSpace(rest) == "" {
		return ColumnClause{}, fmt.Errorf("unparseable column clause: %s", firstWords(clause, 4))
	}

	m := reTypeToken.FindStringSubmatch(strings.TrimSpace(rest))
	if m == nil {
		return ColumnClause{}, fmt.Errorf("missing type for column %q", name)
	}
	declared := strings.Join(strings.Fields(m[1]), " ")
	attrs := m[2]
	upperAttrs := strings.ToUpper(attrs)

	col := ColumnClause{
		Name:          name,
		DeclaredType:  declared,
		Type:          NormalizeType(declared),
		NotNull:       strings.Contains(upperAttrs, "NOT NULL"),
		PrimaryKey:    strings.Contains(upperAttrs, "PRIMARY KEY"),
		AutoIncrement: strings.Contains(upperAttrs, "AUTO_INCREMENT"),
	}

	if m := reDefault.FindStringSubmatch(attrs); m != nil {
		col.Default = strings.Trim(unescapeQuotes(m[1]), "'")
	}
	if m := reComment.FindStringSubmatch(attrs); m != nil {
		col.Comment = unescapeQuotes(m[1])
	}
	if m := reInlineRef.FindStringSubmatch(attrs); m != nil {
		col.References = &ForeignKeyClause{
			Columns:    []string{name},
			RefTable:   cleanIdent(m[1]),
			RefColumns: splitIdentList(m[2]),
			OnDelete:   normalizeAction(m[3]),
			OnUpdate:   normalizeAction(m[4]),
		}
	}

	// SERIAL pseudo-types and nextval() defaults are PostgreSQL auto-increment.
	lowerDecl := strings.ToLower(declared)
	if strings.Contains(lowerDecl, "serial") || strings.Contains(strings.ToLower(col.Default), "nextval") {
		col.AutoIncrement = true
	}
	return col, nil
}

func (p *Parser) parseTableOptions(ct *CreateTable, options string) {
	if p.dialect != DialectMySQL {
		return
	}
	if m := reOptEngine.FindStringSubmatch(options); m != nil {
		ct.Engine = m[1]
	}
	if m := reOptCharset.FindStringSubmatch(options); m != nil {
		ct.Charset = m[1]
	}
	if m := reOptCollate.FindStringSubmatch(options); m != nil {
		ct.Collation = m[1]
	}
	if m := reOptComment.FindStringSubmatch(options); m != nil {
		ct.Comment = unescapeQuotes(m[1])
	}
}

// ---- identifier helpers ----

// cleanIdent strips quoting and schema qualifiers from an identifier.
func cleanIdent(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "`\"")
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	return strings.Trim(s, "`\"")
}

// splitColumnRef splits a possibly schema-qualified column reference into
// (table, column), taking the last two segments.
func splitColumnRef(s string) (string, string) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	for i := range parts {
		parts[i] = strings.Trim(parts[i], "`\"")
	}
	if len(parts) < 2 {
		return "", ""
	}
	return parts[len(parts)-2], parts[len(parts)-1]
}

func splitIdentList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.Trim(strings.TrimSpace(part), "`\" "); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// takeIdent consumes a leading (possibly quoted) identifier.
func takeIdent(s string) (string, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	if s[0] == '`' || s[0] == '"' {
		if i := strings.IndexByte(s[1:], s[0]); i >= 0 {
			return s[1 : i+1], s[i+2:]
		}
		return "", ""
	}
	i := 0
	for i < len(s) && (isWordByte(s[i])) {
		i++
	}
	return s[:i], s[i:]
}

// leadingKeyword reports whether an upper-cased clause starts with kw as a
// whole word. Columns like check_in or keywords start with a keyword but
// continue with a word byte, so they are column definitions, not
// constraints.
func leadingKeyword(upper, kw string) bool {
	if !strings.HasPrefix(upper, kw) {
		return false
	}
	return len(upper) == len(kw) || !isWordByte(upper[len(kw)])
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func normalizeAction(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

func unescapeQuotes(s string) string {
	return strings.ReplaceAll(s, "''", "'")
}

func firstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

func guessAlterTarget(raw string) string {
	fields := strings.Fields(raw)
	for i, f := range fields {
		if strings.EqualFold(f, "TABLE") && i+1 < len(fields) {
			next := fields[i+1]
			if strings.EqualFold(next, "ONLY") && i+2 < len(fields) {
				next = fields[i+2]
			}
			return cleanIdent(next)
		}
	}
	return ""
}
