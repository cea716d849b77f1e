package catalog

import (
	"fmt"
	"strings"

	"schemakb/internal/schema"
)

// Description texts are what gets embedded, so they spell out the facts a
// natural-language question would mention: names, types, relationships.

func describeDatabase(db *schema.Database) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Database: %s\n", db.Name)
	fmt.Fprintf(&b, "Type: %s\n", db.Dialect)
	if db.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", db.Description)
	}
	fmt.Fprintf(&b, "Tables: %d", len(db.Tables))
	return b.String()
}

func describeTable(db *schema.Database, t *schema.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table: %s\n", t.Name)
	fmt.Fprintf(&b, "Database: %s (%s)\n", db.Name, db.Dialect)
	if t.Engine != "" {
		fmt.Fprintf(&b, "Engine: %s\n", t.Engine)
	}
	if t.Comment != "" {
		fmt.Fprintf(&b, "Comment: %s\n", t.Comment)
	}
	b.WriteString("\nColumns:\n")
	b.WriteString(formatColumns(t))
	b.WriteString("\n\nForeign Keys:\n")
	b.WriteString(formatForeignKeys(t))
	return b.String()
}

func describeColumn(db *schema.Database, t *schema.Table, c *schema.Column, position int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Column: %s\n", c.Name)
	fmt.Fprintf(&b, "Table: %s\n", t.Name)
	fmt.Fprintf(&b, "Database: %s\n", db.Name)
	fmt.Fprintf(&b, "Data Type: %s (%s)\n", c.DeclaredType, c.Type)
	fmt.Fprintf(&b, "Nullable: %t\n", c.Nullable)
	fmt.Fprintf(&b, "Position: %d\n", position)
	fmt.Fprintf(&b, "Primary Key: %t\n", c.PrimaryKey)
	fmt.Fprintf(&b, "Foreign Key: %t\n", c.ForeignKey)
	if c.Default != "" {
		fmt.Fprintf(&b, "Default: %s\n", c.Default)
	}
	if c.Comment != "" {
		fmt.Fprintf(&b, "Comment: %s\n", c.Comment)
	}
	return strings.TrimRight(b.String(), "\n")
}

func describeOwner(o Owner) string {
	if o.Email != "" {
		return fmt.Sprintf("Owner: %s (%s)", o.Name, o.Email)
	}
	return fmt.Sprintf("Owner: %s", o.Name)
}

func describeTag(t Tag) string {
	if t.Description != "" {
		return fmt.Sprintf("Tag: %s\n%s", t.Name, t.Description)
	}
	return fmt.Sprintf("Tag: %s", t.Name)
}

// describeReference renders a REFERENCES edge including the join pattern a
// query author would write, which makes the edge itself retrievable.
func describeReference(srcDB, srcTable string, fk *schema.ForeignKey, targetDB string) string {
	ref := fk.RefTable
	var b strings.Builder
	fmt.Fprintf(&b, "Foreign Key Relationship: %s -> %s\n\n", srcTable, ref)
	b.WriteString("Column Mapping:\n")
	for i, col := range fk.Columns {
		refCol := ""
		if i < len(fk.RefColumns) {
			refCol = fk.RefColumns[i]
		}
		fmt.Fprintf(&b, "- %s.%s references %s.%s\n", srcTable, col, ref, refCol)
	}
	if targetDB != "" && targetDB != srcDB {
		fmt.Fprintf(&b, "\nTarget database: %s\n", targetDB)
	}
	if len(fk.Columns) > 0 && len(fk.RefColumns) > 0 {
		fmt.Fprintf(&b, "\nJoin Pattern:\nSELECT * FROM %s JOIN %s ON %s.%s = %s.%s",
			srcTable, ref, srcTable, fk.Columns[0], ref, fk.RefColumns[0])
	}
	return b.String()
}

func formatColumns(t *schema.Table) string {
	if len(t.Columns) == 0 {
		return "No columns"
	}
	var lines []string
	for _, c := range t.Columns {
		line := fmt.Sprintf("- %s: %s", c.Name, c.DeclaredType)
		if !c.Nullable {
			line += " NOT NULL"
		}
		if c.PrimaryKey {
			line += " PRIMARY KEY"
		}
		if c.Comment != "" {
			line += " -- " + c.Comment
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatForeignKeys(t *schema.Table) string {
	if len(t.ForeignKeys) == 0 {
		return "No foreign keys"
	}
	var lines []string
	for _, fk := range t.ForeignKeys {
		lines = append(lines, fmt.Sprintf("- %s -> %s(%s)",
			strings.Join(fk.Columns, ", "), fk.RefTable, strings.Join(fk.RefColumns, ", ")))
	}
	return strings.Join(lines, "\n")
}
