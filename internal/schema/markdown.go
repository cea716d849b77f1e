package schema

import (
	"fmt"
	"strings"
)

// Markdown renders operator-facing documentation for one table.
func (t *Table) Markdown(database string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", strings.ToUpper(t.Name))
	b.WriteString("## Overview\n")
	fmt.Fprintf(&b, "- **Table**: `%s`\n", t.Name)
	fmt.Fprintf(&b, "- **Database**: %s\n", database)
	if t.Engine != "" {
		fmt.Fprintf(&b, "- **Storage Engine**: %s\n", t.Engine)
	}
	if t.Charset != "" {
		fmt.Fprintf(&b, "- **Character Set**: %s\n", t.Charset)
	}
	if len(t.PrimaryKeys) > 0 {
		fmt.Fprintf(&b, "- **Primary Key**: %s\n", strings.Join(t.PrimaryKeys, ", "))
	} else {
		b.WriteString("- **Primary Key**: not defined\n")
	}
	if t.Comment != "" {
		fmt.Fprintf(&b, "\n**Purpose**: %s\n", t.Comment)
	}

	b.WriteString("\n## Columns\n\n")
	for _, c := range t.Columns {
		fmt.Fprintf(&b, "- **%s**: %s", c.Name, c.DeclaredType)
		if !c.Nullable {
			b.WriteString(" NOT NULL")
		}
		if c.Default != "" {
			fmt.Fprintf(&b, " DEFAULT %s", c.Default)
		}
		if c.Comment != "" {
			fmt.Fprintf(&b, " -- %s", c.Comment)
		}
		b.WriteString("\n")
	}

	if len(t.ForeignKeys) > 0 {
		b.WriteString("\n## Foreign Keys\n\n")
		for _, fk := range t.ForeignKeys {
			fmt.Fprintf(&b, "- **%s** references `%s(%s)`\n",
				strings.Join(fk.Columns, ", "), fk.RefTable, strings.Join(fk.RefColumns, ", "))
			if fk.OnDelete != "" && fk.OnDelete != "NO ACTION" {
				fmt.Fprintf(&b, "  - ON DELETE %s\n", fk.OnDelete)
			}
			if fk.OnUpdate != "" && fk.OnUpdate != "NO ACTION" {
				fmt.Fprintf(&b, "  - ON UPDATE %s\n", fk.OnUpdate)
			}
		}
	}

	if len(t.Indexes) > 0 {
		b.WriteString("\n## Indexes\n\n")
		for _, ix := range t.Indexes {
			name := ix.Name
			if name == "" {
				name = "(unnamed)"
			}
			fmt.Fprintf(&b, "- **%s**: %s", name, strings.Join(ix.Columns, ", "))
			if ix.Unique {
				b.WriteString(" (unique)")
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
