package catalog

import "strings"

// Entity identifiers are pure functions of the identity-defining fields so
// repeated builds upsert the same records instead of duplicating them.
//
//	Database:<db>
//	Table:<db>.<table>
//	Column:<db>.<table>.<column>
//	Owner:<name>
//	Tag:<name>

func DatabaseID(db string) string { return "Database:" + db }

func TableID(db, table string) string { return "Table:" + db + "." + table }

func ColumnID(db, table, column string) string {
	return "Column:" + db + "." + table + "." + column
}

func OwnerID(name string) string { return "Owner:" + name }

func TagID(name string) string { return "Tag:" + name }

// unresolvedTableID is the edge target for a foreign key whose table could
// not be located in any parsed model. The database segment is unknowable,
// so the identifier stays unqualified.
func unresolvedTableID(table string) string { return "Table:" + table }

// ParseID splits an entity identifier into its kind and dotted name parts.
// Owner and Tag names may themselves contain dots, so only database-scoped
// kinds are split.
func ParseID(id string) (EntityKind, []string, bool) {
	kind, rest, found := strings.Cut(id, ":")
	if !found || rest == "" {
		return "", nil, false
	}
	switch kind {
	case "Database":
		return KindDatabase, []string{rest}, true
	case "Table":
		parts := strings.SplitN(rest, ".", 2)
		return KindTable, parts, true
	case "Column":
		parts := strings.SplitN(rest, ".", 3)
		return KindColumn, parts, true
	case "Owner":
		return KindOwner, []string{rest}, true
	case "Tag":
		return KindTag, []string{rest}, true
	}
	return "", nil, false
}
