package sqlparse

import "strings"

// SemanticType is the dialect-neutral column type used across the catalog.
type SemanticType string

const (
	TypeInteger   SemanticType = "integer"
	TypeDecimal   SemanticType = "decimal"
	TypeText      SemanticType = "text"
	TypeBoolean   SemanticType = "boolean"
	TypeTimestamp SemanticType = "timestamp"
	TypeDate      SemanticType = "date"
	TypeTime      SemanticType = "time"
	TypeBinary    SemanticType = "binary"
	TypeJSON      SemanticType = "json"
	TypeUUID      SemanticType = "uuid"
	TypeEnum      SemanticType = "enum"
	TypeUnknown   SemanticType = "unknown"
)

// NormalizeType maps a vendor type token (e.g. VARCHAR(255), SERIAL,
// "timestamp without time zone") to its SemanticType. Unrecognized tokens
// map to TypeUnknown; the caller decides whether to record a warning.
func NormalizeType(raw string) SemanticType {
	t := strings.ToLower(strings.TrimSpace(raw))

	// MySQL convention: tinyint(1) is a boolean in disguise.
	if t == "tinyint(1)" {
		return TypeBoolean
	}

	// Strip the length/precision suffix: varchar(255) -> varchar.
	if i := strings.IndexByte(t, '('); i >= 0 {
		// Keep any trailing qualifier, e.g. timestamp(6) without time zone.
		tail := ""
		if j := strings.IndexByte(t[i:], ')'); j >= 0 {
			tail = strings.TrimSpace(t[i+j+1:])
		}
		t = strings.TrimSpace(t[:i])
		if tail != "" {
			t = t + " " + tail
		}
	}

	switch t {
	case "int", "integer", "smallint", "mediumint", "bigint", "tinyint",
		"serial", "bigserial", "smallserial", "int2", "int4", "int8", "year":
		return TypeInteger
	case "decimal", "numeric", "float", "double", "double precision", "real", "money":
		return TypeDecimal
	case "varchar", "char", "character", "character varying", "text",
		"tinytext", "mediumtext", "longtext", "citext", "nvarchar", "nchar":
		return TypeText
	case "bool", "boolean":
		return TypeBoolean
	case "timestamp", "timestamptz", "datetime",
		"timestamp without time zone", "timestamp with time zone":
		return TypeTimestamp
	case "date":
		return TypeDate
	case "time", "time without time zone", "time with time zone", "interval":
		return TypeTime
	case "blob", "tinyblob", "mediumblob", "longblob", "binary", "varbinary",
		"bytea", "bit", "bit varying":
		return TypeBinary
	case "json", "jsonb":
		return TypeJSON
	case "uuid":
		return TypeUUID
	case "enum", "set":
		return TypeEnum
	}
	return TypeUnknown
}
