package sqlparse

import (
	"fmt"
	"strings"
)

// Dialect identifies the SQL flavor a DDL dump was written in.
type Dialect string

const (
	DialectMySQL      Dialect = "mysql"
	DialectPostgreSQL Dialect = "postgresql"
)

// ParseDialect converts a user-supplied dialect tag into a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql":
		return DialectMySQL, nil
	case "postgres", "postgresql", "pg":
		return DialectPostgreSQL, nil
	}
	return "", fmt.Errorf("unsupported dialect %q (use 'mysql' or 'postgresql')", s)
}
