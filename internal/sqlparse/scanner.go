package sqlparse

import "strings"

// SplitStatements splits raw DDL text into individual statements. Comments
// (both `--` line comments and `/* */` blocks) are removed, string literals
// and quoted identifiers are left intact, and statements are terminated by
// any unquoted semicolon. Source order is preserved.
func SplitStatements(sql string) []string {
	var (
		stmts   []string
		cur     strings.Builder
		inS     bool // '...' string literal
		inD     bool // "..." quoted identifier
		inB     bool // `...` quoted identifier
		inLine  bool // -- comment
		inBlock bool // /* comment */
	)

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	for i := 0; i < len(sql); i++ {
		c := sql[i]

		if inLine {
			if c == '\n' {
				inLine = false
				cur.WriteByte('\n')
			}
			continue
		}
		if inBlock {
			if c == '*' && i+1 < len(sql) && sql[i+1] == '/' {
				inBlock = false
				i++
				cur.WriteByte(' ')
			}
			continue
		}

		switch {
		case inS:
			cur.WriteByte(c)
			if c == '\'' {
				// '' is an escaped quote inside the literal
				if i+1 < len(sql) && sql[i+1] == '\'' {
					cur.WriteByte('\'')
					i++
				} else {
					inS = false
				}
			}
			continue
		case inD:
			cur.WriteByte(c)
			if c == '"' {
				inD = false
			}
			continue
		case inB:
			cur.WriteByte(c)
			if c == '`' {
				inB = false
			}
			continue
		}

		switch c {
		case '-':
			if i+1 < len(sql) && sql[i+1] == '-' {
				inLine = true
				i++
				continue
			}
		case '/':
			if i+1 < len(sql) && sql[i+1] == '*' {
				inBlock = true
				i++
				continue
			}
		case '\'':
			inS = true
		case '"':
			inD = true
		case '`':
			inB = true
		case ';':
			// Splitting on every unquoted semicolon keeps one statement's
			// unbalanced parentheses from swallowing the rest of the file.
			flush()
			continue
		}
		cur.WriteByte(c)
	}
	flush()

	return stmts
}

// splitClauses splits a CREATE TABLE body into its top-level clauses
// (column definitions and table constraints), honoring nested parentheses
// and string literals so decimal(10,2) or enum('a','b') stay whole.
func splitClauses(body string) []string {
	var (
		clauses []string
		cur     strings.Builder
		depth   int
		inS     bool
	)
	for i := 0; i < len(body); i++ {
		c := body[i]
		if inS {
			cur.WriteByte(c)
			if c == '\'' {
				if i+1 < len(body) && body[i+1] == '\'' {
					cur.WriteByte('\'')
					i++
				} else {
					inS = false
				}
			}
			continue
		}
		switch c {
		case '\'':
			inS = true
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				clauses = append(clauses, strings.TrimSpace(cur.String()))
				cur.Reset()
				continue
			}
		}
		cur.WriteByte(c)
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		clauses = append(clauses, s)
	}
	return clauses
}

// matchParen returns the index just past the closing parenthesis matching an
// opening one at start-1, or -1 when the body is unterminated.
func matchParen(s string, start int) int {
	depth := 1
	inS := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inS {
			if c == '\'' {
				if i+1 < len(s) && s[i+1] == '\'' {
					i++
				} else {
					inS = false
				}
			}
			continue
		}
		switch c {
		case '\'':
			inS = true
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
