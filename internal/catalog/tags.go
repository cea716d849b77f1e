package catalog

import (
	"path"
	"sort"
	"strings"

	"schemakb/internal/schema"
	"schemakb/internal/sqlparse"
)

// Built-in tag names used by the content heuristics and the structural
// tagging pass.
const (
	TagPII            = "PII"
	TagAuthentication = "Authentication"
	TagTimestamp      = "Timestamp"
	TagForeignKey     = "Foreign_Key"
	TagPrimaryKey     = "Primary_Key"
	TagRequired       = "Required"
)

var builtinTagDescriptions = map[string]string{
	TagPII:            "Contains personally identifiable information",
	TagAuthentication: "Related to authentication or credentials",
	TagTimestamp:      "Temporal column tracking a point in time",
	TagForeignKey:     "Participates in a foreign key reference",
	TagPrimaryKey:     "Part of the table's primary key",
	TagRequired:       "Column does not accept NULL values",
}

var piiColumnHints = []string{
	"email", "phone", "ssn", "passport", "first_name", "last_name",
	"full_name", "address", "birth", "dob", "credit_card",
}

var authColumnHints = []string{
	"password", "token", "secret", "api_key", "salt", "hash",
}

var authTableHints = []string{
	"auth", "session", "credential", "token", "login",
}

// columnTags returns the heuristic and structural tags for a column,
// sorted and deduplicated.
func columnTags(table *schema.Table, col *schema.Column, opts Options) []string {
	set := map[string]bool{}
	if opts.Heuristics {
		lname := strings.ToLower(col.Name)
		ltable := strings.ToLower(table.Name)
		for _, hint := range piiColumnHints {
			if strings.Contains(lname, hint) {
				set[TagPII] = true
				break
			}
		}
		for _, hint := range authColumnHints {
			if strings.Contains(lname, hint) {
				set[TagAuthentication] = true
				break
			}
		}
		for _, hint := range authTableHints {
			if strings.Contains(ltable, hint) {
				set[TagAuthentication] = true
				break
			}
		}
		if col.Type == sqlparse.TypeTimestamp || col.Type == sqlparse.TypeDate ||
			strings.HasSuffix(lname, "_at") || strings.HasSuffix(lname, "_date") {
			set[TagTimestamp] = true
		}
	}
	if col.PrimaryKey {
		set[TagPrimaryKey] = true
	}
	if col.ForeignKey {
		set[TagForeignKey] = true
	}
	if !col.Nullable && !col.PrimaryKey {
		set[TagRequired] = true
	}
	return sortedKeys(set)
}

// tableTags evaluates the configured TagRules against a table's name and
// comment.
func tableTags(table *schema.Table, opts Options) []string {
	set := map[string]bool{}
	for _, rule := range opts.TagRules {
		if ok, err := path.Match(rule.Pattern, table.Name); err == nil && ok {
			set[rule.Tag] = true
			continue
		}
		if table.Comment != "" && strings.Contains(strings.ToLower(table.Comment), strings.ToLower(rule.Pattern)) {
			set[rule.Tag] = true
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
