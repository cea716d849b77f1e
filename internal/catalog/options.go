package catalog

import "path"

// Owner is a team or domain responsible for a set of tables.
type Owner struct {
	Name  string
	Email string
}

// OwnerRule assigns an owner to tables whose name matches Pattern
// (path.Match glob). The first matching rule wins.
type OwnerRule struct {
	Pattern string
	Owner   Owner
}

// Tag is a free-form classification label with an optional description
// used for its entity document.
type Tag struct {
	Name        string
	Description string
}

// TagRule tags tables whose name or comment matches Pattern (glob against
// the name, substring against the comment).
type TagRule struct {
	Pattern string
	Tag     string
}

// Options controls ownership, tagging, and warning carry-over for a build.
// The zero value emits no OWNED_BY edges and no table-level TAGGED edges;
// structural column tags (Primary_Key, Foreign_Key, Required) are always
// emitted.
type Options struct {
	// DefaultOwner is applied to every table no rule matches. Nil disables
	// default ownership.
	DefaultOwner *Owner

	// OwnerRules override the default owner per table.
	OwnerRules []OwnerRule

	// Tags is the tag vocabulary; descriptions feed the tag documents.
	Tags []Tag

	// TagRules attach vocabulary tags by pattern.
	TagRules []TagRule

	// Heuristics enables the built-in content-based tag rules (PII,
	// Authentication, Timestamp).
	Heuristics bool

	// Warnings collected by earlier pipeline stages, carried into the
	// build report.
	Warnings []string
}

func (o Options) resolveOwner(table string) *Owner {
	for _, rule := range o.OwnerRules {
		if ok, err := path.Match(rule.Pattern, table); err == nil && ok {
			owner := rule.Owner
			return &owner
		}
	}
	return o.DefaultOwner
}

func (o Options) tagDescription(name string) string {
	for _, t := range o.Tags {
		if t.Name == name {
			return t.Description
		}
	}
	if desc, ok := builtinTagDescriptions[name]; ok {
		return desc
	}
	return ""
}
