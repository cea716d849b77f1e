package catalog

import (
	"fmt"

	"github.com/google/uuid"
)

// Report summarizes one catalog build for logging and CLI output.
type Report struct {
	BuildID               string   `json:"build_id"`
	Databases             int      `json:"databases_parsed"`
	Tables                int      `json:"tables_parsed"`
	Columns               int      `json:"columns_parsed"`
	ForeignKeysResolved   int      `json:"foreign_keys_resolved"`
	ForeignKeysUnresolved int      `json:"foreign_keys_unresolved"`
	Warnings              []string `json:"warnings,omitempty"`
}

func NewReport() *Report {
	return &Report{BuildID: uuid.NewString()}
}

// Summary renders the report in a few human-readable lines.
func (r *Report) Summary() string {
	s := fmt.Sprintf("build %s: %d databases, %d tables, %d columns, %d/%d foreign keys resolved",
		r.BuildID, r.Databases, r.Tables, r.Columns,
		r.ForeignKeysResolved, r.ForeignKeysResolved+r.ForeignKeysUnresolved)
	if len(r.Warnings) > 0 {
		s += fmt.Sprintf(", %d warnings", len(r.Warnings))
	}
	return s
}
