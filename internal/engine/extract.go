package engine

import (
	"strings"

	"github.com/leapstack-labs/nestframe/pkg/schema"
)

// Extract returns a new relation exposing nested paths as flat top-level
// columns. The projection keeps every flat (non-struct) column in declared
// order and appends one column per selected nested path, named per the
// field map. Struct roots themselves are dropped from the output.
//
// A nil subset selects every nested path; an empty non-nil subset selects
// none (flat columns only). Subset entries must be keys of the field map or
// the call fails with *schema.FieldNotFoundError before any SQL is built.
//
// Extract is strictly functional: it derives a fresh deferred expression
// from the source relation on every call, materializes nothing, and caches
// nothing. If the schema has no struct columns and no subset is given, the
// original relation is returned unchanged.
func Extract(rel *Relation, fields *schema.FieldMap, subset []string) (*Relation, error) {
	// Validate before composing anything.
	selected := make([]schema.FieldInfo, 0, len(subset))
	if subset == nil {
		selected = fields.Fields()
	} else {
		for _, path := range subset {
			info, ok := fields.Lookup(path)
			if !ok {
				return nil, &schema.FieldNotFoundError{Field: path, Available: fields.Paths()}
			}
			selected = append(selected, info)
		}
	}

	// Pass-through: nothing nested to extract and nothing requested.
	if !fields.HasNested() && subset == nil {
		return rel, nil
	}

	exprs := make([]string, 0, len(fields.FlatColumns())+len(selected))
	for _, col := range fields.FlatColumns() {
		exprs = append(exprs, `"src".`+quoteIdent(col))
	}
	for _, info := range selected {
		exprs = append(exprs, structAccess(info.Path)+" AS "+quoteIdent(info.FlatName))
	}

	return rel.Project(exprs), nil
}

// structAccess builds the quoted field-access chain for a dotted path,
// e.g. "profile.contact.email" -> "src"."profile"."contact"."email".
func structAccess(dotted string) string {
	parts := strings.Split(dotted, ".")
	quoted := make([]string, 0, len(parts)+1)
	quoted = append(quoted, `"src"`)
	for _, p := range parts {
		quoted = append(quoted, quoteIdent(p))
	}
	return strings.Join(quoted, ".")
}
