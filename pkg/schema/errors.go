package schema

import (
	"fmt"
	"strings"
)

// SchemaError reports an unsupported or malformed nested schema, including
// type text the parser cannot understand and nesting beyond the configured
// depth limit.
type SchemaError struct {
	// Path is the dotted path at which the problem was found, empty when
	// the error is not tied to a specific column.
	Path string
	Msg  string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return "schema: " + e.Msg
	}
	return fmt.Sprintf("schema: %s at %q", e.Msg, e.Path)
}

// NameCollisionError reports two distinct schema entries that generate the
// same flat column name. It is raised at field-map construction time so the
// cached metadata is never ambiguous.
type NameCollisionError struct {
	FlatName string
	First    string
	Second   string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("flat name %q generated by both %q and %q", e.FlatName, e.First, e.Second)
}

// FieldNotFoundError reports a requested path that is absent from a table's
// cached field map.
type FieldNotFoundError struct {
	Field     string
	Available []string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field %q not found in schema; available: %s", e.Field, strings.Join(e.Available, ", "))
}
