package schema

import "strings"

// DefaultMaxDepth bounds recursion into nested struct types. Real schemas
// stay far below this; hitting the limit indicates pathological input and
// fails fast instead of recursing unboundedly.
const DefaultMaxDepth = 64

// PathEntry is one nested leaf discovered by Walk: the ordered field names
// from the top-level column down to the leaf, and the leaf's type text.
type PathEntry struct {
	Path     []string
	LeafType string
}

// Dotted returns the dot-joined form of the path.
func (p PathEntry) Dotted() string {
	return strings.Join(p.Path, ".")
}

// Walk discovers every nested leaf reachable through struct-typed columns.
// Output order is depth-first over declared field order, so two walks of the
// same schema always produce identical results. Non-struct columns yield no
// entries; list/map/union types are leaves and are not descended.
//
// Walk is a pure function of the column metadata; it never touches data.
func Walk(cols []Column, maxDepth int) ([]PathEntry, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	var entries []PathEntry
	for _, col := range cols {
		if !col.Type.IsStruct() {
			continue
		}
		var err error
		entries, err = walkStruct(entries, []string{col.Name}, col.Type, maxDepth)
		if err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func walkStruct(entries []PathEntry, path []string, t Type, maxDepth int) ([]PathEntry, error) {
	if len(path) >= maxDepth {
		return nil, &SchemaError{
			Path: strings.Join(path, "."),
			Msg:  "maximum nesting depth exceeded",
		}
	}

	for _, field := range t.Fields {
		// Copy: the path slice is reused across siblings.
		childPath := append(append([]string(nil), path...), field.Name)
		if field.Type.IsStruct() {
			var err error
			entries, err = walkStruct(entries, childPath, field.Type, maxDepth)
			if err != nil {
				return nil, err
			}
			continue
		}
		entries = append(entries, PathEntry{Path: childPath, LeafType: field.Type.Raw})
	}
	return entries, nil
}
