// Package schema provides nested-schema introspection for columnar tables.
// It parses the engine's column type metadata into a type tree, walks that
// tree to discover dotted nested field paths, and builds an immutable field
// map from paths to deterministic flat column names.
package schema

import "strings"

// Type is a parsed column type. A struct type carries its ordered field
// list; every other type (scalars, lists, maps, unions) is a leaf.
type Type struct {
	// Raw is the type text as reported by the engine, e.g.
	// "VARCHAR" or "STRUCT(name VARCHAR, age INTEGER)".
	Raw string

	// Fields is the ordered field list for struct types, nil for leaves.
	Fields []Column
}

// Column is a named, typed column or struct field.
type Column struct {
	Name string
	Type Type
}

// IsStruct reports whether the type is a struct with a fixed field schema.
func (t Type) IsStruct() bool {
	return len(t.Fields) > 0
}

// ParseType parses a DuckDB type string into a Type tree.
//
// Struct types (STRUCT(name TYPE, ...)) are descended recursively. List,
// array, map, and union types have no fixed per-row field schema and are
// treated as leaves, as is everything else.
func ParseType(raw string) (Type, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Type{}, &SchemaError{Msg: "empty type"}
	}

	// A trailing [] or [n] makes this a list/array regardless of the
	// element type; lists are leaves.
	if strings.HasSuffix(s, "]") {
		return Type{Raw: s}, nil
	}

	upper := strings.ToUpper(s)
	if strings.HasPrefix(upper, "STRUCT(") && strings.HasSuffix(s, ")") {
		inner := s[len("STRUCT(") : len(s)-1]
		fields, err := parseStructFields(inner)
		if err != nil {
			return Type{}, err
		}
		return Type{Raw: s, Fields: fields}, nil
	}

	return Type{Raw: s}, nil
}

// parseStructFields parses the comma-separated field list of a struct type.
func parseStructFields(s string) ([]Column, error) {
	parts, err := splitTopLevel(s)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, &SchemaError{Msg: "struct type has no fields"}
	}

	fields := make([]Column, 0, len(parts))
	for _, part := range parts {
		name, typeText, err := splitFieldEntry(part)
		if err != nil {
			return nil, err
		}
		fieldType, err := ParseType(typeText)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Column{Name: name, Type: fieldType})
	}
	return fields, nil
}

// splitTopLevel splits on commas that are not nested inside parentheses,
// brackets, or quoted identifiers.
func splitTopLevel(s string) ([]string, error) {
	var parts []string
	depth := 0
	start := 0
	inQuote := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote:
			if c == '"' {
				// A doubled quote is an escaped quote inside the
				// identifier, not a terminator.
				if i+1 < len(s) && s[i+1] == '"' {
					i++
					continue
				}
				inQuote = false
			}
		case c == '"':
			inQuote = true
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
			if depth < 0 {
				return nil, &SchemaError{Msg: "unbalanced parentheses in type: " + s}
			}
		case c == ',' && depth == 0:
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	if inQuote || depth != 0 {
		return nil, &SchemaError{Msg: "malformed type text: " + s}
	}
	if last := strings.TrimSpace(s[start:]); last != "" {
		parts = append(parts, last)
	}
	return parts, nil
}

// splitFieldEntry splits one `name TYPE` struct field entry. The name may be
// a quoted identifier containing spaces or doubled quotes.
func splitFieldEntry(entry string) (name, typeText string, err error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return "", "", &SchemaError{Msg: "empty struct field entry"}
	}

	if entry[0] == '"' {
		var b strings.Builder
		i := 1
		for i < len(entry) {
			if entry[i] == '"' {
				if i+1 < len(entry) && entry[i+1] == '"' {
					b.WriteByte('"')
					i += 2
					continue
				}
				rest := strings.TrimSpace(entry[i+1:])
				if rest == "" {
					return "", "", &SchemaError{Msg: "struct field missing type: " + entry}
				}
				return b.String(), rest, nil
			}
			b.WriteByte(entry[i])
			i++
		}
		return "", "", &SchemaError{Msg: "unterminated quoted identifier: " + entry}
	}

	idx := strings.IndexByte(entry, ' ')
	if idx <= 0 {
		return "", "", &SchemaError{Msg: "struct field missing type: " + entry}
	}
	return entry[:idx], strings.TrimSpace(entry[idx+1:]), nil
}
