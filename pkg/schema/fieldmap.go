package schema

// FieldInfo describes one nested field in a FieldMap.
type FieldInfo struct {
	// Path is the dotted nested path, e.g. "profile.contact.email".
	Path string
	// FlatName is the generated flat column name for the path.
	FlatName string
	// LeafType is the engine type text of the leaf.
	LeafType string
}

// FieldMap is the immutable schema metadata for one table: the flat
// (non-struct) top-level columns, the struct roots, and every nested leaf
// path with its generated flat name. It is built exactly once per table and
// may be read concurrently without synchronization.
//
// For a fixed schema and a fixed NamePolicy the map is fully deterministic:
// two independent constructions yield identical contents in identical order.
type FieldMap struct {
	flat        []string
	structRoots []string
	order       []FieldInfo
	byPath      map[string]FieldInfo
	flatSet     map[string]struct{}
}

// NewFieldMap walks the column metadata and builds the field map. It fails
// with *SchemaError on malformed or too-deep schemas and with
// *NameCollisionError when two distinct entries generate the same flat name.
// Passing a nil policy selects UnderscoreNames; maxDepth <= 0 selects
// DefaultMaxDepth.
func NewFieldMap(cols []Column, policy NamePolicy, maxDepth int) (*FieldMap, error) {
	if policy == nil {
		policy = UnderscoreNames
	}

	entries, err := Walk(cols, maxDepth)
	if err != nil {
		return nil, err
	}

	fm := &FieldMap{
		byPath:  make(map[string]FieldInfo, len(entries)),
		flatSet: make(map[string]struct{}),
	}

	// Flat top-level columns claim their own names first: a generated name
	// that shadows an existing column is a collision, not a rename.
	claimed := make(map[string]string, len(cols)+len(entries))
	for _, col := range cols {
		if col.Type.IsStruct() {
			fm.structRoots = append(fm.structRoots, col.Name)
			continue
		}
		if first, ok := claimed[col.Name]; ok {
			return nil, &NameCollisionError{FlatName: col.Name, First: first, Second: col.Name}
		}
		claimed[col.Name] = col.Name
		fm.flat = append(fm.flat, col.Name)
		fm.flatSet[col.Name] = struct{}{}
	}

	for _, entry := range entries {
		dotted := entry.Dotted()
		name := policy(entry.Path)
		if first, ok := claimed[name]; ok {
			return nil, &NameCollisionError{FlatName: name, First: first, Second: dotted}
		}
		claimed[name] = dotted

		info := FieldInfo{Path: dotted, FlatName: name, LeafType: entry.LeafType}
		fm.order = append(fm.order, info)
		fm.byPath[dotted] = info
	}

	return fm, nil
}

// FlatColumns returns the non-struct top-level columns in declared order.
func (m *FieldMap) FlatColumns() []string {
	return append([]string(nil), m.flat...)
}

// StructRoots returns the struct-typed top-level columns in declared order.
func (m *FieldMap) StructRoots() []string {
	return append([]string(nil), m.structRoots...)
}

// Fields returns every nested field in walk order.
func (m *FieldMap) Fields() []FieldInfo {
	return append([]FieldInfo(nil), m.order...)
}

// Paths returns every dotted nested path in walk order.
func (m *FieldMap) Paths() []string {
	paths := make([]string, len(m.order))
	for i, info := range m.order {
		paths[i] = info.Path
	}
	return paths
}

// Len returns the number of nested fields.
func (m *FieldMap) Len() int {
	return len(m.order)
}

// HasNested reports whether the schema contains any struct columns.
func (m *FieldMap) HasNested() bool {
	return len(m.structRoots) > 0
}

// Lookup returns the field info for a dotted nested path.
func (m *FieldMap) Lookup(path string) (FieldInfo, bool) {
	info, ok := m.byPath[path]
	return info, ok
}

// ResolveKey resolves a join or selection key to a physical flat column.
// Dotted nested paths resolve to their generated flat name (nested=true);
// flat top-level columns resolve to themselves (nested=false). Anything
// else fails with *FieldNotFoundError listing what is available.
func (m *FieldMap) ResolveKey(key string) (flatName string, nested bool, err error) {
	if info, ok := m.byPath[key]; ok {
		return info.FlatName, true, nil
	}
	if _, ok := m.flatSet[key]; ok {
		return key, false, nil
	}
	available := append(m.Paths(), m.flat...)
	return "", false, &FieldNotFoundError{Field: key, Available: available}
}
