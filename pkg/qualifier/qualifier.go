// Package qualifier parses and composes table provenance strings.
//
// A qualifier is inert metadata describing where a table's data lives or how
// it was derived: a structured storage reference ("project.dataset.table",
// "dataset.table", or "table"), a lineage string produced by composing the
// qualifiers of join operands ("joined(left⋈right)"), or empty for purely
// in-memory data. Qualifiers carry no behavior and parsing never fails;
// unrecognized input degrades to a best-effort custom result.
package qualifier

import "strings"

// Kind classifies a parsed qualifier.
type Kind string

const (
	// KindNone means no qualifier: in-memory data with no known backing.
	KindNone Kind = "none"
	// KindStructured is a 1-3 part dotted storage reference.
	KindStructured Kind = "structured"
	// KindLineage is a composed "joined(...)" derivation trace.
	KindLineage Kind = "lineage"
	// KindCustom is anything else; the raw string is preserved.
	KindCustom Kind = "custom"
)

// Unnamed substitutes for an operand with no qualifier in lineage strings.
const Unnamed = "<unnamed>"

const (
	lineagePrefix = "joined("
	lineageJoiner = "⋈"
)

// Info is the structured view of a qualifier. Raw always preserves the
// original string so no information is lost regardless of Kind.
type Info struct {
	Kind    Kind
	Project string
	Dataset string
	Table   string
	Raw     string
}

// Parse classifies a qualifier string. It never fails: anything that is not
// empty, a lineage string, or a clean 1-3 part dotted reference comes back
// as KindCustom with the raw string intact.
func Parse(q string) Info {
	if q == "" {
		return Info{Kind: KindNone}
	}
	if strings.HasPrefix(q, lineagePrefix) && strings.HasSuffix(q, ")") {
		return Info{Kind: KindLineage, Raw: q}
	}

	parts := strings.Split(q, ".")
	for _, part := range parts {
		if !validPart(part) {
			return Info{Kind: KindCustom, Raw: q}
		}
	}

	switch len(parts) {
	case 1:
		return Info{Kind: KindStructured, Table: parts[0], Raw: q}
	case 2:
		return Info{Kind: KindStructured, Dataset: parts[0], Table: parts[1], Raw: q}
	case 3:
		return Info{Kind: KindStructured, Project: parts[0], Dataset: parts[1], Table: parts[2], Raw: q}
	default:
		return Info{Kind: KindCustom, Raw: q}
	}
}

// validPart rejects empty components and anything that could not be a plain
// storage identifier.
func validPart(s string) bool {
	if s == "" {
		return false
	}
	return !strings.ContainsAny(s, " \t()⋈")
}

// FormatLineage composes the lineage qualifier for a join of two operands,
// substituting Unnamed for operands without a qualifier. Multiway joins
// chain left-to-right: FormatLineage(FormatLineage(a, b), c).
func FormatLineage(left, right string) string {
	if left == "" {
		left = Unnamed
	}
	if right == "" {
		right = Unnamed
	}
	return lineagePrefix + left + lineageJoiner + right + ")"
}
