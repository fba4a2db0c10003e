package engine

import (
	"fmt"
	"strings"
)

// JoinKind selects the join semantics delegated to the engine.
type JoinKind string

const (
	JoinInner JoinKind = "inner"
	JoinLeft  JoinKind = "left"
	JoinRight JoinKind = "right"
	JoinOuter JoinKind = "outer"
	JoinCross JoinKind = "cross"
)

// sqlOp maps the kind to its SQL join operator.
func (k JoinKind) sqlOp() (string, error) {
	switch k {
	case JoinInner:
		return "INNER JOIN", nil
	case JoinLeft:
		return "LEFT JOIN", nil
	case JoinRight:
		return "RIGHT JOIN", nil
	case JoinOuter:
		return "FULL OUTER JOIN", nil
	case JoinCross:
		return "CROSS JOIN", nil
	default:
		return "", fmt.Errorf("unsupported join kind %q", string(k))
	}
}

// Valid reports whether the kind is one the engine supports.
func (k JoinKind) Valid() bool {
	_, err := k.sqlOp()
	return err == nil
}

// JoinCondition is one resolved equality predicate over flat columns.
type JoinCondition struct {
	LeftColumn  string
	RightColumn string
}

// SessionMismatchError reports an operation spanning relations from
// different, non-interoperable engine sessions.
type SessionMismatchError struct {
	Left  string
	Right string
}

func (e *SessionMismatchError) Error() string {
	return fmt.Sprintf("relations belong to different engine sessions (%s vs %s)", e.Left, e.Right)
}

// Join builds the deferred join of two relations on resolved flat-column
// equality predicates. Cross joins take no conditions; every other kind
// requires at least one. Both relations must belong to the same session.
func Join(left, right *Relation, conds []JoinCondition, kind JoinKind) (*Relation, error) {
	op, err := kind.sqlOp()
	if err != nil {
		return nil, err
	}
	if left.session != right.session {
		return nil, &SessionMismatchError{Left: left.session.id, Right: right.session.id}
	}
	if kind == JoinCross && len(conds) > 0 {
		return nil, fmt.Errorf("cross join takes no conditions")
	}
	if kind != JoinCross && len(conds) == 0 {
		return nil, fmt.Errorf("%s join requires at least one condition", string(kind))
	}

	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(left.fromClause())
	b.WriteString(" AS l ")
	b.WriteString(op)
	b.WriteString(" ")
	b.WriteString(right.fromClause())
	b.WriteString(" AS r")

	if len(conds) > 0 {
		b.WriteString(" ON ")
		for i, cond := range conds {
			if i > 0 {
				b.WriteString(" AND ")
			}
			b.WriteString(`l.` + quoteIdent(cond.LeftColumn) + ` = r.` + quoteIdent(cond.RightColumn))
		}
	}

	return derived(left.session, b.String()), nil
}
