package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/nestframe/internal/engine"
	"github.com/leapstack-labs/nestframe/internal/state"
	"github.com/leapstack-labs/nestframe/pkg/qualifier"
)

// JoinTable binds an alias used in join conditions to a registered name.
// Tables are joined left-to-right in slice order.
type JoinTable struct {
	Alias string
	Name  string
}

// JoinCondition is one equality predicate between two aliased tables.
// Fields may be dotted nested paths or flat top-level column names.
type JoinCondition struct {
	LeftAlias  string
	LeftField  string
	RightAlias string
	RightField string
}

// JoinSpec describes a multi-table join. An empty Kind means inner.
type JoinSpec struct {
	Tables     []JoinTable
	Conditions []JoinCondition
	Kind       engine.JoinKind
}

// resolvedCond is a condition with both sides resolved to flat columns.
type resolvedCond struct {
	cond      JoinCondition
	leftFlat  string
	rightFlat string
	used      bool
}

// Join validates the request, resolves every condition field against the cached
// field maps, extracts the minimal flat projection of each operand, and
// chains the engine join primitive left-to-right. Resolution is fail-fast:
// an unknown name, alias, or field path fails before any engine work. The
// result is a new unregistered handler whose qualifier composes the operand
// qualifiers into a lineage string.
func (r *Registry) Join(ctx context.Context, spec JoinSpec) (*Handler, error) {
	kind := spec.Kind
	if kind == "" {
		kind = engine.JoinInner
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unsupported join kind %q", string(kind))
	}
	if len(spec.Tables) < 2 {
		return nil, fmt.Errorf("join requires at least two tables, got %d", len(spec.Tables))
	}
	if kind == engine.JoinCross && len(spec.Conditions) > 0 {
		return nil, fmt.Errorf("cross join takes no conditions")
	}
	if kind != engine.JoinCross && len(spec.Conditions) == 0 {
		return nil, fmt.Errorf("%s join requires at least one condition", string(kind))
	}

	operands := make([]*Handler, len(spec.Tables))
	byAlias := make(map[string]*Handler, len(spec.Tables))
	for i, t := range spec.Tables {
		if t.Alias == "" {
			return nil, fmt.Errorf("join table %d has an empty alias", i)
		}
		if _, ok := byAlias[t.Alias]; ok {
			return nil, fmt.Errorf("duplicate join alias %q", t.Alias)
		}
		h, err := r.Get(t.Name)
		if err != nil {
			return nil, err
		}
		operands[i] = h
		byAlias[t.Alias] = h
	}

	// All operands must live in one engine session.
	first := operands[0].Relation().Session()
	for _, h := range operands[1:] {
		if s := h.Relation().Session(); s != first {
			return nil, &engine.SessionMismatchError{Left: first.ID(), Right: s.ID()}
		}
	}

	// Resolve every condition field before touching the engine, collecting
	// the nested paths each table needs extracted for its join keys.
	resolved := make([]*resolvedCond, 0, len(spec.Conditions))
	needed := make(map[string][]string, len(spec.Tables))
	for _, cond := range spec.Conditions {
		leftFlat, err := resolveSide(byAlias, cond.LeftAlias, cond.LeftField, needed)
		if err != nil {
			return nil, err
		}
		rightFlat, err := resolveSide(byAlias, cond.RightAlias, cond.RightField, needed)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, &resolvedCond{cond: cond, leftFlat: leftFlat, rightFlat: rightFlat})
	}

	// Minimal extraction per operand: flat columns plus only the nested
	// paths its join keys reference. Flat-only tables pass through.
	rels := make([]*engine.Relation, len(spec.Tables))
	for i, t := range spec.Tables {
		h := operands[i]
		var subset []string
		if h.Fields().HasNested() {
			subset = append([]string{}, needed[t.Alias]...)
		}
		rel, err := h.Extract(subset)
		if err != nil {
			return nil, err
		}
		rels[i] = rel
	}

	// Chain left-to-right. Each step joins the accumulated result with the
	// next table, using the conditions that link it to an earlier alias.
	cur := rels[0]
	qual := operandQualifier(operands[0])
	joined := map[string]struct{}{spec.Tables[0].Alias: {}}
	for i := 1; i < len(spec.Tables); i++ {
		alias := spec.Tables[i].Alias
		conds := stepConditions(resolved, joined, alias)
		if kind != engine.JoinCross && len(conds) == 0 {
			return nil, fmt.Errorf("no join condition links table %q to the preceding tables", alias)
		}

		next, err := engine.Join(cur, rels[i], conds, kind)
		if err != nil {
			return nil, err
		}
		cur = next
		qual = qualifier.FormatLineage(qual, operandQualifier(operands[i]))
		joined[alias] = struct{}{}
	}

	for _, rc := range resolved {
		if !rc.used {
			return nil, fmt.Errorf("join condition %s.%s = %s.%s does not link consecutive tables",
				rc.cond.LeftAlias, rc.cond.LeftField, rc.cond.RightAlias, rc.cond.RightField)
		}
	}

	result, err := New(ctx, cur, qual, r.policy, r.maxDepth)
	if err != nil {
		return nil, err
	}

	r.logger.Info("joined tables",
		slog.Int("tables", len(spec.Tables)),
		slog.String("kind", string(kind)),
		slog.String("qualifier", qual))

	ops := make([]string, len(operands))
	for i, h := range operands {
		ops[i] = operandQualifier(h)
	}
	r.record(ctx, &state.Operation{Kind: state.OpJoin, Qualifier: qual, Operands: ops})
	return result, nil
}

// resolveSide resolves one side of a condition to its flat column and
// records the nested path under the alias when extraction will be needed.
func resolveSide(byAlias map[string]*Handler, alias, field string, needed map[string][]string) (string, error) {
	h, ok := byAlias[alias]
	if !ok {
		return "", fmt.Errorf("join condition references unknown alias %q", alias)
	}
	flat, nested, err := h.Fields().ResolveKey(field)
	if err != nil {
		return "", fmt.Errorf("table %q: %w", alias, err)
	}
	if nested && !contains(needed[alias], field) {
		needed[alias] = append(needed[alias], field)
	}
	return flat, nil
}

// stepConditions selects the resolved conditions linking alias to any
// already-joined alias, normalized so the accumulated side is on the left.
func stepConditions(resolved []*resolvedCond, joined map[string]struct{}, alias string) []engine.JoinCondition {
	var conds []engine.JoinCondition
	for _, rc := range resolved {
		if rc.used {
			continue
		}
		_, leftJoined := joined[rc.cond.LeftAlias]
		_, rightJoined := joined[rc.cond.RightAlias]
		switch {
		case leftJoined && rc.cond.RightAlias == alias:
			conds = append(conds, engine.JoinCondition{LeftColumn: rc.leftFlat, RightColumn: rc.rightFlat})
		case rightJoined && rc.cond.LeftAlias == alias:
			conds = append(conds, engine.JoinCondition{LeftColumn: rc.rightFlat, RightColumn: rc.leftFlat})
		default:
			continue
		}
		rc.used = true
	}
	return conds
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
