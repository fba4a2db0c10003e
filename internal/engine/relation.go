package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/nestframe/pkg/schema"
)

// Relation is a deferred table expression: either a named table or a derived
// query, always bound to the session that produced it. Relations are opaque
// handles: they are never serialized, and building one never executes SQL.
type Relation struct {
	session *Session
	table   string // base table name, exclusive with query
	query   string // derived SELECT text, exclusive with table
}

// derived wraps a SELECT statement as a new relation in the same session.
func derived(s *Session, query string) *Relation {
	return &Relation{session: s, query: query}
}

// Session returns the session the relation belongs to.
func (r *Relation) Session() *Session {
	return r.session
}

// SQL returns the full SELECT statement the relation stands for.
func (r *Relation) SQL() string {
	if r.table != "" {
		return "SELECT * FROM " + quoteIdent(r.table)
	}
	return r.query
}

// fromClause returns the relation in a form usable after FROM.
func (r *Relation) fromClause() string {
	if r.table != "" {
		return quoteIdent(r.table)
	}
	return "(" + r.query + ")"
}

// Project returns a derived relation selecting the given expressions. The
// source is aliased "src" so expressions can qualify column references.
func (r *Relation) Project(exprs []string) *Relation {
	return derived(r.session, "SELECT "+strings.Join(exprs, ", ")+" FROM "+r.fromClause()+" AS src")
}

// Describe introspects the relation's schema: the ordered column list with
// parsed types, nested struct types included. This is the only engine call
// the core makes outside of explicit materialization.
func (r *Relation) Describe(ctx context.Context) ([]schema.Column, error) {
	stmt := "SELECT column_name, column_type FROM (DESCRIBE " + r.SQL() + ")"
	r.session.logger.Debug("describing relation", slog.String("sql", stmt))

	rows, err := r.session.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to describe relation: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cols []schema.Column
	for rows.Next() {
		var name, typeText string
		if err := rows.Scan(&name, &typeText); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		typ, err := schema.ParseType(typeText)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		cols = append(cols, schema.Column{Name: name, Type: typ})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	return cols, nil
}

// Rows materializes the relation. The caller must close the result and
// check rows.Err after iteration.
func (r *Relation) Rows(ctx context.Context) (*sql.Rows, error) {
	stmt := r.SQL()
	r.session.logger.Debug("materializing relation", slog.String("sql", stmt))

	//nolint:rowserrcheck // rows.Err() is the caller's responsibility
	rows, err := r.session.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return rows, nil
}

// Count materializes only the row count.
func (r *Relation) Count(ctx context.Context) (int64, error) {
	stmt := "SELECT COUNT(*) FROM (" + r.SQL() + ")"

	var n int64
	if err := r.session.db.QueryRowContext(ctx, stmt).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}
