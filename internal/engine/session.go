// Package engine is the boundary to the DuckDB query engine. It exposes
// sessions, deferred table expressions (relations), schema introspection,
// flat-field extraction, and the native join primitive. Nothing in this
// package materializes data unless the caller explicitly asks for rows.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Session wraps one DuckDB connection. Relations are only valid within the
// session that created them; the session identity is used to reject
// cross-session operations before they reach the engine.
type Session struct {
	id     string
	db     *sql.DB
	logger *slog.Logger
}

// Open opens a DuckDB session. Use ":memory:" (or "") for an in-memory
// database. A nil logger discards all logs.
func Open(path string, logger *slog.Logger) (*Session, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	return NewSession(db, logger), nil
}

// NewSession wraps an existing database handle. The caller keeps ownership
// of the handle's lifetime when using this constructor directly; Close still
// closes it.
func NewSession(db *sql.DB, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		id:     uuid.New().String(),
		db:     db,
		logger: logger,
	}
}

// ID returns the session's unique identity.
func (s *Session) ID() string {
	return s.id
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Table returns a relation over a named table in this session. No engine
// call is made; the table's existence is checked on first introspection.
func (s *Session) Table(name string) *Relation {
	return &Relation{session: s, table: name}
}

// LoadCSV creates or replaces a table from a CSV file, letting the engine
// infer the schema (nested columns included, for formats that carry them).
func (s *Session) LoadCSV(ctx context.Context, tableName, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve csv path: %w", err)
	}

	stmt := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto('%s', header=true)",
		quoteIdent(tableName),
		strings.ReplaceAll(absPath, "'", "''"),
	)
	s.logger.Debug("loading csv", slog.String("table", tableName), slog.String("path", absPath))

	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to load csv into %s: %w", tableName, err)
	}
	return nil
}

// Exec runs a statement that returns no rows, such as CREATE TABLE.
func (s *Session) Exec(ctx context.Context, stmt string) error {
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}
	return nil
}

// quoteIdent quotes an identifier for DuckDB, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
