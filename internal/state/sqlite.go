package state

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // sqlite driver
)

// operandSeparator joins operand qualifiers into one column. U+001F is the
// unit separator and cannot occur in a qualifier.
const operandSeparator = "\x1f"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (and migrates) a SQLite history store. Use ":memory:" for an
// in-memory store. A nil logger discards all logs.
func Open(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := &SQLiteStore{db: db, path: path, logger: logger}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the store.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordOperation inserts one operation row. A zero ID or CreatedAt is
// filled in.
func (s *SQLiteStore) RecordOperation(ctx context.Context, op *Operation) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if op.ID == "" {
		op.ID = uuid.New().String()
	}
	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now().UTC()
	}

	s.logger.Debug("recording operation",
		slog.String("id", op.ID),
		slog.String("kind", string(op.Kind)),
		slog.String("name", op.Name))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO operations (id, kind, name, qualifier, operands, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		op.ID, string(op.Kind), op.Name, op.Qualifier,
		strings.Join(op.Operands, operandSeparator), op.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record operation: %w", err)
	}
	return nil
}

// ListOperations returns the most recent operations, newest first.
// A limit <= 0 returns everything.
func (s *SQLiteStore) ListOperations(ctx context.Context, limit int) ([]*Operation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `SELECT id, kind, name, qualifier, operands, created_at
	          FROM operations ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ops []*Operation
	for rows.Next() {
		var op Operation
		var kind, operands string
		if err := rows.Scan(&op.ID, &kind, &op.Name, &op.Qualifier, &operands, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		op.Kind = OpKind(kind)
		if operands != "" {
			op.Operands = strings.Split(operands, operandSeparator)
		}
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operations: %w", err)
	}
	return ops, nil
}

var _ Store = (*SQLiteStore)(nil)
