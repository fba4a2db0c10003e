// Package state persists registry operation history to SQLite. The history
// is advisory metadata (qualifiers and lineage for humans to inspect later)
// and never affects operation semantics.
package state

import (
	"context"
	"time"
)

// OpKind classifies a recorded registry operation.
type OpKind string

const (
	OpAdd     OpKind = "add"
	OpPrepare OpKind = "prepare"
	OpJoin    OpKind = "join"
)

// Operation is one recorded registry operation.
type Operation struct {
	ID        string
	Kind      OpKind
	Name      string // registry name of the result, empty for unnamed results
	Qualifier string // qualifier of the result, empty for in-memory
	Operands  []string
	CreatedAt time.Time
}

// Store records and lists registry operations.
type Store interface {
	RecordOperation(ctx context.Context, op *Operation) error
	ListOperations(ctx context.Context, limit int) ([]*Operation, error)
	Close() error
}
