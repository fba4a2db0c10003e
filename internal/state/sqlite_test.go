package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/nestframe/internal/testutil"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := Open(":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_RecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ops := []*Operation{
		{Kind: OpAdd, Name: "customers", Qualifier: "analytics.raw.customers", CreatedAt: base},
		{Kind: OpAdd, Name: "orders", CreatedAt: base.Add(time.Second)},
		{
			Kind:      OpJoin,
			Name:      "enriched",
			Qualifier: "joined(analytics.raw.customers⋈<unnamed>)",
			Operands:  []string{"analytics.raw.customers", "<unnamed>"},
			CreatedAt: base.Add(2 * time.Second),
		},
	}
	for _, op := range ops {
		require.NoError(t, store.RecordOperation(ctx, op))
		assert.NotEmpty(t, op.ID)
	}

	listed, err := store.ListOperations(ctx, 0)
	require.NoError(t, err)
	require.Len(t, listed, 3)

	// Newest first.
	assert.Equal(t, OpJoin, listed[0].Kind)
	assert.Equal(t, "enriched", listed[0].Name)
	assert.Equal(t, []string{"analytics.raw.customers", "<unnamed>"}, listed[0].Operands)
	assert.Equal(t, "orders", listed[1].Name)
	assert.Empty(t, listed[1].Operands)
	assert.Equal(t, "customers", listed[2].Name)
}

func TestSQLiteStore_ListLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordOperation(ctx, &Operation{
			Kind:      OpPrepare,
			Name:      "t",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	listed, err := store.ListOperations(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestSQLiteStore_FillsDefaults(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	op := &Operation{Kind: OpAdd, Name: "customers"}
	require.NoError(t, store.RecordOperation(ctx, op))
	assert.NotEmpty(t, op.ID)
	assert.False(t, op.CreatedAt.IsZero())
}
