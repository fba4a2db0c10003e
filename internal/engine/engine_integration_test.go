//go:build integration

// Integration tests against a real in-memory DuckDB.
// Run with: go test -tags=integration ./internal/engine/
package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/nestframe/internal/testutil"
	"github.com/leapstack-labs/nestframe/pkg/schema"
)

// openTestSession opens an in-memory DuckDB session seeded with a nested
// customers table and a flat orders table.
func openTestSession(t *testing.T) *Session {
	t.Helper()

	sess, err := Open(":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })

	ctx := context.Background()
	require.NoError(t, sess.Exec(ctx, `CREATE TABLE customers AS
		SELECT * FROM (VALUES
			('alice', {'contact': {'email': 'alice@example.com'}}),
			('bob',   {'contact': {'email': 'bob@example.com'}})
		) AS t(name, profile)`))
	require.NoError(t, sess.Exec(ctx, `CREATE TABLE orders AS
		SELECT * FROM (VALUES
			('alice@example.com', 120.5),
			('bob@example.com', 34.0),
			('bob@example.com', 9.99)
		) AS t(customer_email, amount)`))
	return sess
}

func TestEngine_DescribeNestedTable(t *testing.T) {
	sess := openTestSession(t)

	cols, err := sess.Table("customers").Describe(context.Background())
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "name", cols[0].Name)
	assert.Equal(t, "profile", cols[1].Name)
	require.True(t, cols[1].Type.IsStruct())
	require.Len(t, cols[1].Type.Fields, 1)
	assert.Equal(t, "contact", cols[1].Type.Fields[0].Name)
}

func TestEngine_ExtractAndJoinRoundTrip(t *testing.T) {
	sess := openTestSession(t)
	ctx := context.Background()

	customers := sess.Table("customers")
	cols, err := customers.Describe(ctx)
	require.NoError(t, err)
	fm, err := schema.NewFieldMap(cols, nil, 0)
	require.NoError(t, err)

	flat, err := Extract(customers, fm, []string{"profile.contact.email"})
	require.NoError(t, err)

	joined, err := Join(flat, sess.Table("orders"), []JoinCondition{
		{LeftColumn: "profile_contact_email", RightColumn: "customer_email"},
	}, JoinInner)
	require.NoError(t, err)

	n, err := joined.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	rows, err := joined.Rows(ctx)
	require.NoError(t, err)
	defer rows.Close()

	names, err := rows.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "profile_contact_email", "customer_email", "amount"}, names)
	require.NoError(t, rows.Err())
}

func TestEngine_LoadCSV(t *testing.T) {
	sess := openTestSession(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte("product_id,price\n1,9.99\n2,120.00\n"), 0o644))

	require.NoError(t, sess.LoadCSV(ctx, "products", path))

	n, err := sess.Table("products").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
