//go:build integration

// Integration tests against a real in-memory DuckDB.
// Run with: go test -tags=integration ./internal/handler/
package handler

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/nestframe/internal/engine"
	"github.com/leapstack-labs/nestframe/internal/testutil"
)

func openSeededSession(t *testing.T) *engine.Session {
	t.Helper()

	sess, err := engine.Open(":memory:", testutil.NewTestLogger(t))
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

func TestRegistry_EndToEndJoin(t *testing.T) {
	sess := openSeededSession(t)
	ctx := context.Background()
	reg := NewRegistry(WithLogger(testutil.NewTestLogger(t)))

	_, err := reg.Add(ctx, "customers", sess.Table("customers"), "")
	require.NoError(t, err)
	_, err = reg.Add(ctx, "orders", sess.Table("orders"), "")
	require.NoError(t, err)

	result, err := reg.Join(ctx, JoinSpec{
		Tables: []JoinTable{
			{Alias: "c", Name: "customers"},
			{Alias: "o", Name: "orders"},
		},
		Conditions: []JoinCondition{
			{LeftAlias: "c", LeftField: "profile.contact.email", RightAlias: "o", RightField: "customer_email"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "joined(<unnamed>⋈<unnamed>)", result.Qualifier())

	cols := result.Fields().FlatColumns()
	sort.Strings(cols)
	assert.Equal(t, []string{"amount", "customer_email", "name", "profile_contact_email"}, cols)

	n, err := result.Relation().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestRegistry_EndToEndPrepare(t *testing.T) {
	sess := openSeededSession(t)
	ctx := context.Background()
	reg := NewRegistry()

	_, err := reg.Add(ctx, "customers", sess.Table("customers"), "db.sales.customers")
	require.NoError(t, err)

	// Selective extraction adds exactly one new column next to the flats.
	prepared, err := reg.Prepare(ctx, "customers", []string{"profile.contact.email"})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "profile_contact_email"}, prepared.Fields().FlatColumns())
	assert.Equal(t, "db.sales.customers", prepared.Qualifier())

	n, err := prepared.Relation().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
