package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin_SQL(t *testing.T) {
	sess := NewSession(nil, nil)
	left := sess.Table("customers")
	right := sess.Table("orders")

	got, err := Join(left, right, []JoinCondition{
		{LeftColumn: "profile_contact_email", RightColumn: "customer_email"},
	}, JoinInner)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT * FROM "customers" AS l INNER JOIN "orders" AS r `+
			`ON l."profile_contact_email" = r."customer_email"`,
		got.SQL())
}

func TestJoin_MultipleConditions(t *testing.T) {
	sess := NewSession(nil, nil)

	got, err := Join(sess.Table("a"), sess.Table("b"), []JoinCondition{
		{LeftColumn: "x", RightColumn: "y"},
		{LeftColumn: "region", RightColumn: "region"},
	}, JoinLeft)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT * FROM "a" AS l LEFT JOIN "b" AS r ON l."x" = r."y" AND l."region" = r."region"`,
		got.SQL())
}

func TestJoin_Cross(t *testing.T) {
	sess := NewSession(nil, nil)

	got, err := Join(sess.Table("a"), sess.Table("b"), nil, JoinCross)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "a" AS l CROSS JOIN "b" AS r`, got.SQL())

	_, err = Join(sess.Table("a"), sess.Table("b"), []JoinCondition{{LeftColumn: "x", RightColumn: "y"}}, JoinCross)
	assert.Error(t, err)
}

func TestJoin_RequiresConditions(t *testing.T) {
	sess := NewSession(nil, nil)

	_, err := Join(sess.Table("a"), sess.Table("b"), nil, JoinInner)
	assert.Error(t, err)
}

func TestJoin_InvalidKind(t *testing.T) {
	sess := NewSession(nil, nil)

	_, err := Join(sess.Table("a"), sess.Table("b"), []JoinCondition{{LeftColumn: "x", RightColumn: "y"}}, JoinKind("semi"))
	assert.Error(t, err)
	assert.False(t, JoinKind("semi").Valid())
	assert.True(t, JoinOuter.Valid())
}

func TestJoin_SessionMismatch(t *testing.T) {
	left := NewSession(nil, nil).Table("a")
	right := NewSession(nil, nil).Table("b")

	_, err := Join(left, right, []JoinCondition{{LeftColumn: "x", RightColumn: "y"}}, JoinInner)
	var mismatch *SessionMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.NotEqual(t, mismatch.Left, mismatch.Right)
}
