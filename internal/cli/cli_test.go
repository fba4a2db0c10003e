package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/nestframe/internal/engine"
	"github.com/leapstack-labs/nestframe/internal/handler"
)

func TestParseJoinSpec(t *testing.T) {
	spec, err := parseJoinSpec(
		[]string{"c=customers", "o=orders"},
		[]string{"c.profile.contact.email=o.customer_email"},
		"inner",
	)
	require.NoError(t, err)

	assert.Equal(t, engine.JoinInner, spec.Kind)
	assert.Equal(t, []handler.JoinTable{
		{Alias: "c", Name: "customers"},
		{Alias: "o", Name: "orders"},
	}, spec.Tables)
	require.Len(t, spec.Conditions, 1)
	assert.Equal(t, handler.JoinCondition{
		LeftAlias:  "c",
		LeftField:  "profile.contact.email",
		RightAlias: "o",
		RightField: "customer_email",
	}, spec.Conditions[0])
}

func TestParseJoinSpec_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		tables  []string
		ons     []string
		wantErr string
	}{
		{
			name:    "table without equals",
			tables:  []string{"customers"},
			wantErr: "expected alias=name",
		},
		{
			name:    "table with empty alias",
			tables:  []string{"=customers"},
			wantErr: "expected alias=name",
		},
		{
			name:    "condition without equals",
			tables:  []string{"c=customers", "o=orders"},
			ons:     []string{"c.name"},
			wantErr: "expected alias.field=alias.field",
		},
		{
			name:    "condition side without alias",
			tables:  []string{"c=customers", "o=orders"},
			ons:     []string{"name=o.customer_email"},
			wantErr: "must be alias.field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseJoinSpec(tt.tables, tt.ons, "inner")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSplitFieldRef(t *testing.T) {
	alias, field, err := splitFieldRef("c.profile.contact.email")
	require.NoError(t, err)
	assert.Equal(t, "c", alias)
	assert.Equal(t, "profile.contact.email", field)

	alias, field, err = splitFieldRef("o.amount")
	require.NoError(t, err)
	assert.Equal(t, "o", alias)
	assert.Equal(t, "amount", field)

	_, _, err = splitFieldRef("noalias")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	cmd := newVersionCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "nestframe v"+Version)
}

func TestRootCommandWiring(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"inspect", "flatten", "join", "status", "history", "version"} {
		assert.Contains(t, names, want)
	}
}
