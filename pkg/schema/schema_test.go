package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType_Leaves(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "scalar", raw: "INTEGER"},
		{name: "varchar", raw: "VARCHAR"},
		{name: "decimal with precision", raw: "DECIMAL(18,3)"},
		{name: "list", raw: "VARCHAR[]"},
		{name: "fixed array", raw: "INTEGER[3]"},
		{name: "list of structs is a leaf", raw: "STRUCT(a INTEGER)[]"},
		{name: "map", raw: "MAP(VARCHAR, INTEGER)"},
		{name: "union", raw: "UNION(num INTEGER, str VARCHAR)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, err := ParseType(tt.raw)
			require.NoError(t, err)
			assert.False(t, typ.IsStruct())
			assert.Equal(t, tt.raw, typ.Raw)
		})
	}
}

func TestParseType_Struct(t *testing.T) {
	typ, err := ParseType("STRUCT(name VARCHAR, age INTEGER)")
	require.NoError(t, err)
	require.True(t, typ.IsStruct())
	require.Len(t, typ.Fields, 2)
	assert.Equal(t, "name", typ.Fields[0].Name)
	assert.Equal(t, "VARCHAR", typ.Fields[0].Type.Raw)
	assert.Equal(t, "age", typ.Fields[1].Name)
	assert.Equal(t, "INTEGER", typ.Fields[1].Type.Raw)
}

func TestParseType_NestedStruct(t *testing.T) {
	typ, err := ParseType("STRUCT(contact STRUCT(email VARCHAR, phone VARCHAR), score DECIMAL(10,2))")
	require.NoError(t, err)
	require.True(t, typ.IsStruct())
	require.Len(t, typ.Fields, 2)

	contact := typ.Fields[0]
	assert.Equal(t, "contact", contact.Name)
	require.True(t, contact.Type.IsStruct())
	require.Len(t, contact.Type.Fields, 2)
	assert.Equal(t, "email", contact.Type.Fields[0].Name)
	assert.Equal(t, "phone", contact.Type.Fields[1].Name)

	score := typ.Fields[1]
	assert.Equal(t, "score", score.Name)
	assert.False(t, score.Type.IsStruct())
	assert.Equal(t, "DECIMAL(10,2)", score.Type.Raw)
}

func TestParseType_QuotedFieldNames(t *testing.T) {
	typ, err := ParseType(`STRUCT("first name" VARCHAR, "say ""hi""" INTEGER)`)
	require.NoError(t, err)
	require.Len(t, typ.Fields, 2)
	assert.Equal(t, "first name", typ.Fields[0].Name)
	assert.Equal(t, `say "hi"`, typ.Fields[1].Name)
}

func TestParseType_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "empty struct", raw: "STRUCT()"},
		{name: "field without type", raw: "STRUCT(name)"},
		{name: "unterminated quote", raw: `STRUCT("name VARCHAR)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseType(tt.raw)
			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
		})
	}
}
