package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlcore/internal/value"
)

func TestCoerceInput(t *testing.T) {
	s, err := BuildSDL(`
		type Query { a: Int }
		enum Color { RED GREEN }
		input Filter { name: String!, limit: Int = 10, colors: [Color!] }
		input Pick @oneOf { id: ID, name: String }
		scalar Time
	`)
	require.NoError(t, err)

	filter := NamedType("Filter")
	tests := []struct {
		name    string
		in      value.Value
		ref     *TypeRef
		want    string
		wantErr string
	}{
		{name: "int", in: value.NewInt(3), ref: NamedType("Int"), want: "3"},
		{name: "int from whole float", in: mustNumber(t, "3.0"), ref: NamedType("Int"), want: "3"},
		{name: "int overflow", in: value.NewInt(1 << 40), ref: NamedType("Int"), wantErr: "Int cannot represent non 32-bit signed integer value: 1099511627776"},
		{name: "int from string", in: value.String("3"), ref: NamedType("Int"), wantErr: `Int cannot represent non-integer value: "3"`},
		{name: "float from int", in: value.NewInt(3), ref: NamedType("Float"), want: "3"},
		{name: "id from int", in: value.NewInt(7), ref: NamedType("ID"), want: `"7"`},
		{name: "boolean", in: value.Boolean(true), ref: NamedType("Boolean"), want: "true"},
		{name: "null for nullable", in: value.Null{}, ref: NamedType("String"), want: "null"},
		{name: "null for non-null", in: nil, ref: NonNullType(NamedType("String")), wantErr: `Expected value of non-null type "String!", found null`},
		{name: "single value to list", in: value.NewInt(1), ref: ListType(NamedType("Int")), want: "[1]"},
		{name: "list item error", in: value.List{value.NewInt(1), value.String("x")}, ref: ListType(NamedType("Int")), wantErr: `In element #1: Int cannot represent non-integer value: "x"`},
		{name: "enum from string", in: value.String("RED"), ref: NamedType("Color"), want: "RED"},
		{name: "unknown enum", in: value.Enum("BLUE"), ref: NamedType("Color"), wantErr: `Value "BLUE" does not exist in "Color" enum`},
		{name: "custom scalar passes", in: value.String("2020-01-01"), ref: NamedType("Time"), want: `"2020-01-01"`},
		{name: "variable passes", in: value.Variable("v"), ref: NonNullType(NamedType("Int")), want: "$v"},
		{
			name: "input object defaults",
			in:   value.NewObject(value.Field{Name: "name", Value: value.String("x")}),
			ref:  filter,
			want: `{name: "x", limit: 10}`,
		},
		{
			name:    "input object missing required",
			in:      value.NewObject(),
			ref:     filter,
			wantErr: `Field "name" of required type "String!" was not provided`,
		},
		{
			name:    "input object unknown field",
			in:      value.NewObject(value.Field{Name: "name", Value: value.String("x")}, value.Field{Name: "other", Value: value.NewInt(1)}),
			ref:     filter,
			wantErr: `Field "other" is not defined by type "Filter"`,
		},
		{
			name:    "input object nested error",
			in:      value.NewObject(value.Field{Name: "name", Value: value.String("x")}, value.Field{Name: "colors", Value: value.List{value.Enum("RED"), value.Null{}}}),
			ref:     filter,
			wantErr: `In field "colors": In element #1: Expected value of non-null type "Color!", found null`,
		},
		{
			name: "one of",
			in:   value.NewObject(value.Field{Name: "id", Value: value.String("1")}),
			ref:  NamedType("Pick"),
			want: `{id: "1"}`,
		},
		{
			name:    "one of with two fields",
			in:      value.NewObject(value.Field{Name: "id", Value: value.String("1")}, value.Field{Name: "name", Value: value.String("x")}),
			ref:     NamedType("Pick"),
			wantErr: `OneOf input object "Pick" must specify exactly one non-null field`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.CoerceInput(tt.in, tt.ref)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, value.Literal(got))
		})
	}
}

func mustNumber(t *testing.T, raw string) value.Number {
	t.Helper()
	n, err := value.ParseNumber(raw)
	require.NoError(t, err)
	return n
}
