package value

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

func TestObjectKeepsInsertionOrder(t *testing.T) {
	obj := NewObject()
	obj.Set("name", String("Tom"))
	obj.Set("age", NewInt(20))
	obj.Set("name", String("Jerry"))

	require.Equal(t, []string{"name", "age"}, obj.Keys())
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"Jerry","age":20}`, string(data))
	require.Equal(t, `{"name":"Jerry","age":20}`, string(data))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"nil and null", nil, Null{}, true},
		{"numbers by value", NewInt(10), mustNumber(t, "10.0"), true},
		{"different numbers", NewInt(10), NewInt(11), false},
		{"string and enum", String("RED"), Enum("RED"), false},
		{"lists", List{NewInt(1), String("a")}, List{NewInt(1), String("a")}, true},
		{"list length", List{NewInt(1)}, List{}, false},
		{
			"objects ignore order",
			NewObject(Field{"a", NewInt(1)}, Field{"b", Boolean(true)}),
			NewObject(Field{"b", Boolean(true)}, Field{"a", NewInt(1)}),
			true,
		},
		{
			"objects differ",
			NewObject(Field{"a", NewInt(1)}),
			NewObject(Field{"a", NewInt(2)}),
			false,
		},
		{"variables", Variable("x"), Variable("x"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestUnmarshalPreservesOrder(t *testing.T) {
	v, err := Unmarshal([]byte(`{"z":1,"a":[true,null,"x"],"m":{"k":1.5}}`))
	require.NoError(t, err)

	obj, ok := v.(*Object)
	require.True(t, ok)
	require.Equal(t, []string{"z", "a", "m"}, obj.Keys())

	want := NewObject(
		Field{"z", NewInt(1)},
		Field{"a", List{Boolean(true), Null{}, String("x")}},
		Field{"m", NewObject(Field{"k", NewFloat(1.5)})},
	)
	require.True(t, Equal(want, v), "got %s", Literal(v))

	_, err = Unmarshal([]byte(`{"a":1} 2`))
	require.Error(t, err)
}

func TestFromAST(t *testing.T) {
	doc, err := parser.ParseQuery(&ast.Source{Input: `{ f(a: [1, 2.5, "s", RED, null, {x: $v}], b: true, c: [$v, {x: $v, y: 1}]) }`})
	require.NoError(t, err)
	args := doc.Operations[0].SelectionSet[0].(*ast.Field).Arguments

	t.Run("keeps variables without bindings", func(t *testing.T) {
		v, err := FromAST(args.ForName("a").Value, nil)
		require.NoError(t, err)
		require.True(t, HasVariables(v))
		require.Equal(t, `[1, 2.5, "s", RED, null, {x: $v}]`, Literal(v))
	})

	t.Run("substitutes variables", func(t *testing.T) {
		v, err := FromAST(args.ForName("a").Value, map[string]Value{"v": String("bound")})
		require.NoError(t, err)
		require.False(t, HasVariables(v))
		require.Equal(t, `[1, 2.5, "s", RED, null, {x: "bound"}]`, Literal(v))
	})

	t.Run("missing variable", func(t *testing.T) {
		v, err := FromAST(args.ForName("c").Value, map[string]Value{})
		require.NoError(t, err)
		require.Equal(t, `[null, {y: 1}]`, Literal(v))
	})

	t.Run("boolean", func(t *testing.T) {
		v, err := FromAST(args.ForName("b").Value, nil)
		require.NoError(t, err)
		require.Equal(t, Boolean(true), v)
	})
}

func TestFromGoAndToGo(t *testing.T) {
	type person struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	v, err := FromGo(map[string]any{"b": 2, "a": []any{"x", nil}, "p": person{"Tom", 20}})
	require.NoError(t, err)
	require.Equal(t, `{a: ["x", null], b: 2, p: {name: "Tom", age: 20}}`, Literal(v))

	got := ToGo(v)
	want := map[string]any{
		"a": []any{"x", nil},
		"b": int64(2),
		"p": map[string]any{"name": "Tom", "age": int64(20)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ToGo mismatch (-want +got):\n%s", diff)
	}

	var p person
	require.NoError(t, Decode(NewObject(Field{"name", String("Ann")}, Field{"age", NewInt(3)}), &p))
	require.Equal(t, person{"Ann", 3}, p)
}

func TestNumber(t *testing.T) {
	n := mustNumber(t, "9007199254740993")
	i, err := n.Int64()
	require.NoError(t, err)
	require.Equal(t, int64(9007199254740993), i)
	require.True(t, n.IsInteger())

	f := NewFloat(2.5)
	require.False(t, f.IsInteger())
	_, err = f.Int64()
	require.Error(t, err)

	_, err = NewInt(-1).Uint64()
	require.Error(t, err)

	_, err = ParseNumber("abc")
	require.Error(t, err)
}

func mustNumber(t *testing.T, raw string) Number {
	t.Helper()
	n, err := ParseNumber(raw)
	require.NoError(t, err)
	return n
}
