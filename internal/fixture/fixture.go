// Package fixture serves a static data tree through the resolver traits so
// that any schema can be queried without writing resolvers.
//
// A fixture document has one section per root type:
//
//	query:
//	  hello: world
//	  people:
//	    - id: 1
//	      name: Tom
//	mutation:
//	  ping: pong
//
// Maps become objects and sequences become lists. A "__typename" key names
// the concrete type of a map that stands for an interface or union.
// Arguments narrow collections: a sequence keeps the entries whose keys
// equal the argument values, and a map answering a single-object field with
// one argument is looked up by the argument's value.
package fixture

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hanpama/gqlcore/internal/resolver"
	"github.com/hanpama/gqlcore/internal/schema"
	"github.com/hanpama/gqlcore/internal/value"
)

var ErrEmptyFile = errors.New("fixture file is empty")

// Fixture holds the data of each root type.
type Fixture struct {
	Query        map[string]any `yaml:"query"`
	Mutation     map[string]any `yaml:"mutation"`
	Subscription map[string]any `yaml:"subscription"`
}

// Load reads a YAML or JSON fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a fixture. JSON is accepted as a subset of YAML.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &f, nil
}

// QueryRoot returns the resolver of the query section. It is never nil so
// that introspection works on an empty fixture.
func (f *Fixture) QueryRoot(s *schema.Schema) resolver.FieldResolver {
	return &object{schema: s, name: s.QueryType, data: f.Query}
}

// MutationRoot returns the resolver of the mutation section, or nil when
// the fixture has none.
func (f *Fixture) MutationRoot(s *schema.Schema) resolver.FieldResolver {
	if f.Mutation == nil {
		return nil
	}
	return &object{schema: s, name: s.MutationType, data: f.Mutation}
}

// SubscriptionRoot returns the resolver of the subscription section, or
// nil when the fixture has none.
func (f *Fixture) SubscriptionRoot(s *schema.Schema) resolver.FieldResolver {
	if f.Subscription == nil {
		return nil
	}
	return &object{schema: s, name: s.SubscriptionType, data: f.Subscription}
}

type object struct {
	schema *schema.Schema
	name   string
	data   map[string]any
}

func (o *object) TypeName() string {
	if name, ok := o.data[schema.TypenameFieldName].(string); ok {
		return name
	}
	return o.name
}

func (o *object) ResolveSelectionSet(ctx *resolver.SelectionSetContext) (value.Value, error) {
	return resolver.ResolveSelectionSet(ctx, o, false)
}

func (o *object) ResolveField(ctx *resolver.FieldContext) (value.Value, error) {
	raw, ok := o.data[ctx.Field.Name]
	if !ok || raw == nil {
		return value.Null{}, nil
	}
	typ := ctx.Type()
	if t := o.schema.Types[typ.GetNamedType()]; t != nil && t.IsComposite() {
		raw = narrow(raw, typ, ctx.Args())
		if raw == nil {
			return value.Null{}, nil
		}
	}
	return resolver.Resolve(ctx, o.wrap(raw, typ))
}

// wrap turns raw data into the resolver for a value of type typ. Leaf
// types convert the data as it is, whatever its shape.
func (o *object) wrap(raw any, typ *schema.TypeRef) resolver.FieldResolver {
	if raw == nil {
		return resolver.Raw{}
	}
	if t := o.schema.Types[typ.GetNamedType()]; t == nil || t.IsLeaf() {
		return leaf{raw: raw, typeName: typ.GetNamedType()}
	}
	switch raw := raw.(type) {
	case map[string]any:
		return &object{schema: o.schema, name: typ.GetNamedType(), data: raw}
	case []any:
		item := typ.Nullable()
		if item.IsList() {
			item = item.OfType
		}
		list := make(resolver.List[resolver.FieldResolver], len(raw))
		for i, v := range raw {
			list[i] = o.wrap(v, item)
		}
		return list
	}
	return resolver.Any(raw)
}

// leaf converts data of a scalar or enum type. IDs are always rendered as
// strings; other values keep the shape of the data.
type leaf struct {
	raw      any
	typeName string
}

func (l leaf) ResolveField(*resolver.FieldContext) (value.Value, error) {
	v, err := value.FromGo(l.raw)
	if err != nil {
		return nil, err
	}
	if l.typeName == "ID" {
		return idValue(v), nil
	}
	return v, nil
}

func idValue(v value.Value) value.Value {
	switch v := v.(type) {
	case value.Number:
		return value.String(v.String())
	case value.List:
		out := make(value.List, len(v))
		for i, item := range v {
			out[i] = idValue(item)
		}
		return out
	}
	return v
}

// narrow applies the field arguments to collection data. Sequences keep
// the entries matching every argument they carry a key for; a single
// object field takes the first remaining entry.
func narrow(raw any, typ *schema.TypeRef, args map[string]value.Value) any {
	single := !typ.Nullable().IsList()
	switch data := raw.(type) {
	case []any:
		if len(args) > 0 {
			kept := make([]any, 0, len(data))
			for _, item := range data {
				if matches(item, args) {
					kept = append(kept, item)
				}
			}
			data = kept
		}
		if single {
			if len(data) == 0 {
				return nil
			}
			return data[0]
		}
		return data
	case map[string]any:
		if single && len(args) == 1 {
			for _, arg := range args {
				key, ok := scalarString(arg)
				if !ok {
					break
				}
				if entry, ok := data[key].(map[string]any); ok {
					return entry
				}
			}
		}
	}
	return raw
}

func matches(item any, args map[string]value.Value) bool {
	m, ok := item.(map[string]any)
	if !ok {
		return true
	}
	for name, arg := range args {
		got, ok := m[name]
		if !ok || value.IsNull(arg) {
			continue
		}
		gv, err := value.FromGo(got)
		if err != nil {
			return false
		}
		if value.Equal(gv, arg) {
			continue
		}
		a, aok := scalarString(arg)
		g, gok := scalarString(gv)
		if !aok || !gok || a != g {
			return false
		}
	}
	return true
}

// scalarString renders scalar values so that an ID argument "1" matches
// the number 1 in the data.
func scalarString(v value.Value) (string, bool) {
	switch v := v.(type) {
	case value.String:
		return string(v), true
	case value.Enum:
		return string(v), true
	case value.Number:
		return v.String(), true
	case value.Boolean:
		if v {
			return "true", true
		}
		return "false", true
	}
	return "", false
}
