package introspection

import (
	"sort"

	"github.com/hanpama/gqlcore/internal/resolver"
	"github.com/hanpama/gqlcore/internal/schema"
	"github.com/hanpama/gqlcore/internal/value"
)

// The resolvers below read the registry only, so their selection sets
// resolve serially.

type schemaResolver struct {
	schema *schema.Schema
}

func (*schemaResolver) TypeName() string { return "__Schema" }

func (r *schemaResolver) ResolveSelectionSet(ctx *resolver.SelectionSetContext) (value.Value, error) {
	return resolver.ResolveSelectionSet(ctx, r, false)
}

func (r *schemaResolver) ResolveField(ctx *resolver.FieldContext) (value.Value, error) {
	s := r.schema
	switch ctx.Field.Name {
	case "description":
		return optString(s.Description), nil
	case "types":
		names := make([]string, 0, len(s.Types))
		for name := range s.Types {
			names = append(names, name)
		}
		return resolver.Resolve(ctx, namedTypes(s, names))
	case "queryType":
		return resolver.Resolve(ctx, rootType(s, s.QueryType))
	case "mutationType":
		return resolver.Resolve(ctx, rootType(s, s.MutationType))
	case "subscriptionType":
		return resolver.Resolve(ctx, rootType(s, s.SubscriptionType))
	case "directives":
		names := make([]string, 0, len(s.Directives))
		for name := range s.Directives {
			names = append(names, name)
		}
		sort.Strings(names)
		list := make(resolver.List[*directiveResolver], len(names))
		for i, name := range names {
			list[i] = &directiveResolver{schema: s, directive: s.Directives[name]}
		}
		return resolver.Resolve(ctx, list)
	}
	return value.Null{}, nil
}

// typeResolver renders a type reference. Wrapper kinds only expose kind
// and ofType; named references expose the registered type.
type typeResolver struct {
	schema *schema.Schema
	ref    *schema.TypeRef
	def    *schema.Type // nil for LIST and NON_NULL
}

func newType(s *schema.Schema, ref *schema.TypeRef) *typeResolver {
	t := &typeResolver{schema: s, ref: ref}
	if ref.Kind == schema.TypeRefKindNamed {
		t.def = s.Types[ref.Named]
	}
	return t
}

func rootType(s *schema.Schema, name string) resolver.Option[*typeResolver] {
	if name == "" || s.Types[name] == nil {
		return resolver.None[*typeResolver]()
	}
	return resolver.Some(newType(s, schema.NamedType(name)))
}

// namedTypes returns the registered types among names, sorted by name.
func namedTypes(s *schema.Schema, names []string) resolver.List[*typeResolver] {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	list := make(resolver.List[*typeResolver], 0, len(sorted))
	for _, name := range sorted {
		if s.Types[name] != nil {
			list = append(list, newType(s, schema.NamedType(name)))
		}
	}
	return list
}

func (*typeResolver) TypeName() string { return "__Type" }

func (r *typeResolver) ResolveSelectionSet(ctx *resolver.SelectionSetContext) (value.Value, error) {
	return resolver.ResolveSelectionSet(ctx, r, false)
}

func (r *typeResolver) ResolveField(ctx *resolver.FieldContext) (value.Value, error) {
	if ctx.Field.Name == "kind" {
		if r.def == nil {
			return value.Enum(r.ref.Kind), nil
		}
		return value.Enum(r.def.Kind), nil
	}
	if r.def == nil {
		if ctx.Field.Name == "ofType" {
			return resolver.Resolve(ctx, newType(r.schema, r.ref.OfType))
		}
		return value.Null{}, nil
	}

	t := r.def
	switch ctx.Field.Name {
	case "name":
		return value.String(t.Name), nil
	case "description":
		return optString(t.Description), nil
	case "specifiedByURL":
		if t.SpecifiedByURL == nil {
			return value.Null{}, nil
		}
		return value.String(*t.SpecifiedByURL), nil
	case "fields":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return value.Null{}, nil
		}
		all := includeDeprecated(ctx)
		list := make(resolver.List[*fieldResolver], 0, len(t.Fields))
		for _, f := range t.Fields {
			if all || !f.IsDeprecated {
				list = append(list, &fieldResolver{schema: r.schema, field: f})
			}
		}
		return resolver.Resolve(ctx, list)
	case "interfaces":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return value.Null{}, nil
		}
		return resolver.Resolve(ctx, namedTypes(r.schema, t.Interfaces))
	case "possibleTypes":
		if !t.IsAbstract() {
			return value.Null{}, nil
		}
		return resolver.Resolve(ctx, namedTypes(r.schema, r.schema.PossibleTypes(t.Name)))
	case "enumValues":
		if t.Kind != schema.TypeKindEnum {
			return value.Null{}, nil
		}
		all := includeDeprecated(ctx)
		list := make(resolver.List[*enumValueResolver], 0, len(t.EnumValues))
		for _, ev := range t.EnumValues {
			if all || !ev.IsDeprecated {
				list = append(list, &enumValueResolver{ev})
			}
		}
		return resolver.Resolve(ctx, list)
	case "inputFields":
		if t.Kind != schema.TypeKindInputObject {
			return value.Null{}, nil
		}
		return resolver.Resolve(ctx, inputValues(r.schema, t.InputFields, includeDeprecated(ctx)))
	case "isOneOf":
		if t.Kind != schema.TypeKindInputObject {
			return value.Null{}, nil
		}
		return value.Boolean(t.OneOf), nil
	}
	return value.Null{}, nil
}

type fieldResolver struct {
	schema *schema.Schema
	field  *schema.Field
}

func (*fieldResolver) TypeName() string { return "__Field" }

func (r *fieldResolver) ResolveSelectionSet(ctx *resolver.SelectionSetContext) (value.Value, error) {
	return resolver.ResolveSelectionSet(ctx, r, false)
}

func (r *fieldResolver) ResolveField(ctx *resolver.FieldContext) (value.Value, error) {
	f := r.field
	switch ctx.Field.Name {
	case "name":
		return value.String(f.Name), nil
	case "description":
		return optString(f.Description), nil
	case "args":
		return resolver.Resolve(ctx, inputValues(r.schema, f.Arguments, includeDeprecated(ctx)))
	case "type":
		return resolver.Resolve(ctx, newType(r.schema, f.Type))
	case "isDeprecated":
		return value.Boolean(f.IsDeprecated), nil
	case "deprecationReason":
		return deprecationReason(f.IsDeprecated, f.DeprecationReason), nil
	}
	return value.Null{}, nil
}

type inputValueResolver struct {
	schema *schema.Schema
	input  *schema.InputValue
}

func inputValues(s *schema.Schema, in []*schema.InputValue, all bool) resolver.List[*inputValueResolver] {
	list := make(resolver.List[*inputValueResolver], 0, len(in))
	for _, iv := range in {
		if all || !iv.IsDeprecated {
			list = append(list, &inputValueResolver{schema: s, input: iv})
		}
	}
	return list
}

func (*inputValueResolver) TypeName() string { return "__InputValue" }

func (r *inputValueResolver) ResolveSelectionSet(ctx *resolver.SelectionSetContext) (value.Value, error) {
	return resolver.ResolveSelectionSet(ctx, r, false)
}

func (r *inputValueResolver) ResolveField(ctx *resolver.FieldContext) (value.Value, error) {
	iv := r.input
	switch ctx.Field.Name {
	case "name":
		return value.String(iv.Name), nil
	case "description":
		return optString(iv.Description), nil
	case "type":
		return resolver.Resolve(ctx, newType(r.schema, iv.Type))
	case "defaultValue":
		if iv.DefaultValue == nil {
			return value.Null{}, nil
		}
		return value.String(value.Literal(iv.DefaultValue)), nil
	case "isDeprecated":
		return value.Boolean(iv.IsDeprecated), nil
	case "deprecationReason":
		return deprecationReason(iv.IsDeprecated, iv.DeprecationReason), nil
	}
	return value.Null{}, nil
}

type enumValueResolver struct {
	value *schema.EnumValue
}

func (*enumValueResolver) TypeName() string { return "__EnumValue" }

func (r *enumValueResolver) ResolveSelectionSet(ctx *resolver.SelectionSetContext) (value.Value, error) {
	return resolver.ResolveSelectionSet(ctx, r, false)
}

func (r *enumValueResolver) ResolveField(ctx *resolver.FieldContext) (value.Value, error) {
	ev := r.value
	switch ctx.Field.Name {
	case "name":
		return value.String(ev.Name), nil
	case "description":
		return optString(ev.Description), nil
	case "isDeprecated":
		return value.Boolean(ev.IsDeprecated), nil
	case "deprecationReason":
		return deprecationReason(ev.IsDeprecated, ev.DeprecationReason), nil
	}
	return value.Null{}, nil
}

type directiveResolver struct {
	schema    *schema.Schema
	directive *schema.Directive
}

func (*directiveResolver) TypeName() string { return "__Directive" }

func (r *directiveResolver) ResolveSelectionSet(ctx *resolver.SelectionSetContext) (value.Value, error) {
	return resolver.ResolveSelectionSet(ctx, r, false)
}

func (r *directiveResolver) ResolveField(ctx *resolver.FieldContext) (value.Value, error) {
	d := r.directive
	switch ctx.Field.Name {
	case "name":
		return value.String(d.Name), nil
	case "description":
		return optString(d.Description), nil
	case "locations":
		locs := make(value.List, len(d.Locations))
		for i, loc := range d.Locations {
			locs[i] = value.Enum(loc)
		}
		return locs, nil
	case "args":
		return resolver.Resolve(ctx, inputValues(r.schema, d.Arguments, includeDeprecated(ctx)))
	case "isRepeatable":
		return value.Boolean(d.IsRepeatable), nil
	}
	return value.Null{}, nil
}

func includeDeprecated(ctx *resolver.FieldContext) bool {
	b, _ := ctx.Arg("includeDeprecated").(value.Boolean)
	return bool(b)
}

func optString(s string) value.Value {
	if s == "" {
		return value.Null{}
	}
	return value.String(s)
}

func deprecationReason(deprecated bool, reason string) value.Value {
	if !deprecated {
		return value.Null{}
	}
	return value.String(reason)
}
