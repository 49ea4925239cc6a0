package validation

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hanpama/gqlcore/internal/schema"
	"github.com/hanpama/gqlcore/internal/value"
)

// overlappingFieldsCanBeMerged rejects selection sets in which two fields
// with the same response key could not be merged into one result: they
// name different fields or pass different arguments on the same parent,
// return conflicting shapes, or have sub-selections that conflict in turn.
// Fragments are expanded, so conflicts across spreads are found too.
type overlappingFieldsCanBeMerged struct {
	Base
	compared map[comparedPair]bool
}

// comparedPair memoizes a comparison. A pair compared under exclusive
// parents skipped the name and argument checks, so it is compared again
// when met under parents that may coincide.
type comparedPair struct {
	a, b      *ast.Field
	exclusive bool
}

type fieldInfo struct {
	field  *ast.Field
	parent string
	def    *schema.Field
}

// fieldGroups holds collected fields by response key in first-seen order.
type fieldGroups struct {
	keys  []string
	byKey map[string][]fieldInfo
}

func (r *overlappingFieldsCanBeMerged) EnterSelectionSet(ctx *Context, set ast.SelectionSet) {
	groups := collectFieldInfos(ctx, ctx.ParentType(), set)
	for _, key := range groups.keys {
		fields := groups.byKey[key]
		for i := 0; i < len(fields); i++ {
			for j := i + 1; j < len(fields); j++ {
				a, b := fields[i], fields[j]
				if reasons := r.findConflict(ctx, false, a, b); len(reasons) > 0 {
					ctx.reportAt([]*ast.Position{a.field.Position, b.field.Position},
						"Fields %q conflict because %s. Use different aliases on the fields to fetch both if this was intentional.",
						key, strings.Join(reasons, " and "))
				}
			}
		}
	}
}

// findConflict compares two fields with the same response key. Parents
// that are distinct object types can never both apply, so their fields
// may differ in name and arguments but not in shape.
func (r *overlappingFieldsCanBeMerged) findConflict(ctx *Context, exclusive bool, a, b fieldInfo) []string {
	if a.field == b.field {
		return nil
	}
	if r.compared[comparedPair{a.field, b.field, exclusive}] || r.compared[comparedPair{a.field, b.field, false}] {
		return nil
	}
	r.compared[comparedPair{a.field, b.field, exclusive}] = true
	r.compared[comparedPair{b.field, a.field, exclusive}] = true

	exclusive = exclusive || (a.parent != b.parent && isObjectType(ctx.Schema, a.parent) && isObjectType(ctx.Schema, b.parent))
	if !exclusive {
		if a.field.Name != b.field.Name {
			return []string{fmt.Sprintf("%s and %s are different fields", a.field.Name, b.field.Name)}
		}
		if !sameArguments(a.field.Arguments, b.field.Arguments) {
			return []string{"they have differing arguments"}
		}
	}
	if a.def != nil && b.def != nil && typesConflict(ctx.Schema, a.def.Type, b.def.Type) {
		return []string{fmt.Sprintf("they return conflicting types %s and %s", a.def.Type.String(), b.def.Type.String())}
	}
	if len(a.field.SelectionSet) == 0 || len(b.field.SelectionSet) == 0 {
		return nil
	}

	subA := collectFieldInfos(ctx, childType(ctx, a.def), a.field.SelectionSet)
	subB := collectFieldInfos(ctx, childType(ctx, b.def), b.field.SelectionSet)
	var reasons []string
	for _, key := range subA.keys {
		for _, fa := range subA.byKey[key] {
			for _, fb := range subB.byKey[key] {
				for _, reason := range r.findConflict(ctx, exclusive, fa, fb) {
					reasons = append(reasons, fmt.Sprintf("subfields %q conflict because %s", key, reason))
				}
			}
		}
	}
	return reasons
}

func collectFieldInfos(ctx *Context, parent string, set ast.SelectionSet) fieldGroups {
	groups := fieldGroups{byKey: make(map[string][]fieldInfo)}
	collectInto(ctx, parent, set, &groups, make(map[string]bool))
	return groups
}

func collectInto(ctx *Context, parent string, set ast.SelectionSet, groups *fieldGroups, visited map[string]bool) {
	for _, sel := range set {
		switch sel := sel.(type) {
		case *ast.Field:
			key := sel.Alias
			if key == "" {
				key = sel.Name
			}
			info := fieldInfo{field: sel, parent: parent}
			if parent != "" {
				info.def = ctx.Schema.FieldDefinition(parent, sel.Name)
			}
			if _, ok := groups.byKey[key]; !ok {
				groups.keys = append(groups.keys, key)
			}
			groups.byKey[key] = append(groups.byKey[key], info)
		case *ast.InlineFragment:
			p := parent
			if sel.TypeCondition != "" {
				p = ctx.compositeType(sel.TypeCondition)
			}
			collectInto(ctx, p, sel.SelectionSet, groups, visited)
		case *ast.FragmentSpread:
			frag := ctx.Fragment(sel.Name)
			if frag == nil || visited[sel.Name] {
				continue
			}
			visited[sel.Name] = true
			collectInto(ctx, ctx.compositeType(frag.TypeCondition), frag.SelectionSet, groups, visited)
		}
	}
}

func childType(ctx *Context, def *schema.Field) string {
	if def == nil {
		return ""
	}
	return ctx.compositeType(def.Type.GetNamedType())
}

func isObjectType(s *schema.Schema, name string) bool {
	t := s.Types[name]
	return t != nil && t.Kind == schema.TypeKindObject
}

func sameArguments(a, b ast.ArgumentList) bool {
	if len(a) != len(b) {
		return false
	}
	for _, argA := range a {
		argB := b.ForName(argA.Name)
		if argB == nil {
			return false
		}
		va, errA := value.FromAST(argA.Value, nil)
		vb, errB := value.FromAST(argB.Value, nil)
		if errA != nil || errB != nil || !value.Equal(va, vb) {
			return false
		}
	}
	return true
}

// typesConflict reports whether two field types produce incompatible
// response shapes. Composite types never conflict here; their
// sub-selections are compared instead.
func typesConflict(s *schema.Schema, a, b *schema.TypeRef) bool {
	if a.Kind == schema.TypeRefKindList {
		if b.Kind != schema.TypeRefKindList {
			return true
		}
		return typesConflict(s, a.OfType, b.OfType)
	}
	if b.Kind == schema.TypeRefKindList {
		return true
	}
	if a.Kind == schema.TypeRefKindNonNull {
		if b.Kind != schema.TypeRefKindNonNull {
			return true
		}
		return typesConflict(s, a.OfType, b.OfType)
	}
	if b.Kind == schema.TypeRefKindNonNull {
		return true
	}
	if isLeafType(s, a.Named) || isLeafType(s, b.Named) {
		return a.Named != b.Named
	}
	return false
}

func isLeafType(s *schema.Schema, name string) bool {
	t := s.Types[name]
	return t != nil && t.IsLeaf()
}
