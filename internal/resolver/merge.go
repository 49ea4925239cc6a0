package resolver

import "github.com/hanpama/gqlcore/internal/value"

// Merge stores v under key in dst. When key is already present, lists are
// merged element by element, objects field by field, and for anything
// else the existing value wins.
func Merge(dst *value.Object, key string, v value.Value) {
	existing, ok := dst.Get(key)
	if !ok {
		dst.Set(key, v)
		return
	}
	dst.Set(key, mergeValues(existing, v))
}

func mergeValues(a, b value.Value) value.Value {
	switch a := a.(type) {
	case value.List:
		bl, ok := b.(value.List)
		if !ok {
			return a
		}
		out := make(value.List, len(a))
		copy(out, a)
		for i := 0; i < len(out) && i < len(bl); i++ {
			ao, aok := out[i].(*value.Object)
			bo, bok := bl[i].(*value.Object)
			if aok && bok {
				out[i] = mergeObjects(ao, bo)
			}
		}
		return out
	case *value.Object:
		if bo, ok := b.(*value.Object); ok {
			return mergeObjects(a, bo)
		}
	}
	return a
}

func mergeObjects(a, b *value.Object) *value.Object {
	out := value.NewObject(a.Fields()...)
	for _, f := range b.Fields() {
		Merge(out, f.Name, f.Value)
	}
	return out
}
