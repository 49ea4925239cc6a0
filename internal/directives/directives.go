// Package directives provides field directive handlers for use with
// executor.WithDirective.
package directives

import (
	"log/slog"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hanpama/gqlcore/internal/resolver"
	"github.com/hanpama/gqlcore/internal/value"
)

// SDL declares the directives handled here. Schemas that use them include
// it among their sources.
const SDL = `
directive @upper(lang: String) on FIELD | FIELD_DEFINITION
directive @lower(lang: String) on FIELD | FIELD_DEFINITION
directive @title(lang: String) on FIELD | FIELD_DEFINITION
`

// Upper upper-cases the string results of a field.
func Upper() resolver.DirectiveHandler {
	return transform(func(tag language.Tag) cases.Caser { return cases.Upper(tag) })
}

// Lower lower-cases the string results of a field.
func Lower() resolver.DirectiveHandler {
	return transform(func(tag language.Tag) cases.Caser { return cases.Lower(tag) })
}

// Title title-cases the string results of a field.
func Title() resolver.DirectiveHandler {
	return transform(func(tag language.Tag) cases.Caser { return cases.Title(tag) })
}

// Deprecated logs every resolution of a field whose definition is marked
// @deprecated, then resolves it normally.
func Deprecated(logger *slog.Logger) resolver.DirectiveHandler {
	return resolver.DirectiveFunc(func(ctx *resolver.FieldContext, args map[string]value.Value, next resolver.Next) (value.Value, error) {
		reason, _ := args["reason"].(value.String)
		logger.Warn("deprecated field resolved",
			"type", ctx.ParentType,
			"field", ctx.Field.Name,
			"path", ctx.Path().String(),
			"reason", string(reason),
		)
		return next(ctx)
	})
}

// Handlers returns every handler of this package keyed by directive name.
func Handlers(logger *slog.Logger) map[string]resolver.DirectiveHandler {
	return map[string]resolver.DirectiveHandler{
		"upper":      Upper(),
		"lower":      Lower(),
		"title":      Title(),
		"deprecated": Deprecated(logger),
	}
}

// transform applies a caser built per resolution; casers keep state and
// must not be shared between goroutines.
func transform(newCaser func(language.Tag) cases.Caser) resolver.DirectiveHandler {
	return resolver.DirectiveFunc(func(ctx *resolver.FieldContext, args map[string]value.Value, next resolver.Next) (value.Value, error) {
		v, err := next(ctx)
		if err != nil {
			return nil, err
		}
		tag := language.Und
		if lang, ok := args["lang"].(value.String); ok {
			parsed, err := language.Parse(string(lang))
			if err != nil {
				return nil, resolver.Errorf("invalid language %q: %v", string(lang), err)
			}
			tag = parsed
		}
		return apply(newCaser(tag), v), nil
	})
}

func apply(c cases.Caser, v value.Value) value.Value {
	switch v := v.(type) {
	case value.String:
		return value.String(c.String(string(v)))
	case value.List:
		out := make(value.List, len(v))
		for i, item := range v {
			out[i] = apply(c, item)
		}
		return out
	}
	return v
}
