// Package validation checks query documents against a schema before they
// are executed.
//
// Rules are visitors. Compose runs any number of them during one
// depth-first walk of the document, and every error is collected: a
// document is rejected with the full list, never the first problem only.
package validation

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hanpama/gqlcore/internal/schema"
	"github.com/hanpama/gqlcore/internal/value"
)

func stateless(v Visitor) func() Visitor {
	return func() Visitor { return v }
}

func newUniqueOperationNames() Visitor {
	return &uniqueOperationNames{seen: make(map[string]bool)}
}

func newUniqueFragmentNames() Visitor {
	return &uniqueFragmentNames{seen: make(map[string]bool)}
}

func newOverlappingFieldsCanBeMerged() Visitor {
	return &overlappingFieldsCanBeMerged{compared: make(map[comparedPair]bool)}
}

// Rules, named after the checks they perform.
var (
	UniqueOperationNames         = Rule{"UniqueOperationNames", newUniqueOperationNames}
	LoneAnonymousOperation       = Rule{"LoneAnonymousOperation", stateless(loneAnonymousOperation{})}
	KnownOperationTypes          = Rule{"KnownOperationTypes", stateless(knownOperationTypes{})}
	SingleFieldSubscriptions     = Rule{"SingleFieldSubscriptions", stateless(singleFieldSubscriptions{})}
	UniqueFragmentNames          = Rule{"UniqueFragmentNames", newUniqueFragmentNames}
	KnownTypeNames               = Rule{"KnownTypeNames", stateless(knownTypeNames{})}
	FragmentsOnCompositeTypes    = Rule{"FragmentsOnCompositeTypes", stateless(fragmentsOnCompositeTypes{})}
	VariablesAreInputTypes       = Rule{"VariablesAreInputTypes", stateless(variablesAreInputTypes{})}
	ScalarLeafs                  = Rule{"ScalarLeafs", stateless(scalarLeafs{})}
	FieldsOnCorrectType          = Rule{"FieldsOnCorrectType", stateless(fieldsOnCorrectType{})}
	KnownFragmentNames           = Rule{"KnownFragmentNames", stateless(knownFragmentNames{})}
	NoUnusedFragments            = Rule{"NoUnusedFragments", stateless(noUnusedFragments{})}
	PossibleFragmentSpreads      = Rule{"PossibleFragmentSpreads", stateless(possibleFragmentSpreads{})}
	NoFragmentCycles             = Rule{"NoFragmentCycles", stateless(noFragmentCycles{})}
	UniqueVariableNames          = Rule{"UniqueVariableNames", stateless(uniqueVariableNames{})}
	NoUndefinedVariables         = Rule{"NoUndefinedVariables", stateless(noUndefinedVariables{})}
	NoUnusedVariables            = Rule{"NoUnusedVariables", stateless(noUnusedVariables{})}
	KnownDirectives              = Rule{"KnownDirectives", stateless(knownDirectives{})}
	UniqueDirectivesPerLocation  = Rule{"UniqueDirectivesPerLocation", stateless(uniqueDirectivesPerLocation{})}
	KnownArgumentNames           = Rule{"KnownArgumentNames", stateless(knownArgumentNames{})}
	UniqueArgumentNames          = Rule{"UniqueArgumentNames", stateless(uniqueArgumentNames{})}
	ArgumentsOfCorrectType       = Rule{"ArgumentsOfCorrectType", stateless(argumentsOfCorrectType{})}
	DefaultValuesOfCorrectType   = Rule{"DefaultValuesOfCorrectType", stateless(defaultValuesOfCorrectType{})}
	ProvidedRequiredArguments    = Rule{"ProvidedRequiredArguments", stateless(providedRequiredArguments{})}
	VariablesInAllowedPosition   = Rule{"VariablesInAllowedPosition", stateless(variablesInAllowedPosition{})}
	OverlappingFieldsCanBeMerged = Rule{"OverlappingFieldsCanBeMerged", newOverlappingFieldsCanBeMerged}
	UniqueInputFieldNames        = Rule{"UniqueInputFieldNames", stateless(uniqueInputFieldNames{})}
	VariablesOfCorrectType       = Rule{"VariablesOfCorrectType", stateless(variablesOfCorrectType{})}
)

// DefaultRules is the rule set Validate uses when none is given.
var DefaultRules = []Rule{
	UniqueOperationNames,
	LoneAnonymousOperation,
	KnownOperationTypes,
	SingleFieldSubscriptions,
	UniqueFragmentNames,
	KnownTypeNames,
	FragmentsOnCompositeTypes,
	VariablesAreInputTypes,
	ScalarLeafs,
	FieldsOnCorrectType,
	KnownFragmentNames,
	NoUnusedFragments,
	PossibleFragmentSpreads,
	NoFragmentCycles,
	UniqueVariableNames,
	NoUndefinedVariables,
	NoUnusedVariables,
	KnownDirectives,
	UniqueDirectivesPerLocation,
	KnownArgumentNames,
	UniqueArgumentNames,
	ArgumentsOfCorrectType,
	DefaultValuesOfCorrectType,
	ProvidedRequiredArguments,
	VariablesInAllowedPosition,
	OverlappingFieldsCanBeMerged,
	UniqueInputFieldNames,
	VariablesOfCorrectType,
}

// MaxDepth returns a rule limiting field nesting to limit levels. Root
// fields are at depth 1.
func MaxDepth(limit int) Rule {
	return Rule{"MaxDepth", func() Visitor { return &maxDepth{limit: limit} }}
}

// Validate runs rules, or DefaultRules when none are given, over doc and
// returns every error found. variables are the request's raw variable
// values and may be nil; operationName selects the operation they belong
// to.
func Validate(
	s *schema.Schema,
	doc *ast.QueryDocument,
	variables map[string]value.Value,
	fragments map[string]*ast.FragmentDefinition,
	operationName string,
	rules ...Rule,
) gqlerror.List {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	ctx := NewContext(s, doc, variables, fragments, operationName)
	Walk(ctx, Compose(rules...))
	return ctx.Errors()
}
