package language

import (
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

// ParseQuery parses an executable document. Syntax errors are returned as
// *Error so they can be put into a response as they are.
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "query", Input: source})
	if err != nil {
		return nil, AsError(err)
	}
	return doc, nil
}

func ParseSchema(name, source string) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, AsError(err)
	}
	return doc, nil
}

// AsError converts err into a *Error, keeping position information when the
// parser produced it.
func AsError(err error) *Error {
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		return gqlErr
	}
	return gqlerror.Wrap(err)
}

// Errorf builds an error located at pos. A nil position yields an error
// without locations.
func Errorf(pos *Position, format string, args ...any) *Error {
	if pos == nil {
		return &gqlerror.Error{Message: fmt.Sprintf(format, args...)}
	}
	return gqlerror.ErrorPosf(pos, format, args...)
}
