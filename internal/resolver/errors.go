package resolver

import (
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Error is a resolver error that fills the extensions of the response
// error entry.
type Error struct {
	Message     string
	ErrorType   string
	ErrorDetail string
	Origin      string
	DebugInfo   any
	DebugURI    string
	Err         error
}

// Errorf returns an *Error with a formatted message. A %w verb sets Err.
func Errorf(format string, args ...any) *Error {
	err := fmt.Errorf(format, args...)
	return &Error{Message: err.Error(), Err: errors.Unwrap(err)}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Extensions returns the non-empty extension fields.
func (e *Error) Extensions() map[string]any {
	ext := make(map[string]any)
	if e.ErrorType != "" {
		ext["errorType"] = e.ErrorType
	}
	if e.ErrorDetail != "" {
		ext["errorDetail"] = e.ErrorDetail
	}
	if e.Origin != "" {
		ext["origin"] = e.Origin
	}
	if e.DebugInfo != nil {
		ext["debugInfo"] = e.DebugInfo
	}
	if e.DebugURI != "" {
		ext["debugUri"] = e.DebugURI
	}
	if len(ext) == 0 {
		return nil
	}
	return ext
}

// ExtendedError is implemented by errors that contribute extensions.
type ExtendedError interface {
	error
	Extensions() map[string]any
}

// errNullPropagated is returned in place of a value when a non-null field
// failed. Its cause has already been recorded, so callers only null out the
// nearest nullable ancestor.
var errNullPropagated = errors.New("null propagated from non-null field")

// IsNullPropagation reports whether err only signals that the result was
// nulled after its cause was recorded.
func IsNullPropagation(err error) bool {
	return errors.Is(err, errNullPropagated)
}

// LocateError turns err into a response error positioned at field and path.
// Errors that already carry a path keep it.
func LocateError(err error, field *ast.Field, path *Path) *gqlerror.Error {
	var located *gqlerror.Error
	if errors.As(err, &located) {
		if located.Path != nil && len(located.Locations) > 0 {
			return located
		}
		cp := *located
		located = &cp
	} else {
		located = &gqlerror.Error{Err: err, Message: err.Error()}
		var ext ExtendedError
		if errors.As(err, &ext) {
			located.Extensions = ext.Extensions()
		}
	}
	if located.Path == nil {
		located.Path = path.AST()
	}
	if len(located.Locations) == 0 && field != nil && field.Position != nil {
		located.Locations = []gqlerror.Location{{Line: field.Position.Line, Column: field.Position.Column}}
	}
	return located
}
