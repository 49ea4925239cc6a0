package schema

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// Violation is a single problem found while building a schema.
type Violation struct {
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

func (v *Violation) String() string {
	if v.File == "" {
		return v.Message
	}
	return fmt.Sprintf("%s %s:%d:%d", v.Message, v.File, v.Line, v.Column)
}

// BuildError lists every violation found in a set of schema documents.
// Building never yields a partial schema.
type BuildError []*Violation

func (e BuildError) Error() string {
	var b strings.Builder
	b.WriteString("schema build failed:\n")
	for _, v := range e {
		b.WriteString("- ")
		b.WriteString(v.String())
		b.WriteString("\n")
	}
	return b.String()
}

func violationf(pos *ast.Position, format string, args ...any) *Violation {
	v := &Violation{Message: fmt.Sprintf(format, args...)}
	if pos != nil {
		v.Line = pos.Line
		v.Column = pos.Column
		if pos.Src != nil {
			v.File = pos.Src.Name
		}
	}
	return v
}

func violationDefinitionAlreadyExists(name string, pos *ast.Position) *Violation {
	return violationf(pos, "Type %q is already defined", name)
}

func violationDirectiveAlreadyExists(name string, pos *ast.Position) *Violation {
	return violationf(pos, "Directive @%s is already defined", name)
}

func violationDefinitionNotFoundForExtension(name string, pos *ast.Position) *Violation {
	return violationf(pos, "Cannot extend type %q because it is not defined", name)
}

func violationUnexpectedKindForExtension(ext *ast.Definition, kind ast.DefinitionKind) *Violation {
	return violationf(ext.Position, "Cannot extend %s %q with a %s extension", strings.ToLower(string(kind)), ext.Name, strings.ToLower(string(ext.Kind)))
}

func violationRootTypeNotFound(op ast.Operation, name string, pos *ast.Position) *Violation {
	return violationf(pos, "Root %s type %q is not defined", op, name)
}

func violationUnknownType(name, owner string, pos *ast.Position) *Violation {
	return violationf(pos, "Unknown type %q referenced by %s", name, owner)
}

func violationNotInputType(name, owner string, pos *ast.Position) *Violation {
	return violationf(pos, "Type %q used by %s is not an input type", name, owner)
}

func violationNotOutputType(name, owner string, pos *ast.Position) *Violation {
	return violationf(pos, "Type %q used by %s is not an output type", name, owner)
}

func violationNotInterface(name, owner string, pos *ast.Position) *Violation {
	return violationf(pos, "Type %q implemented by %q is not an interface", name, owner)
}

func violationUnionMemberNotObject(name, union string, pos *ast.Position) *Violation {
	return violationf(pos, "Union %q member %q is not an object type", union, name)
}

func violationReservedName(kind, name string, pos *ast.Position) *Violation {
	return violationf(pos, "%s name %q cannot start with '__' (reserved prefix)", kind, name)
}
