package resolver

import (
	"strconv"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// Path is an immutable response path. Appending returns a new node that
// shares its prefix, so taking a snapshot is free. The nil *Path is the
// root.
type Path struct {
	prev       *Path
	key        string
	index      int
	isIndex    bool
	parentType string
}

// Append adds a response key of a field selected on parentType.
func (p *Path) Append(key, parentType string) *Path {
	return &Path{prev: p, key: key, parentType: parentType}
}

// AppendIndex adds a list index.
func (p *Path) AppendIndex(i int) *Path {
	return &Path{prev: p, index: i, isIndex: true, parentType: p.ParentType()}
}

// Key returns the last response key, or "" at the root and on list items.
func (p *Path) Key() string {
	if p == nil {
		return ""
	}
	return p.key
}

// ParentType returns the type name the last key was selected on.
func (p *Path) ParentType() string {
	if p == nil {
		return ""
	}
	return p.parentType
}

func (p *Path) Len() int {
	n := 0
	for ; p != nil; p = p.prev {
		n++
	}
	return n
}

// AST renders the path root first.
func (p *Path) AST() ast.Path {
	if p == nil {
		return nil
	}
	out := make(ast.Path, p.Len())
	i := len(out) - 1
	for node := p; node != nil; node = node.prev {
		if node.isIndex {
			out[i] = ast.PathIndex(node.index)
		} else {
			out[i] = ast.PathName(node.key)
		}
		i--
	}
	return out
}

func (p *Path) String() string {
	var parts []string
	for _, el := range p.AST() {
		switch el := el.(type) {
		case ast.PathIndex:
			parts = append(parts, strconv.Itoa(int(el)))
		case ast.PathName:
			parts = append(parts, string(el))
		}
	}
	return strings.Join(parts, ".")
}
