package validation

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

type knownFragmentNames struct{ Base }

func (knownFragmentNames) EnterFragmentSpread(ctx *Context, spread *ast.FragmentSpread) {
	if ctx.Fragment(spread.Name) == nil {
		ctx.Report(spread.Position, "Unknown fragment %q.", spread.Name)
	}
}

type noUnusedFragments struct{ Base }

func (noUnusedFragments) ExitDocument(ctx *Context, doc *ast.QueryDocument) {
	used := make(map[string]bool)
	for _, op := range doc.Operations {
		for _, frag := range ctx.ReachableFragments(op) {
			used[frag.Name] = true
		}
	}
	for _, frag := range doc.Fragments {
		if !used[frag.Name] {
			ctx.Report(frag.Position, "Fragment %q is never used.", frag.Name)
		}
	}
}

// noFragmentCycles finds spread cycles with a depth-first search over the
// spread graph. Each cycle is reported once, at the fragment where the
// search first entered it.
type noFragmentCycles struct{ Base }

func (noFragmentCycles) ExitDocument(ctx *Context, doc *ast.QueryDocument) {
	visited := make(map[string]bool)
	for _, frag := range doc.Fragments {
		if visited[frag.Name] {
			continue
		}
		var path []*ast.FragmentSpread
		onPath := map[string]int{frag.Name: 0}
		detectCycles(ctx, frag.Name, visited, &path, onPath)
	}
}

func detectCycles(ctx *Context, name string, visited map[string]bool, path *[]*ast.FragmentSpread, onPath map[string]int) {
	visited[name] = true
	for _, spread := range ctx.FragmentSpreads(name) {
		if start, ok := onPath[spread.Name]; ok {
			cycle := (*path)[start:]
			var via []string
			for _, s := range cycle {
				via = append(via, s.Name)
			}
			suffix := ""
			if len(via) > 0 {
				suffix = " via " + strings.Join(via, ", ")
			}
			ctx.Report(spread.Position, "Cannot spread fragment %q within itself%s.", spread.Name, suffix)
			continue
		}
		if visited[spread.Name] || ctx.Fragment(spread.Name) == nil {
			continue
		}
		onPath[spread.Name] = len(*path) + 1
		*path = append(*path, spread)
		detectCycles(ctx, spread.Name, visited, path, onPath)
		*path = (*path)[:len(*path)-1]
		delete(onPath, spread.Name)
	}
}
