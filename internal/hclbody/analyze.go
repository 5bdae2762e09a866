package hclbody

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// extractRootsAndFunctions walks an expression to find every root variable
// name it references and every function it calls. Both slices are sorted and
// free of duplicates.
func extractRootsAndFunctions(expr hclsyntax.Expression) ([]string, []string) {
	roots := map[string]struct{}{}
	functions := map[string]struct{}{}

	// Variables() already excludes names bound by for expressions.
	for _, traversal := range expr.Variables() {
		roots[traversal.RootName()] = struct{}{}
	}

	// Variables() doesn't give us function calls.
	hclsyntax.VisitAll(expr, func(node hclsyntax.Node) hcl.Diagnostics {
		if call, ok := node.(*hclsyntax.FunctionCallExpr); ok {
			functions[call.Name] = struct{}{}
		}
		return nil
	})

	return sortedKeys(roots), sortedKeys(functions)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
