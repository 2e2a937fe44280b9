package lang

import (
	"maps"
	"slices"
)

// FreeVariables returns the sorted names referenced by e that are not bound
// by an enclosing comprehension loop within e.
//
// A loop's iterable sees the binders of the loops before it, its conditions
// also see its own binder, and the result sees every binder.
func FreeVariables(e Expr) []string {
	free := make(map[string]struct{})
	collectFree(e, nil, free)

	return slices.Sorted(maps.Keys(free))
}

func collectFree(e Expr, bound map[string]int, free map[string]struct{}) {
	switch n := e.(type) {
	case *Variable:
		if bound[n.Name] == 0 {
			free[n.Name] = struct{}{}
		}
	case *Comprehension:
		if bound == nil {
			bound = make(map[string]int)
		}

		loops := n.Loops.All()

		for _, l := range loops {
			collectFree(l.Iterable, bound, free)

			for _, name := range l.Binder.Names {
				bound[name]++
			}

			for _, c := range l.Conds {
				collectFree(c, bound, free)
			}
		}

		collectFree(n.Result, bound, free)

		for _, l := range loops {
			for _, name := range l.Binder.Names {
				bound[name]--
			}
		}
	default:
		for _, c := range Children(e) {
			collectFree(c, bound, free)
		}
	}
}
