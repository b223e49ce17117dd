package testtask

import (
	"fmt"

	"github.com/planforge/translator/pkg/translate/sas"
)

func satisfied(state []int, facts []sas.Fact) bool {
	for _, f := range facts {
		if state[f.Var] != f.Value {
			return false
		}
	}
	return true
}

func apply(state []int, op sas.Operator) ([]int, bool) {
	if !satisfied(state, op.Prevail) {
		return nil, false
	}
	for _, e := range op.Effects {
		if e.Pre >= 0 && state[e.Var] != e.Pre {
			return nil, false
		}
	}
	next := append([]int(nil), state...)
	for _, e := range op.Effects {
		if satisfied(state, e.Condition) {
			next[e.Var] = e.Post
		}
	}
	return next, true
}

// ShortestSASPlan returns the length of a shortest plan for an axiom-free
// SAS task, or -1 if the goal is unreachable. Effect conditions are
// evaluated in the state before the operator and firing effects are applied
// in the order they are listed.
func ShortestSASPlan(t *sas.Task) int {
	if len(t.Axioms) > 0 {
		panic("testtask: tasks with axioms are not supported")
	}
	seen := map[string]bool{fmt.Sprint(t.Init): true}
	states := [][]int{t.Init}
	depth := []int{0}
	for i := 0; i < len(states); i++ {
		if satisfied(states[i], t.Goal) {
			return depth[i]
		}
		for _, op := range t.Operators {
			next, ok := apply(states[i], op)
			if !ok {
				continue
			}
			if k := fmt.Sprint(next); !seen[k] {
				seen[k] = true
				states = append(states, next)
				depth = append(depth, depth[i]+1)
			}
		}
	}
	return -1
}
