// Package causal builds the causal graph of a finite-domain task and derives
// a variable order from it.
package causal

import (
	"github.com/planforge/translator/pkg/lib/graph"
	"github.com/planforge/translator/pkg/translate/sas"
)

// Build returns the weighted causal graph over the task's variables. An
// edge u -> v means the value of u can influence a change of v: u occurs in
// the precondition or an effect condition of an operator affecting v, u and
// v are affected by the same operator, or u occurs in the condition of an
// axiom for v. Weights count occurrences.
func Build(task *sas.Task) *graph.Digraph {
	g := graph.New(len(task.Variables))
	add := func(from, to int) {
		if from != to {
			g.AddEdge(from, to, 1)
		}
	}
	for _, op := range task.Operators {
		var pre []int
		for _, f := range op.Prevail {
			pre = append(pre, f.Var)
		}
		for _, e := range op.Effects {
			if e.Pre >= 0 {
				pre = append(pre, e.Var)
			}
		}
		for _, e := range op.Effects {
			for _, v := range pre {
				add(v, e.Var)
			}
			for _, f := range e.Condition {
				add(f.Var, e.Var)
			}
			for _, other := range op.Effects {
				add(e.Var, other.Var)
			}
		}
	}
	for _, ax := range task.Axioms {
		for _, f := range ax.Condition {
			add(f.Var, ax.Var)
		}
	}
	return g
}

// GoalRelevant marks the goal variables and their ancestors in g.
func GoalRelevant(task *sas.Task, g *graph.Digraph) []bool {
	var roots []int
	for _, f := range task.Goal {
		roots = append(roots, f.Var)
	}
	return g.Ancestors(roots)
}
