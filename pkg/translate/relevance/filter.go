package relevance

import (
	"github.com/planforge/translator/pkg/config"
	"github.com/planforge/translator/pkg/translate/causal"
	"github.com/planforge/translator/pkg/translate/sas"
)

type Stats struct {
	DerivedVariables     int
	Values               int
	SingleValueVariables int
	UnimportantVariables int
	Operators            int
	Axioms               int
}

type Result struct {
	Task *sas.Task
	// Unsolvable is set when a goal value turned out to be unreachable; Task
	// is then the trivially unsolvable task.
	Unsolvable bool
	// Removed counts what each step dropped.
	Removed Stats
}

// Filter removes derived variables without necessary literals, then,
// depending on opts, values that no operator or axiom can reach and
// variables that are not causal ancestors of the goal or of a derived
// variable.
func Filter(task *sas.Task, opts config.Options) Result {
	result := Result{Task: task}
	operators, axioms := len(task.Operators), len(task.Axioms)

	necessary := necessaryLiterals(task, opts.NecessaryLiterals)
	keep := make([]bool, len(task.Variables))
	for i, v := range task.Variables {
		keep[i] = !v.Derived ||
			necessary[literal{v: i, positive: true}] ||
			necessary[literal{v: i, positive: false}]
		if !keep[i] {
			result.Removed.DerivedVariables++
		}
	}
	result.Task = restrict(result.Task, keep)

	if opts.FilterUnreachableFacts {
		pruned, removed, ok := pruneUnreachableValues(result.Task)
		if !ok {
			result.Task = sas.Unsolvable(task.Metric)
			result.Unsolvable = true
			return result
		}
		result.Removed.Values = removed
		keep = make([]bool, len(pruned.Variables))
		for i, v := range pruned.Variables {
			keep[i] = len(v.Values) > 1
			if !keep[i] {
				result.Removed.SingleValueVariables++
			}
		}
		result.Task = restrict(pruned, keep)
	}

	if opts.FilterUnimportantVariables {
		g := causal.Build(result.Task)
		var roots []int
		for _, f := range result.Task.Goal {
			roots = append(roots, f.Var)
		}
		for i, v := range result.Task.Variables {
			if v.Derived {
				roots = append(roots, i)
			}
		}
		keep = g.Ancestors(roots)
		for _, k := range keep {
			if !k {
				result.Removed.UnimportantVariables++
			}
		}
		result.Task = restrict(result.Task, keep)
	}

	result.Removed.Operators = operators - len(result.Task.Operators)
	result.Removed.Axioms = axioms - len(result.Task.Axioms)
	return result
}

// restrict keeps the marked variables in their current order and drops
// operators left without effects.
func restrict(task *sas.Task, keep []bool) *sas.Task {
	mapping := make([]int, len(keep))
	next, all := 0, true
	for i, k := range keep {
		if k {
			mapping[i] = next
			next++
		} else {
			mapping[i] = -1
			all = false
		}
	}
	if all {
		return task
	}
	out := task.ApplyVariableMapping(mapping)
	operators := out.Operators[:0]
	for _, op := range out.Operators {
		if len(op.Effects) > 0 {
			operators = append(operators, op)
		}
	}
	out.Operators = operators
	return out
}
