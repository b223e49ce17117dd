package axioms

import (
	"github.com/planforge/translator/pkg/translate/sas"
)

// removeRedundant finds derived variables v whose only rule is v <- not w
// for a derived w outside v's component, replaces every condition on v by
// the opposite condition on w and removes v with its rule. Goal variables
// are kept.
func removeRedundant(task *sas.Task) (*sas.Task, int) {
	deps := newDependencies(task)
	rules := make([][]int, len(task.Variables))
	for i, ax := range task.Axioms {
		rules[ax.Var] = append(rules[ax.Var], i)
	}
	inGoal := make(map[int]bool)
	for _, f := range task.Goal {
		inGoal[f.Var] = true
	}

	substitute := make(map[int]int)
	for v, vr := range rules {
		if len(vr) != 1 || inGoal[v] {
			continue
		}
		cond := task.Axioms[vr[0]].Condition
		if len(cond) != 1 {
			continue
		}
		f := cond[0]
		if f.Var == v || !deps.negative(task, f) || deps.sameComponent(v, f.Var) {
			continue
		}
		substitute[v] = f.Var
	}
	if len(substitute) == 0 {
		return task, 0
	}

	resolve := func(f sas.Fact) sas.Fact {
		for {
			w, ok := substitute[f.Var]
			if !ok {
				return f
			}
			f = sas.Fact{Var: w, Value: 1 - f.Value}
		}
	}
	rewrite := func(facts []sas.Fact) ([]sas.Fact, bool) {
		if len(facts) == 0 {
			return facts, true
		}
		seen := make(map[int]int, len(facts))
		var out []sas.Fact
		for _, f := range facts {
			f = resolve(f)
			if value, ok := seen[f.Var]; ok {
				if value != f.Value {
					return nil, false
				}
				continue
			}
			seen[f.Var] = f.Value
			out = append(out, f)
		}
		sas.SortFacts(out)
		return out, true
	}

	out := *task
	out.Operators = nil
	for _, op := range task.Operators {
		prevail, ok := rewrite(op.Prevail)
		if !ok {
			continue
		}
		next := sas.Operator{Name: op.Name, Prevail: prevail, Cost: op.Cost}
		for _, e := range op.Effects {
			cond, ok := rewrite(e.Condition)
			if !ok {
				continue
			}
			next.Effects = append(next.Effects, sas.Effect{Var: e.Var, Pre: e.Pre, Post: e.Post, Condition: cond})
		}
		if len(next.Effects) > 0 {
			out.Operators = append(out.Operators, next)
		}
	}
	out.Axioms = nil
	for _, ax := range task.Axioms {
		if _, ok := substitute[ax.Var]; ok {
			continue
		}
		cond, ok := rewrite(ax.Condition)
		if !ok {
			continue
		}
		ax.Condition = cond
		out.Axioms = append(out.Axioms, ax)
	}

	mapping := make([]int, len(task.Variables))
	next := 0
	for v := range mapping {
		if _, ok := substitute[v]; ok {
			mapping[v] = -1
			continue
		}
		mapping[v] = next
		next++
	}
	return out.ApplyVariableMapping(mapping), len(substitute)
}
