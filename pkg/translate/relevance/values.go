package relevance

import (
	"github.com/planforge/translator/pkg/translate/sas"
)

// reachableValues computes the values each variable can take, starting from
// the initial state and the default values of derived variables and
// applying every operator and axiom whose conditions are reachable until
// nothing changes.
func reachableValues(task *sas.Task) [][]bool {
	reached := make([][]bool, len(task.Variables))
	for i, v := range task.Variables {
		reached[i] = make([]bool, len(v.Values))
		reached[i][task.Init[i]] = true
		if v.Derived {
			reached[i][v.DefaultValue()] = true
		}
	}
	holds := func(facts []sas.Fact) bool {
		for _, f := range facts {
			if !reached[f.Var][f.Value] {
				return false
			}
		}
		return true
	}

	for changed := true; changed; {
		changed = false
		for _, op := range task.Operators {
			if !holds(op.Prevail) {
				continue
			}
			applicable := true
			for _, e := range op.Effects {
				if e.Pre >= 0 && !reached[e.Var][e.Pre] {
					applicable = false
					break
				}
			}
			if !applicable {
				continue
			}
			for _, e := range op.Effects {
				if !reached[e.Var][e.Post] && holds(e.Condition) {
					reached[e.Var][e.Post] = true
					changed = true
				}
			}
		}
		for _, ax := range task.Axioms {
			if !reached[ax.Var][ax.To] && holds(ax.Condition) {
				reached[ax.Var][ax.To] = true
				changed = true
			}
		}
	}
	return reached
}

// pruneUnreachableValues removes unreachable values together with every
// operator, effect, axiom and mutex fact that needs one. It reports false if
// the goal needs one.
func pruneUnreachableValues(task *sas.Task) (*sas.Task, int, bool) {
	reached := reachableValues(task)

	removed := 0
	renumber := make([][]int, len(task.Variables))
	for v, values := range reached {
		renumber[v] = make([]int, len(values))
		next := 0
		for value, ok := range values {
			if ok {
				renumber[v][value] = next
				next++
			} else {
				renumber[v][value] = -1
				removed++
			}
		}
	}
	if removed == 0 {
		return task, 0, true
	}

	rewrite := func(facts []sas.Fact) ([]sas.Fact, bool) {
		var out []sas.Fact
		for _, f := range facts {
			value := renumber[f.Var][f.Value]
			if value < 0 {
				return nil, false
			}
			out = append(out, sas.Fact{Var: f.Var, Value: value})
		}
		return out, true
	}

	goal, ok := rewrite(task.Goal)
	if !ok {
		return nil, removed, false
	}

	out := &sas.Task{
		Variables: make([]sas.Variable, len(task.Variables)),
		Init:      make([]int, len(task.Init)),
		Goal:      goal,
		Metric:    task.Metric,
	}
	for i, v := range task.Variables {
		next := v
		next.Values = nil
		for value, name := range v.Values {
			if reached[i][value] {
				next.Values = append(next.Values, name)
			}
		}
		out.Variables[i] = next
		out.Init[i] = renumber[i][task.Init[i]]
	}

	for _, m := range task.Mutexes {
		var facts []sas.Fact
		for _, f := range m.Facts {
			if value := renumber[f.Var][f.Value]; value >= 0 {
				facts = append(facts, sas.Fact{Var: f.Var, Value: value})
			}
		}
		if len(facts) >= 2 {
			out.Mutexes = append(out.Mutexes, sas.Mutex{Facts: facts})
		}
	}

operators:
	for _, op := range task.Operators {
		prevail, ok := rewrite(op.Prevail)
		if !ok {
			continue
		}
		next := sas.Operator{Name: op.Name, Prevail: prevail, Cost: op.Cost}
		for _, e := range op.Effects {
			pre := -1
			if e.Pre >= 0 {
				if pre = renumber[e.Var][e.Pre]; pre < 0 {
					continue operators
				}
			}
			cond, ok := rewrite(e.Condition)
			post := renumber[e.Var][e.Post]
			if !ok || post < 0 {
				continue
			}
			next.Effects = append(next.Effects, sas.Effect{Var: e.Var, Pre: pre, Post: post, Condition: cond})
		}
		if len(next.Effects) > 0 {
			out.Operators = append(out.Operators, next)
		}
	}

	for _, ax := range task.Axioms {
		cond, ok := rewrite(ax.Condition)
		to := renumber[ax.Var][ax.To]
		if !ok || to < 0 {
			continue
		}
		out.Axioms = append(out.Axioms, sas.Axiom{
			Condition:        cond,
			Var:              ax.Var,
			From:             renumber[ax.Var][ax.From],
			To:               to,
			Overapproximated: ax.Overapproximated,
		})
	}
	return out, removed, true
}
