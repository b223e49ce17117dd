// Package relevance removes derived variables, values and variables that
// cannot influence the goal.
package relevance

import (
	"github.com/planforge/translator/pkg/config"
	"github.com/planforge/translator/pkg/translate/sas"
)

// literal is a derived variable in one polarity: true for its non-default
// value.
type literal struct {
	v        int
	positive bool
}

func derivedLiteral(task *sas.Task, f sas.Fact) (literal, bool) {
	v := task.Variables[f.Var]
	if !v.Derived {
		return literal{}, false
	}
	return literal{v: f.Var, positive: f.Value != v.DefaultValue()}, true
}

// necessaryLiterals returns, for every derived variable, which polarities
// the search may need to evaluate. The policy decides how precisely this is
// computed:
//   - exact starts from the goal and operator conditions and follows the
//     axioms: the body of a rule for a necessary positive literal is
//     necessary, and the negated body literals of a rule for a necessary
//     negative literal are necessary;
//   - non-derived takes the goal and operator conditions and every derived
//     literal occurring in a rule body, in both polarities, without following
//     the rules;
//   - positive treats both polarities of every derived variable as necessary.
func necessaryLiterals(task *sas.Task, policy config.NecessaryLiteralPolicy) map[literal]bool {
	necessary := make(map[literal]bool)
	if policy == config.NecessaryLiteralsPositive {
		for i, v := range task.Variables {
			if v.Derived {
				necessary[literal{v: i, positive: true}] = true
				necessary[literal{v: i, positive: false}] = true
			}
		}
		return necessary
	}

	var queue []literal
	mark := func(l literal) {
		if !necessary[l] {
			necessary[l] = true
			queue = append(queue, l)
		}
	}
	markFact := func(f sas.Fact) {
		if l, ok := derivedLiteral(task, f); ok {
			mark(l)
		}
	}

	for _, f := range task.Goal {
		markFact(f)
	}
	for _, op := range task.Operators {
		for _, f := range op.Prevail {
			markFact(f)
		}
		for _, e := range op.Effects {
			for _, f := range e.Condition {
				markFact(f)
			}
		}
	}

	if policy == config.NecessaryLiteralsNonDerived {
		for _, ax := range task.Axioms {
			for _, f := range ax.Condition {
				if l, ok := derivedLiteral(task, f); ok {
					mark(literal{v: l.v, positive: true})
					mark(literal{v: l.v, positive: false})
				}
			}
		}
		return necessary
	}

	rules := make(map[int][]sas.Axiom)
	for _, ax := range task.Axioms {
		rules[ax.Var] = append(rules[ax.Var], ax)
	}
	for len(queue) > 0 {
		l := queue[0]
		queue = queue[1:]
		for _, ax := range rules[l.v] {
			for _, f := range ax.Condition {
				body, ok := derivedLiteral(task, f)
				if !ok {
					continue
				}
				if !l.positive {
					body.positive = !body.positive
				}
				mark(body)
			}
		}
	}
	return necessary
}
